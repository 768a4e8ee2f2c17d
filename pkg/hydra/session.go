package hydra

import (
	"log/slog"
	"slices"
	"time"

	"github.com/getmockd/hydra/internal/id"
	"github.com/getmockd/hydra/pkg/logging"
)

// DefaultTest is the plugin and test name used when no test is running.
const DefaultTest = "*default*"

// TestRef identifies a test by plugin and test name.
type TestRef struct {
	Plugin string `json:"plugin"`
	Test   string `json:"test"`
}

// DefaultTestRef is the current test when none is running.
var DefaultTestRef = TestRef{Plugin: DefaultTest, Test: DefaultTest}

// Verdict is the overall result of a test run.
type Verdict string

// Verdicts. A run is unset until its first assertion.
const (
	VerdictUnset Verdict = ""
	VerdictPass  Verdict = "pass"
	VerdictFail  Verdict = "fail"
)

// TestResult accumulates the assertions of one test run.
type TestResult struct {
	Result    Verdict   `json:"result,omitempty"`
	Passes    []string  `json:"passes"`
	Failures  []string  `json:"failures"`
	RunID     string    `json:"runId,omitempty"`
	StartedAt time.Time `json:"startedAt,omitzero"`
}

func (r *TestResult) clone() TestResult {
	c := *r
	c.Passes = slices.Clone(r.Passes)
	c.Failures = slices.Clone(r.Failures)
	return c
}

// Session tracks the running test and the results of every run.
type Session struct {
	registry *Registry
	current  TestRef
	results  map[string]map[string]*TestResult
	log      *slog.Logger
}

// NewSession creates a session over registry with no test running.
func NewSession(registry *Registry, log *slog.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		registry: registry,
		current:  DefaultTestRef,
		results: map[string]map[string]*TestResult{
			DefaultTest: {DefaultTest: newTestResult()},
		},
		log: log,
	}
}

func newTestResult() *TestResult {
	return &TestResult{Passes: []string{}, Failures: []string{}}
}

// StartTest stops the running test, installs the heads of the named test
// into *current-test* and resets its result.
func (s *Session) StartTest(pluginName, testName string) error {
	s.StopTest()

	p, err := s.registry.Plugin(pluginName)
	if err != nil {
		return &InvalidTestError{Plugin: pluginName, Test: testName}
	}
	def, ok := p.Tests[testName]
	if !ok {
		return &InvalidTestError{Plugin: pluginName, Test: testName}
	}

	if err := s.registry.replaceCurrentTest(def.Heads); err != nil {
		return err
	}
	s.current = TestRef{Plugin: pluginName, Test: testName}

	result := newTestResult()
	result.RunID = id.ULID()
	result.StartedAt = time.Now()
	if s.results[pluginName] == nil {
		s.results[pluginName] = make(map[string]*TestResult)
	}
	s.results[pluginName][testName] = result

	s.log.Info("test started", "plugin", pluginName, "test", testName, "run", result.RunID)
	return nil
}

// StopTest empties *current-test* and resets the current test. Results are kept.
func (s *Session) StopTest() {
	if s.current != DefaultTestRef {
		s.log.Info("test stopped", "plugin", s.current.Plugin, "test", s.current.Test)
	}
	s.current = DefaultTestRef
	if err := s.registry.replaceCurrentTest(nil); err != nil {
		panic("hydra: internal error: emptying " + CurrentTestPlugin + ": " + err.Error())
	}
}

// Current returns the running test, or DefaultTestRef.
func (s *Session) Current() TestRef {
	return s.current
}

// Result returns a copy of the result for a test.
func (s *Session) Result(pluginName, testName string) (TestResult, bool) {
	r, ok := s.results[pluginName][testName]
	if !ok {
		return TestResult{}, false
	}
	return r.clone(), true
}

// Results returns a copy of every recorded result, keyed by plugin then test.
func (s *Session) Results() map[string]map[string]TestResult {
	out := make(map[string]map[string]TestResult, len(s.results))
	for plugin, tests := range s.results {
		out[plugin] = make(map[string]TestResult, len(tests))
		for test, r := range tests {
			out[plugin][test] = r.clone()
		}
	}
	return out
}

// active returns the result assertions are currently recorded into.
func (s *Session) active() (TestRef, *TestResult) {
	ref := s.current
	r, ok := s.results[ref.Plugin][ref.Test]
	if !ok {
		r = newTestResult()
		if s.results[ref.Plugin] == nil {
			s.results[ref.Plugin] = make(map[string]*TestResult)
		}
		s.results[ref.Plugin][ref.Test] = r
	}
	return ref, r
}
