package hydra

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/stretchr/testify/assert"
)

// UnnamedAssertion labels assertions made without a message.
const UnnamedAssertion = "*unnamed-assertion*"

// ErrUnknownAssertion is returned by Invoke for an unregistered assertion kind.
var ErrUnknownAssertion = errors.New("unknown assertion")

// Outcome is the result of evaluating one assertion.
type Outcome struct {
	Passed  bool
	Message string
}

// Recorder evaluates assertions and records them against the running test.
//
// Every method returns nil when the assertion holds. When it fails the
// failure is recorded and returned as an *AssertionFailure, which a head
// normally returns as is so dispatch can end the response.
type Recorder struct {
	session  *Session
	observer Observer
}

// NewRecorder creates a recorder writing into session.
func NewRecorder(session *Session, observer Observer) *Recorder {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Recorder{session: session, observer: observer}
}

// Record stores an evaluated outcome under label. A pass never overrides an
// earlier failure; a failure always overrides.
func (r *Recorder) Record(label string, o Outcome) error {
	if label == "" {
		label = UnnamedAssertion
	}
	ref, result := r.session.active()
	r.observer.AssertionRecorded(ref, o.Passed)

	if o.Passed {
		result.Passes = append(result.Passes, label)
		if result.Result == VerdictUnset {
			result.Result = VerdictPass
		}
		return nil
	}

	result.Failures = append(result.Failures, label)
	result.Result = VerdictFail
	return &AssertionFailure{Test: ref, Label: label, Message: o.Message}
}

// primitive is one named assertion of the family.
type primitive struct {
	// arity is the number of arguments before the optional message.
	arity int
	check func(t assert.TestingT, args []any, msgAndArgs ...any) bool
}

var primitives = map[string]primitive{
	"ok": {1, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Truef(t, truthy(a[0]), "value %#v is not truthy", a[0])
	}},
	"true": {1, func(t assert.TestingT, a []any, m ...any) bool {
		b, _ := a[0].(bool)
		return assert.True(t, b, m...)
	}},
	"false": {1, func(t assert.TestingT, a []any, m ...any) bool {
		b, isBool := a[0].(bool)
		return assert.True(t, isBool, m...) && assert.False(t, b, m...)
	}},
	"equal": {2, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Equal(t, a[0], a[1], m...)
	}},
	"notEqual": {2, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.NotEqual(t, a[0], a[1], m...)
	}},
	"equalValues": {2, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.EqualValues(t, a[0], a[1], m...)
	}},
	"nil": {1, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Nil(t, a[0], m...)
	}},
	"notNil": {1, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.NotNil(t, a[0], m...)
	}},
	"empty": {1, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Empty(t, a[0], m...)
	}},
	"notEmpty": {1, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.NotEmpty(t, a[0], m...)
	}},
	"contains": {2, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Contains(t, a[0], a[1], m...)
	}},
	"notContains": {2, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.NotContains(t, a[0], a[1], m...)
	}},
	"regexp": {2, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Regexp(t, a[0], a[1], m...)
	}},
	"jsonEq": {2, func(t assert.TestingT, a []any, m ...any) bool {
		expected, _ := a[0].(string)
		actual, _ := a[1].(string)
		return assert.JSONEq(t, expected, actual, m...)
	}},
	"len": {2, func(t assert.TestingT, a []any, m ...any) bool {
		n, ok := toInt(a[1])
		return assert.True(t, ok, "length must be an integer") && assert.Len(t, a[0], n, m...)
	}},
	"fail": {1, func(t assert.TestingT, a []any, m ...any) bool {
		return assert.Fail(t, fmt.Sprint(a[0]), m...)
	}},
}

// Kinds lists the assertion kinds Invoke accepts.
func Kinds() []string {
	kinds := make([]string, 0, len(primitives))
	for k := range primitives {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Invoke evaluates the assertion called kind. args holds the assertion's own
// arguments optionally followed by a message and its format arguments.
func (r *Recorder) Invoke(kind string, args ...any) error {
	p, ok := primitives[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAssertion, kind)
	}
	if len(args) < p.arity {
		return fmt.Errorf("assertion %q takes %d arguments, got %d", kind, p.arity, len(args))
	}
	return r.run(p, args[:p.arity], args[p.arity:])
}

func (r *Recorder) run(p primitive, args, msgAndArgs []any) error {
	c := &collector{}
	passed := p.check(c, args, msgAndArgs...)
	return r.Record(Label(msgAndArgs...), Outcome{Passed: passed, Message: c.message()})
}

func (r *Recorder) call(kind string, args []any, msgAndArgs []any) error {
	return r.run(primitives[kind], args, msgAndArgs)
}

// Ok asserts that value is truthy: not nil, false, zero or empty.
func (r *Recorder) Ok(value any, msgAndArgs ...any) error {
	return r.call("ok", []any{value}, msgAndArgs)
}

// True asserts that value is true.
func (r *Recorder) True(value bool, msgAndArgs ...any) error {
	return r.call("true", []any{value}, msgAndArgs)
}

// False asserts that value is false.
func (r *Recorder) False(value bool, msgAndArgs ...any) error {
	return r.call("false", []any{value}, msgAndArgs)
}

// Equal asserts that two values are deeply equal.
func (r *Recorder) Equal(expected, actual any, msgAndArgs ...any) error {
	return r.call("equal", []any{expected, actual}, msgAndArgs)
}

// NotEqual asserts that two values differ.
func (r *Recorder) NotEqual(expected, actual any, msgAndArgs ...any) error {
	return r.call("notEqual", []any{expected, actual}, msgAndArgs)
}

// Nil asserts that value is nil.
func (r *Recorder) Nil(value any, msgAndArgs ...any) error {
	return r.call("nil", []any{value}, msgAndArgs)
}

// NotNil asserts that value is not nil.
func (r *Recorder) NotNil(value any, msgAndArgs ...any) error {
	return r.call("notNil", []any{value}, msgAndArgs)
}

// Contains asserts that s contains element.
func (r *Recorder) Contains(s, element any, msgAndArgs ...any) error {
	return r.call("contains", []any{s, element}, msgAndArgs)
}

// JSONEq asserts that two JSON documents are equivalent.
func (r *Recorder) JSONEq(expected, actual string, msgAndArgs ...any) error {
	return r.call("jsonEq", []any{expected, actual}, msgAndArgs)
}

// Fail records an unconditional failure.
func (r *Recorder) Fail(failureMessage string, msgAndArgs ...any) error {
	return r.call("fail", []any{failureMessage}, msgAndArgs)
}

// Label derives an assertion label from testify-style message arguments.
func Label(msgAndArgs ...any) string {
	if len(msgAndArgs) == 0 {
		return UnnamedAssertion
	}
	if len(msgAndArgs) == 1 {
		if s, ok := msgAndArgs[0].(string); ok {
			if s == "" {
				return UnnamedAssertion
			}
			return s
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	}
	if format, ok := msgAndArgs[0].(string); ok {
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return UnnamedAssertion
}

// collector is an assert.TestingT that keeps the failure text.
type collector struct {
	messages []string
}

func (c *collector) Errorf(format string, args ...any) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

func (c *collector) message() string {
	return strings.TrimSpace(strings.Join(c.messages, "\n"))
}

func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}

func toInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f == float64(int(f)) {
			return int(f), true
		}
	}
	return 0, false
}
