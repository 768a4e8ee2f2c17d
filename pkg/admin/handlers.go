package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/getmockd/hydra/pkg/heads"
	"github.com/getmockd/hydra/pkg/httputil"
	"github.com/getmockd/hydra/pkg/hydra"
	"github.com/getmockd/hydra/pkg/loader"
)

// PluginInfo describes a registered plugin.
type PluginInfo struct {
	Name  string     `json:"name"`
	Heads []HeadInfo `json:"heads"`
	Tests []TestInfo `json:"tests"`
}

// HeadInfo describes a head.
type HeadInfo struct {
	Name     string `json:"name"`
	Attached bool   `json:"attached"`
}

// TestInfo describes a test.
type TestInfo struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions,omitempty"`
}

// HeadState is the answer to attach and detach requests.
type HeadState struct {
	Plugin   string `json:"plugin"`
	Head     string `json:"head"`
	Attached bool   `json:"attached"`
}

// CurrentTest is the running test.
type CurrentTest struct {
	Plugin       string `json:"plugin"`
	Test         string `json:"test"`
	Instructions string `json:"instructions,omitempty"`
}

// ResultsResponse holds every recorded result.
type ResultsResponse struct {
	Current hydra.TestRef                          `json:"current"`
	Results map[string]map[string]hydra.TestResult `json:"results"`
}

// HealthResponse is the answer of /hydra-admin/health.
type HealthResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version,omitempty"`
	Uptime  float64 `json:"uptimeSeconds"`
}

// handleListPlugins handles GET /plugins. The *admin* plugin is left out.
func (a *API) handleListPlugins(_ *hydra.Request, res *hydra.Response) error {
	out := make([]PluginInfo, 0)
	for _, p := range a.hydra.Registry().Plugins() {
		if p.Name == hydra.AdminPlugin {
			continue
		}
		info := PluginInfo{Name: p.Name, Heads: make([]HeadInfo, 0, len(p.Heads)), Tests: make([]TestInfo, 0, len(p.Tests))}
		for _, h := range p.Heads {
			info.Heads = append(info.Heads, HeadInfo{Name: h.Name(), Attached: h.Attached()})
		}
		for name, t := range p.Tests {
			info.Tests = append(info.Tests, TestInfo{Name: name, Instructions: t.Instructions})
		}
		sort.Slice(info.Tests, func(i, j int) bool { return info.Tests[i].Name < info.Tests[j].Name })
		out = append(out, info)
	}
	httputil.WriteOK(res, out)
	return nil
}

// handleHeadState handles POST /heads/{plugin}/{head}/attach|detach.
func (a *API) handleHeadState(req *hydra.Request, res *hydra.Response) error {
	parts := segments(req)
	plugin, head, action := parts[1], parts[2], parts[3]

	reg := a.hydra.Registry()
	var err error
	if action == "attach" {
		err = reg.AttachHead(plugin, head)
	} else {
		err = reg.DetachHead(plugin, head)
	}
	if err != nil {
		return err
	}
	attached, err := reg.IsHeadAttached(plugin, head)
	if err != nil {
		return err
	}
	a.log.Info("head "+action+"ed", "plugin", plugin, "head", head)
	httputil.WriteOK(res, HeadState{Plugin: plugin, Head: head, Attached: attached})
	return nil
}

// handleAddDynamicHead handles POST /heads/dynamic. The body is a head in
// manifest form and is validated like one.
func (a *API) handleAddDynamicHead(req *hydra.Request, res *hydra.Response) error {
	var spec any
	if err := json.Unmarshal(req.Body, &spec); err != nil {
		httputil.WriteBadRequest(res, fmt.Sprintf("invalid JSON body: %v", err))
		return nil
	}
	doc, err := json.Marshal(map[string]any{"heads": []any{spec}})
	if err != nil {
		return err
	}
	manifest, err := loader.ParseManifest("dynamic head", doc)
	if err != nil {
		if errors.Is(err, loader.ErrInvalidManifest) {
			httputil.WriteBadRequest(res, err.Error())
			return nil
		}
		return err
	}

	head, err := heads.Build(manifest.Heads[0], heads.BuildEnv{BaseDir: a.baseDir, Recorder: a.hydra.Assert()})
	if err != nil {
		httputil.WriteBadRequest(res, err.Error())
		return nil
	}
	if err := a.hydra.RegisterDynamicHead(head); err != nil {
		return err
	}

	a.log.Info("dynamic head added", "head", head.Name(), "type", manifest.Heads[0].Type)
	httputil.WriteCreated(res, HeadState{Plugin: hydra.DynamicPlugin, Head: head.Name(), Attached: head.Attached()})
	return nil
}

// handleStartTest handles POST /tests/{plugin}/{test}/start.
func (a *API) handleStartTest(req *hydra.Request, res *hydra.Response) error {
	parts := segments(req)
	if err := a.hydra.StartTest(parts[1], parts[2]); err != nil {
		return err
	}
	httputil.WriteOK(res, a.currentTest())
	return nil
}

// handleStopTest handles POST /tests/stop.
func (a *API) handleStopTest(_ *hydra.Request, res *hydra.Response) error {
	a.hydra.StopTest()
	httputil.WriteOK(res, a.currentTest())
	return nil
}

// handleCurrentTest handles GET /tests/current.
func (a *API) handleCurrentTest(_ *hydra.Request, res *hydra.Response) error {
	httputil.WriteOK(res, a.currentTest())
	return nil
}

func (a *API) currentTest() CurrentTest {
	ref := a.hydra.Session().Current()
	ct := CurrentTest{Plugin: ref.Plugin, Test: ref.Test}
	if p, err := a.hydra.Registry().Plugin(ref.Plugin); err == nil {
		ct.Instructions = p.Tests[ref.Test].Instructions
	}
	return ct
}

// handleTestResults handles GET /tests/results.
func (a *API) handleTestResults(_ *hydra.Request, res *hydra.Response) error {
	httputil.WriteOK(res, ResultsResponse{
		Current: a.hydra.Session().Current(),
		Results: a.hydra.Session().Results(),
	})
	return nil
}

// handleMetrics handles GET /metrics.
func (a *API) handleMetrics(req *hydra.Request, res *hydra.Response) error {
	if a.metrics == nil {
		httputil.WriteError(res, http.StatusNotFound, "metrics are disabled", "Start the server with metrics enabled.")
		return nil
	}
	hr, err := req.HTTPRequest()
	if err != nil {
		return err
	}
	a.metrics.ServeHTTP(res, hr)
	return nil
}

// handleHealth handles GET /health.
func (a *API) handleHealth(_ *hydra.Request, res *hydra.Response) error {
	httputil.WriteOK(res, HealthResponse{
		Status:  "ok",
		Version: a.version,
		Uptime:  time.Since(a.started).Seconds(),
	})
	return nil
}
