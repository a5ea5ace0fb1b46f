package testkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// Vars holds values captured by earlier steps of a flow.
type Vars map[string]string

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Expand replaces every {{name}} in s. Unknown names are left as is.
func (v Vars) Expand(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if val, ok := v[name]; ok {
			return val
		}
		return m
	})
}

// Run executes a single scenario file against handler.
func Run(t *testing.T, handler http.Handler, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}
	t.Run(s.Name, func(t *testing.T) {
		Exec(t, handler, s, Vars{})
	})
}

// RunDir runs every *.json file in dir as an independent scenario.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			Exec(t, handler, s, Vars{})
		})
	}
}

// RunFlow runs the scenarios of one flow file in order, sharing captured
// variables. A failing step stops the flow. It returns the final variables.
func RunFlow(t *testing.T, handler http.Handler, flowPath string, seed ...Vars) Vars {
	t.Helper()

	steps, err := LoadScenarioArray(flowPath)
	if err != nil {
		t.Fatalf("testkit: %v", err)
	}

	vars := Vars{}
	for _, s := range seed {
		for k, v := range s {
			vars[k] = v
		}
	}
	for _, s := range steps {
		if !t.Run(s.Name, func(t *testing.T) { Exec(t, handler, s, vars) }) {
			t.Fatalf("testkit: flow %q stopped at %q", flowPath, s.Name)
		}
	}
	return vars
}

// Exec fires s against handler, asserts the response and stores captures
// into vars. It returns the recorded response.
func Exec(t *testing.T, handler http.Handler, s *Scenario, vars Vars) *httptest.ResponseRecorder {
	t.Helper()

	req := buildRequest(t, s, vars)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code)

	expected, err := s.expectedJSON()
	if err != nil {
		t.Errorf("[%s] read response file: %v", s.Name, err)
	} else if len(expected) > 0 {
		AssertJSONSubset(t, s, []byte(vars.Expand(string(expected))), rec.Body.Bytes())
	}

	if len(s.Capture) > 0 {
		capture(t, s, rec.Body.Bytes(), vars)
	}
	return rec
}

func buildRequest(t *testing.T, s *Scenario, vars Vars) *http.Request {
	t.Helper()

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(s.Form) > 0:
		form := url.Values{}
		for k, v := range s.Form {
			form.Set(k, vars.Expand(v))
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		data, err := s.requestJSON()
		if err != nil {
			t.Fatalf("[%s] read request file: %v", s.Name, err)
		}
		if len(data) > 0 {
			body = bytes.NewReader([]byte(vars.Expand(string(data))))
			contentType = "application/json"
		}
	}

	req := httptest.NewRequest(strings.ToUpper(s.RequestMethod), vars.Expand(s.RequestURL), body)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range s.Headers {
		req.Header.Set(k, vars.Expand(v))
	}
	return req
}

func capture(t *testing.T, s *Scenario, body []byte, vars Vars) {
	t.Helper()

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Errorf("[%s] capture: response is not JSON: %v", s.Name, err)
		return
	}
	for name, path := range s.Capture {
		val, ok := Lookup(doc, path)
		if !ok {
			t.Errorf("[%s] capture %q: path %q not in response", s.Name, name, path)
			continue
		}
		switch v := val.(type) {
		case string:
			vars[name] = v
		default:
			vars[name] = fmt.Sprint(v)
		}
	}
}

// Lookup resolves a dotted path ("data.items.0.f_id") in a decoded JSON
// document.
func Lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			var i int
			if _, err := fmt.Sscanf(part, "%d", &i); err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}
