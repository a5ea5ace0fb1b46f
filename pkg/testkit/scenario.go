// Package testkit drives REST API tests from JSON scenario files.
//
// A scenario describes one request and what the response must contain:
//
//	testdata/
//	  signup_buyer.json        ← scenario
//	  signup_buyer_req.json    ← request body
//	  signup_buyer_res.json    ← expected response (subset)
//
// A flow is a JSON array of scenarios run in order against the same
// handler. Values captured from one response ("capture") are substituted
// into later requests wherever {{name}} appears.
//
//	func TestAPI(t *testing.T) {
//	    handler := kernel.NewHTTPKernel(c).Handler()
//	    testkit.RunDir(t, handler, "testdata")
//	    testkit.RunFlow(t, handler, "testdata/flows/buyer.json")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scenario describes a single REST API test case.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`   // defaults to GET
	RequestURL      string            `json:"requestUrl"`      // e.g. /api/v2/stores
	RequestFileName string            `json:"requestFileName"` // JSON body file, relative to the scenario
	RequestBody     json.RawMessage   `json:"requestBody"`     // inline JSON body; wins over the file
	Form            map[string]string `json:"form"`            // urlencoded body; wins over JSON
	Headers         map[string]string `json:"headers"`

	ExpectedCode     int             `json:"expectedCode"`
	ResponseFileName string          `json:"responseFileName"` // expected body file
	Response         json.RawMessage `json:"response"`         // inline expected body; wins over the file

	// Capture maps a variable name to a dotted path in the response body,
	// e.g. {"buyer": "data.u_id"}.
	Capture map[string]string `json:"capture"`

	dir string
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	return &s, nil
}

// LoadScenarioArray reads a flow: an ordered array of scenarios.
func LoadScenarioArray(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve flow path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read flow %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse flow %q: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: flow %q step %d: %w", abs, i, err)
		}
		s.dir = dir
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// RequestBodyPath returns the absolute path to the request body file, or ""
// when none is set.
func (s *Scenario) RequestBodyPath() string { return s.resolve(s.RequestFileName) }

// ResponseBodyPath returns the absolute path to the expected response file,
// or "" when none is set.
func (s *Scenario) ResponseBodyPath() string { return s.resolve(s.ResponseFileName) }

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// requestJSON returns the JSON request body, inline first.
func (s *Scenario) requestJSON() ([]byte, error) {
	if present(s.RequestBody) {
		return s.RequestBody, nil
	}
	if p := s.RequestBodyPath(); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

// expectedJSON returns the expected response body, inline first.
func (s *Scenario) expectedJSON() ([]byte, error) {
	if present(s.Response) {
		return s.Response, nil
	}
	if p := s.ResponseBodyPath(); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
