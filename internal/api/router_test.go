package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/otbridge/plantgate/internal/plant"
	"github.com/otbridge/plantgate/internal/state"
	"github.com/otbridge/plantgate/internal/storage"
	"github.com/otbridge/plantgate/internal/tools"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testFieldDoc = `## Datapoint Naming Conventions
- ` + "`*_AI_Assistant`" + ` - Datapoints designated for AI manipulation
`

type mapConfig map[string]string

func (c mapConfig) GetValues(_ context.Context, keys []string) ([]string, error) {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		v, ok := c[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", plant.ErrMissingKey, key)
		}
		out = append(out, v)
	}
	return out, nil
}

type mapDocStore map[string]string

func (s mapDocStore) ReadText(_ context.Context, path string) (string, error) {
	text, ok := s[path]
	if !ok {
		return "", fmt.Errorf("document %q not found", path)
	}
	return text, nil
}

// testRouter spins up the HTTP surface over a simulated plant with the
// given configured API token.
func testRouter(t *testing.T, configuredToken string) (*httptest.Server, func()) {
	t.Helper()

	sim := plant.DefaultSimPlant()
	cfg := mapConfig{
		"tls_key_path":              "",
		"tls_cert_path":             "",
		"api_token":                 configuredToken,
		"field_instructions_path":   "field.md",
		"project_instructions_path": "project.md",
		"namespace_view":            "PlantOverview",
	}
	docs := mapDocStore{"field.md": testFieldDoc, "project.md": ""}
	logger := zap.NewNop()
	mgr := state.NewManager(state.Sources{Config: cfg, Documents: docs, Namespace: sim}, logger)
	svc := tools.NewService(tools.DefaultRegistry(), mgr, sim, sim, storage.NewLogWriter(logger), logger)

	srv := httptest.NewServer(NewRouter(&Dependencies{Tools: svc, Logger: logger}))
	return srv, srv.Close
}

func doCall(t *testing.T, srv *httptest.Server, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/tools/call", strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestRouter_Healthz(t *testing.T) {
	srv, cleanup := testRouter(t, "pgt_secret")
	defer cleanup()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	srv, cleanup := testRouter(t, "pgt_secret")
	defer cleanup()

	resp, _ := doCall(t, srv, "", `{"name":"browse_plant"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doCall(t, srv, "wrong_token", `{"name":"browse_plant"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", resp.StatusCode)
	}
}

func TestRouter_BcryptToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pgt_secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	srv, cleanup := testRouter(t, string(hash))
	defer cleanup()

	resp, _ := doCall(t, srv, "pgt_secret", `{"name":"get_write_policy"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bcrypt-hashed token status = %d, want 200", resp.StatusCode)
	}
	resp, _ = doCall(t, srv, "pgt_other", `{"name":"get_write_policy"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token against hash status = %d, want 401", resp.StatusCode)
	}
}

func TestRouter_ToolCallRoundTrip(t *testing.T) {
	srv, cleanup := testRouter(t, "pgt_secret")
	defer cleanup()

	resp, body := doCall(t, srv, "pgt_secret",
		`{"name":"write_datapoint","arguments":{"name":"Boiler1_AI_Assistant","value":7}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("allowed write status = %d, body %v", resp.StatusCode, body)
	}
	if body["request_id"] == "" || body["request_id"] == nil {
		t.Error("response missing request_id")
	}
	result := body["result"].(map[string]any)
	if result["written"] != true {
		t.Errorf("result = %v, want written=true", result)
	}

	resp, body = doCall(t, srv, "pgt_secret",
		`{"name":"read_datapoint","arguments":{"name":"Boiler1_AI_Assistant"}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read-back status = %d", resp.StatusCode)
	}
	if got := body["result"].(map[string]any)["value"]; got != float64(7) {
		t.Errorf("read-back value = %v, want 7", got)
	}
}

func TestRouter_DeniedWriteIs403WithPatterns(t *testing.T) {
	srv, cleanup := testRouter(t, "pgt_secret")
	defer cleanup()

	resp, body := doCall(t, srv, "pgt_secret",
		`{"name":"write_datapoint","arguments":{"name":"Boiler1_Safety_ESD","value":0}}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("denied write status = %d, want 403", resp.StatusCode)
	}
	errObj := body["error"].(map[string]any)
	if !strings.Contains(errObj["message"].(string), "*_AI_Assistant") {
		t.Errorf("denial message %q missing allowed pattern", errObj["message"])
	}
}

func TestRouter_ListTools(t *testing.T) {
	srv, cleanup := testRouter(t, "pgt_secret")
	defer cleanup()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/tools", nil)
	req.Header.Set("Authorization", "Bearer pgt_secret")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	defer resp.Body.Close()
	var body ToolListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Tools) != 6 {
		t.Errorf("tool list has %d entries, want 6", len(body.Tools))
	}
}

func TestRouter_BadRequestBody(t *testing.T) {
	srv, cleanup := testRouter(t, "pgt_secret")
	defer cleanup()

	resp, _ := doCall(t, srv, "pgt_secret", `{"arguments":{}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing tool name status = %d, want 400", resp.StatusCode)
	}
	resp, _ = doCall(t, srv, "pgt_secret", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", resp.StatusCode)
	}
}

func TestRouter_InitFailureIs503(t *testing.T) {
	sim := plant.DefaultSimPlant()
	logger := zap.NewNop()
	// Config source missing every key: initialization can never succeed.
	mgr := state.NewManager(state.Sources{Config: mapConfig{}, Documents: mapDocStore{}, Namespace: sim}, logger)
	svc := tools.NewService(tools.DefaultRegistry(), mgr, sim, sim, storage.NewLogWriter(logger), logger)
	srv := httptest.NewServer(NewRouter(&Dependencies{Tools: svc, Logger: logger}))
	defer srv.Close()

	resp, _ := doCall(t, srv, "any_token", `{"name":"browse_plant"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("init failure status = %d, want 503", resp.StatusCode)
	}
}
