package graphql

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/topology/topologytest"
)

func postQuery(t *testing.T, h http.Handler, req GraphQLRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	r := httptest.NewRequest("POST", "/graphql", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// TestGraphQLHTTPHandler tests the HTTP handler for GraphQL queries
func TestGraphQLHTTPHandler(t *testing.T) {
	schema, _ := newTestSchema(t)
	handler := NewGraphQLHandler(schema, logging.NewNopLogger())

	w := postQuery(t, handler, GraphQLRequest{
		Query:     `query($id: ID!) { routes(deviceId: $id) { nextHop } }`,
		Variables: map[string]any{"id": "R1"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var response GraphQLResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Errors) > 0 {
		t.Fatalf("Unexpected errors: %v", response.Errors)
	}
	routes := response.Data.(map[string]any)["routes"].([]any)
	if len(routes) != 2 {
		t.Errorf("Expected 2 routes, got %d", len(routes))
	}
}

func TestGraphQLHTTPHandler_UnreachableMetricIsInfinity(t *testing.T) {
	svc := analysis.New(analysis.Options{Logger: logging.NewNopLogger()})
	top := topologytest.New("split").Router("A", "B").ISP("I").Link("l1", "A", "I", "fiber", 100, 0).Build()
	if _, err := svc.Replace(top); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	schema, err := NewSchema(svc)
	if err != nil {
		t.Fatalf("NewSchema() error = %v", err)
	}

	w := postQuery(t, NewGraphQLHandler(schema, nil), GraphQLRequest{
		Query: `{ routes(deviceId: "B") { nextHop metric } }`,
	})

	if !strings.Contains(w.Body.String(), `"metric":"Infinity"`) {
		t.Errorf("Expected an Infinity metric, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"nextHop":"Unreachable"`) {
		t.Errorf("Expected an unreachable next hop, got %s", w.Body.String())
	}
}

func TestGraphQLHTTPHandler_BadRequests(t *testing.T) {
	schema, _ := newTestSchema(t)
	handler := NewGraphQLHandler(schema, nil)

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"GET not allowed", "GET", "", http.StatusMethodNotAllowed},
		{"invalid JSON", "POST", "{not json", http.StatusBadRequest},
		{"empty query", "POST", `{"query":""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/graphql", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
			var response GraphQLResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil || len(response.Errors) != 1 {
				t.Errorf("Expected one error in body, got %v (%v)", response, err)
			}
		})
	}
}

func TestGraphQLHTTPHandler_DepthLimit(t *testing.T) {
	schema, _ := newTestSchema(t)
	handler := NewGraphQLHandler(schema, nil)
	handler.SetMaxDepth(2)

	w := postQuery(t, handler, GraphQLRequest{
		Query: `{ activeTopology { devices { ports { id } } } }`,
	})

	var response GraphQLResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Errors) != 1 || !strings.Contains(response.Errors[0].Message, "exceeds maximum allowed depth") {
		t.Errorf("Expected a depth error, got %v", response.Errors)
	}
	if response.Data != nil {
		t.Errorf("Expected no data, got %v", response.Data)
	}
}
