package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/api"
	"github.com/dd0wney/cluso-netplan/pkg/config"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/metrics"
	"github.com/dd0wney/cluso-netplan/pkg/source"
	"github.com/dd0wney/cluso-netplan/pkg/topology/topologytest"
)

// TestCompleteOperatorWorkflow walks an operator through activating a
// topology, querying it, refreshing bandwidth and planning capacity
func TestCompleteOperatorWorkflow(t *testing.T) {
	dir := writeTopologyDir(t)
	server := startTestServer(t, dir)
	baseURL := server.URL

	t.Log("Step 1: list topologies")
	list := request(t, http.MethodGet, baseURL+"/topologies", nil, http.StatusOK)
	assert.EqualValues(t, 1, list["count"])

	t.Log("Step 2: not ready before activation")
	request(t, http.MethodGet, baseURL+"/health/ready", nil, http.StatusServiceUnavailable)
	request(t, http.MethodPost, baseURL+"/path", map[string]any{"from": "R1", "to": "ISP1"}, http.StatusConflict)

	t.Log("Step 3: activate")
	act := request(t, http.MethodPost, baseURL+"/topologies/linear/activate", nil, http.StatusOK)
	assert.EqualValues(t, 3, act["devices"])
	request(t, http.MethodGet, baseURL+"/health/ready", nil, http.StatusOK)

	t.Log("Step 4: paths")
	path := request(t, http.MethodPost, baseURL+"/path", map[string]any{"from": "R1", "to": "ISP1"}, http.StatusOK)
	assert.EqualValues(t, 2, path["hops"])
	sp := request(t, http.MethodPost, baseURL+"/shortest-path", map[string]any{"from": "R1", "to": "ISP1"}, http.StatusOK)
	assert.InDelta(t, 22.33, sp["weight"], 1e-9)

	t.Log("Step 5: refresh bandwidth")
	bw := request(t, http.MethodPut, baseURL+"/topologies/linear/bandwidth", map[string]any{
		"updates": []map[string]any{{"linkId": "l2", "currentBandwidth": 480}},
	}, http.StatusOK)
	assert.Equal(t, true, bw["persisted"])
	assert.EqualValues(t, 2, bw["version"])

	reread, err := source.NewDir(dir, logging.NewNopLogger())
	require.NoError(t, err)
	doc, err := reread.Load(context.Background(), "linear")
	require.NoError(t, err)
	for _, l := range doc.Links {
		if l.ID == "l2" {
			assert.Equal(t, 480.0, l.CurrentBandwidth, "bandwidth should be written back to the file")
		}
	}

	t.Log("Step 6: usage reflects the refresh")
	usage := request(t, http.MethodGet, baseURL+"/usage/links", nil, http.StatusOK)
	require.EqualValues(t, 1, usage["count"])
	congested := usage["links"].([]any)[0].(map[string]any)
	assert.Equal(t, "l2", congested["link"].(map[string]any)["id"])

	t.Log("Step 7: capacity plan")
	plan := request(t, http.MethodPost, baseURL+"/capacity-plan", map[string]any{
		"deviceId": "R1", "requiredMbps": 100, "mode": "direct",
	}, http.StatusOK)
	analyses := plan["analyses"].([]any)
	require.Len(t, analyses, 1)
	assert.Equal(t, "Needs Upgrade", analyses[0].(map[string]any)["status"])

	t.Log("Step 8: GraphQL sees the same state")
	gql := request(t, http.MethodPost, baseURL+"/graphql", map[string]any{
		"query": `{ activeTopology { version } congestedLinks { link { id } percent } }`,
	}, http.StatusOK)
	data := gql["data"].(map[string]any)
	assert.EqualValues(t, 2, data["activeTopology"].(map[string]any)["version"])
	assert.Len(t, data["congestedLinks"], 1)
}

// TestConcurrentReadsDuringRefresh checks that analyses running while the
// topology is refreshed always observe a complete topology
func TestConcurrentReadsDuringRefresh(t *testing.T) {
	server := startTestServer(t, writeTopologyDir(t))
	baseURL := server.URL
	request(t, http.MethodPost, baseURL+"/topologies/linear/activate", nil, http.StatusOK)

	const workers, perWorker, refreshes = 8, 20, 20

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker+refreshes)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range refreshes {
			body := map[string]any{"updates": []map[string]any{{"linkId": "l1", "currentBandwidth": float64(i * 40)}}}
			if status, _, err := send(http.MethodPut, baseURL+"/topologies/linear/bandwidth", body); err != nil || status != http.StatusOK {
				errs <- fmt.Errorf("refresh %d: status %d: %v", i, status, err)
			}
		}
	}()

	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range perWorker {
				status, out, err := send(http.MethodPost, baseURL+"/shortest-path", map[string]any{"from": "R1", "to": "ISP1"})
				if err != nil || status != http.StatusOK {
					errs <- fmt.Errorf("worker %d request %d: status %d: %v", w, j, status, err)
					continue
				}
				if out["found"] != true || len(out["path"].([]any)) != 3 {
					errs <- fmt.Errorf("worker %d request %d: incomplete result %v", w, j, out)
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	var errList []error
	for err := range errs {
		errList = append(errList, err)
	}
	require.Empty(t, errList)

	final := request(t, http.MethodPost, baseURL+"/graphql", map[string]any{"query": `{ activeTopology { version } }`}, http.StatusOK)
	version := final["data"].(map[string]any)["activeTopology"].(map[string]any)["version"]
	assert.EqualValues(t, 1+refreshes, version)
}

// TestErrorHandling checks error statuses and the error body shape
func TestErrorHandling(t *testing.T) {
	server := startTestServer(t, writeTopologyDir(t))
	baseURL := server.URL
	request(t, http.MethodPost, baseURL+"/topologies/linear/activate", nil, http.StatusOK)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown topology", http.MethodPost, "/topologies/atlantis/activate", nil, http.StatusNotFound},
		{"unknown device", http.MethodPost, "/routes", map[string]any{"deviceId": "R404"}, http.StatusNotFound},
		{"inactive topology bandwidth", http.MethodPut, "/topologies/other/bandwidth",
			map[string]any{"updates": []map[string]any{{"linkId": "l1", "currentBandwidth": 1}}}, http.StatusConflict},
		{"negative requirement", http.MethodPost, "/capacity-plan", map[string]any{"deviceId": "R1", "requiredMbps": -1}, http.StatusBadRequest},
		{"bad threshold", http.MethodGet, "/usage/links?threshold=nan", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/nowhere", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out, err := send(tt.method, baseURL+tt.path, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			if out != nil {
				assert.EqualValues(t, tt.status, out["code"])
				assert.NotEmpty(t, out["message"])
			}
		})
	}
}

func writeTopologyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data, err := source.Encode(topologytest.Linear().Build(), source.FormatYAML)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "linear.yaml"), data, 0o644))
	return dir
}

func startTestServer(t *testing.T, dir string) *httptest.Server {
	t.Helper()

	src, err := source.NewDir(dir, logging.NewNopLogger())
	require.NoError(t, err, "Failed to open topology directory")

	registry := metrics.NewRegistry()
	svc := analysis.New(analysis.Options{Source: src, Metrics: registry, Logger: logging.NewNopLogger()})
	apiServer, err := api.NewServer(api.Options{
		Config:  config.Default().Server,
		Service: svc,
		Metrics: registry,
		Logger:  logging.NewNopLogger(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(apiServer.Handler())
	t.Cleanup(server.Close)
	return server
}

// send issues a JSON request and decodes a JSON object response. out is nil
// when the response is not a JSON object.
func send(method, url string, body any) (int, map[string]any, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var out map[string]any
	if json.Unmarshal(raw, &out) != nil {
		out = nil
	}
	return resp.StatusCode, out, nil
}

func request(t *testing.T, method, url string, body any, wantStatus int) map[string]any {
	t.Helper()
	status, out, err := send(method, url, body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, status, "%s %s: %v", method, url, out)
	return out
}
