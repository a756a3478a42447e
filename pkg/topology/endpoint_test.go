package topology_test

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

func TestEndpoint_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want topology.Endpoint
	}{
		{"string id", `"port-r1-1"`, topology.Ref("port-r1-1")},
		{"node object", `{"id":"router1","name":"Core","x":10}`, topology.DeviceRef("router1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got topology.Endpoint
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	var bad topology.Endpoint
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Error("expected an error for a numeric endpoint")
	}
}

func TestEndpoint_MarshalJSONKeepsKind(t *testing.T) {
	data, err := json.Marshal(topology.Link{ID: "l1", Source: topology.DeviceRef("a"), Target: topology.PortRef("b:1")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if src, ok := raw["source"].(map[string]any); !ok || src["id"] != "a" {
		t.Errorf("device endpoint not written as an object: %s", data)
	}
	if raw["target"] != "b:1" {
		t.Errorf("port endpoint not written as an id: %s", data)
	}
}

func TestEndpoint_RoundTrip(t *testing.T) {
	link := topology.Link{
		ID:           "l1",
		Source:       topology.DeviceRef("r1"),
		Target:       topology.Ref("r2:1"),
		MaxBandwidth: 100,
	}

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(link)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var got topology.Link
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if got.Source != link.Source || got.Target != link.Target {
			t.Errorf("endpoints = %+v / %+v, want %+v / %+v", got.Source, got.Target, link.Source, link.Target)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := yaml.Marshal(link)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var got topology.Link
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal failed: %v\n%s", err, data)
		}
		if got.Source != link.Source || got.Target != link.Target {
			t.Errorf("endpoints = %+v / %+v, want %+v / %+v\n%s", got.Source, got.Target, link.Source, link.Target, data)
		}
	})
}

func TestEndpoint_UnmarshalYAML(t *testing.T) {
	doc := `
id: l1
source: isp1
target:
  id: router1
maxBandwidth: 500
currentBandwidth: 300
`
	var l topology.Link
	if err := yaml.Unmarshal([]byte(doc), &l); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if l.Source != topology.Ref("isp1") {
		t.Errorf("source = %+v", l.Source)
	}
	if l.Target != topology.DeviceRef("router1") {
		t.Errorf("target = %+v", l.Target)
	}
	if l.MaxBandwidth != 500 || l.CurrentBandwidth != 300 {
		t.Errorf("bandwidth = %v/%v", l.CurrentBandwidth, l.MaxBandwidth)
	}
}
