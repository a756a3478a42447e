package source

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/topology/topologytest"
)

func writeDoc(t *testing.T, dir, name string, top *topology.Topology) {
	t.Helper()
	data, err := Encode(top, DetectFormat(name))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func newDir(t *testing.T) (*Dir, string) {
	t.Helper()
	root := t.TempDir()
	d, err := NewDir(root, nil)
	if err != nil {
		t.Fatalf("NewDir failed: %v", err)
	}
	return d, root
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.yaml":        FormatYAML,
		"a.YML":         FormatYAML,
		"a.json":        FormatJSON,
		"a.json.sz":     FormatSnapshot,
		"a.txt":         FormatUnknown,
		".netplan-1234": FormatUnknown,
	}
	for name, want := range tests {
		if got := DetectFormat(name); got != want {
			t.Errorf("DetectFormat(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDir_ListAndLoadAllFormats(t *testing.T) {
	d, root := newDir(t)

	a := topologytest.New("alpha").Router("R1").ISP("X").Link("l1", "R1", "X", "fiber", 1000, 10).Build()
	b := topologytest.New("bravo").Router("R1").ISP("X").DirectLink("l1", "R1", "X", "microwave", 500, 50).Build()
	c := topologytest.Linear().Build()

	writeDoc(t, root, "a.yaml", a)
	writeDoc(t, root, "b.json", b)
	writeDoc(t, root, "c"+SnapshotExt, c)
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	list, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 || list[0].ID != "alpha" || list[1].ID != "bravo" || list[2].ID != "linear" {
		t.Fatalf("Unexpected catalog %+v", list)
	}

	for _, want := range []*topology.Topology{a, b, c} {
		got, err := d.Load(ctx, want.ID)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", want.ID, err)
		}
		idx := topology.BuildIndex(got, nil)
		if len(idx.Issues()) != 0 || len(got.Links) != len(want.Links) {
			t.Errorf("%s: unexpected document %+v", want.ID, got)
		}
		if got.Links[0].CurrentBandwidth != want.Links[0].CurrentBandwidth {
			t.Errorf("%s: bandwidth lost in round trip", want.ID)
		}
	}
}

func TestDir_SkipsBrokenAndDuplicateDocuments(t *testing.T) {
	d, root := newDir(t)

	writeDoc(t, root, "1.yaml", topologytest.Linear().Build())
	writeDoc(t, root, "2.json", topologytest.Linear().Build())
	if err := os.WriteFile(filepath.Join(root, "3.yaml"), []byte("devices: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "4.json"), []byte(`{"name":"anonymous"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	list, err := d.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "linear" {
		t.Errorf("Expected only the first linear document, got %+v", list)
	}
}

func TestDir_LoadUnknown(t *testing.T) {
	d, _ := newDir(t)
	if _, err := d.Load(context.Background(), "nope"); !errors.Is(err, topology.ErrTopologyNotFound) {
		t.Errorf("Expected ErrTopologyNotFound, got %v", err)
	}
}

func TestDir_WriteBandwidthKeepsFormat(t *testing.T) {
	d, root := newDir(t)
	writeDoc(t, root, "linear.yaml", topologytest.Linear().Build())

	ctx := context.Background()
	n, err := d.WriteBandwidth(ctx, "linear", []topology.BandwidthUpdate{{LinkID: "l2", CurrentBandwidth: 480}})
	if err != nil {
		t.Fatalf("WriteBandwidth failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 update, got %d", n)
	}

	data, err := os.ReadFile(filepath.Join(root, "linear.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	top, err := Decode(data, FormatYAML)
	if err != nil {
		t.Fatalf("document no longer yaml: %v", err)
	}
	if top.Links[1].CurrentBandwidth != 480 {
		t.Errorf("Expected 480, got %v", top.Links[1].CurrentBandwidth)
	}

	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Errorf("Expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestDir_SaveSnapshot(t *testing.T) {
	d, root := newDir(t)

	path, err := d.SaveSnapshot(topologytest.Linear().Build())
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if path != filepath.Join(root, "linear"+SnapshotExt) {
		t.Errorf("Unexpected path %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	top, err := ReadSnapshot(f)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if top.ID != "linear" || len(top.Devices) != 3 {
		t.Errorf("Unexpected snapshot %+v", top)
	}

	if _, err := d.SaveSnapshot(&topology.Topology{}); !errors.Is(err, topology.ErrInvalidTopology) {
		t.Errorf("Expected ErrInvalidTopology, got %v", err)
	}
}

func TestSnapshot_StreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSnapshot(&buf, topologytest.Linear().Build()); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	top, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if len(top.Links) != 2 || top.Links[1].Type != "microwave" {
		t.Errorf("Unexpected snapshot %+v", top)
	}

	if _, err := ReadSnapshot(bytes.NewReader([]byte("not snappy"))); err == nil {
		t.Error("Expected error for corrupt snapshot")
	}
}

func TestNewDir_Errors(t *testing.T) {
	if _, err := NewDir(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("Expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "file.yaml")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDir(file, nil); err == nil {
		t.Error("Expected error for a regular file")
	}
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	if _, err := Decode([]byte("{}"), FormatUnknown); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}
