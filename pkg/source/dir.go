package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Dir serves topology documents from a directory. Every *.yaml, *.yml, *.json
// and *.json.sz file holds one topology; the id inside the document names it.
// The directory is rescanned on every call so files can be dropped in while
// the server runs.
type Dir struct {
	mu     sync.Mutex // serialises writes
	root   string
	logger logging.Logger
}

// NewDir opens a directory source
func NewDir(root string, logger logging.Logger) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("topology directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("topology directory: %s is not a directory", root)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Dir{root: root, logger: logger.With(logging.Component("source-dir"))}, nil
}

// Name implements Source
func (d *Dir) Name() string { return KindDir }

// Root returns the directory being served
func (d *Dir) Root() string { return d.root }

// Ping checks the directory is still readable
func (d *Dir) Ping(ctx context.Context) error {
	_, err := os.ReadDir(d.root)
	return err
}

type dirEntry struct {
	path     string
	topology *topology.Topology
}

// scan parses every document in file name order. Unreadable documents and
// repeated ids are skipped with a warning.
func (d *Dir) scan(ctx context.Context) ([]dirEntry, error) {
	files, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology directory: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	seen := make(map[string]string)
	out := make([]dirEntry, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.IsDir() || DetectFormat(f.Name()) == FormatUnknown {
			continue
		}
		path := filepath.Join(d.root, f.Name())
		t, err := d.read(path)
		if err != nil {
			d.logger.Warn("topology document skipped", logging.Path(path), logging.Error(err))
			continue
		}
		if first, dup := seen[t.ID]; dup {
			d.logger.Warn("duplicate topology id skipped",
				logging.Path(path), logging.TopologyID(t.ID), logging.String("first", first))
			continue
		}
		seen[t.ID] = path
		out = append(out, dirEntry{path: path, topology: t})
	}
	return out, nil
}

func (d *Dir) read(path string) (*topology.Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Decode(data, DetectFormat(path))
	if err != nil {
		return nil, err
	}
	if t.ID == "" {
		return nil, fmt.Errorf("%w: document has no id", topology.ErrInvalidTopology)
	}
	return t, nil
}

func (d *Dir) find(ctx context.Context, id string) (dirEntry, error) {
	entries, err := d.scan(ctx)
	if err != nil {
		return dirEntry{}, err
	}
	for _, e := range entries {
		if e.topology.ID == id {
			return e, nil
		}
	}
	return dirEntry{}, fmt.Errorf("topology %q in %s: %w", id, d.root, topology.ErrTopologyNotFound)
}

// List implements topology.Loader
func (d *Dir) List(ctx context.Context) ([]topology.Summary, error) {
	entries, err := d.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]topology.Summary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.topology.Summary())
	}
	return out, nil
}

// Load implements topology.Loader
func (d *Dir) Load(ctx context.Context, id string) (*topology.Topology, error) {
	e, err := d.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.topology, nil
}

// WriteBandwidth rewrites the document holding the topology in its own format
func (d *Dir) WriteBandwidth(ctx context.Context, topologyID string, updates []topology.BandwidthUpdate) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.find(ctx, topologyID)
	if err != nil {
		return 0, err
	}
	n := applyUpdates(e.topology, updates)
	if n == 0 {
		return 0, nil
	}
	if err := writeFile(e.path, e.topology, DetectFormat(e.path)); err != nil {
		return 0, err
	}
	return n, nil
}

// SaveSnapshot stores t as <root>/<id>.json.sz and returns the path
func (d *Dir) SaveSnapshot(t *topology.Topology) (string, error) {
	if t == nil || t.ID == "" {
		return "", fmt.Errorf("%w: snapshot needs a topology id", topology.ErrInvalidTopology)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	path := filepath.Join(d.root, filepath.Base(t.ID)+SnapshotExt)
	if err := writeFile(path, t, FormatSnapshot); err != nil {
		return "", err
	}
	d.logger.Info("topology snapshot saved", logging.TopologyID(t.ID), logging.Path(path))
	return path, nil
}

// writeFile replaces path atomically
func writeFile(path string, t *topology.Topology, format Format) error {
	data, err := Encode(t, format)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".netplan-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
