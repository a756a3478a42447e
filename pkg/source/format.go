package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Format is the encoding of a topology document
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatJSON
	// FormatSnapshot is snappy-compressed JSON
	FormatSnapshot
)

// SnapshotExt is the file extension of compressed snapshots
const SnapshotExt = ".json.sz"

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// DetectFormat infers the format from a file name
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, SnapshotExt):
		return FormatSnapshot
	case strings.HasSuffix(name, ".json"):
		return FormatJSON
	case strings.HasSuffix(name, ".yaml"), strings.HasSuffix(name, ".yml"):
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Decode parses a topology document
func Decode(data []byte, format Format) (*topology.Topology, error) {
	var t topology.Topology
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse yaml topology: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse json topology: %w", err)
		}
	case FormatSnapshot:
		raw, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
	default:
		return nil, ErrUnsupportedFormat
	}
	return &t, nil
}

// Encode renders a topology document
func Encode(t *topology.Topology, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("failed to encode yaml topology: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(t, "", "  ")
	case FormatSnapshot:
		raw, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return snappy.Encode(nil, raw), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// WriteSnapshot writes t to w as a compressed snapshot
func WriteSnapshot(w io.Writer, t *topology.Topology) error {
	data, err := Encode(t, FormatSnapshot)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadSnapshot reads a compressed snapshot from r
func ReadSnapshot(r io.Reader) (*topology.Topology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Decode(data, FormatSnapshot)
}
