package hub

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format identifies a dataset file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for file extensions with no decoder.
var ErrUnknownFormat = errors.New("unknown dataset format")

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// fileDataset is the on-disk representation shared by all three formats.
type fileDataset struct {
	Title string     `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Hub   fileHub    `json:"hub" yaml:"hub" toml:"hub"`
	Nodes []fileNode `json:"nodes" yaml:"nodes" toml:"nodes"`
}

type fileHub struct {
	Label  string  `json:"label" yaml:"label" toml:"label"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty" toml:"radius,omitempty"`
}

type fileNode struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Label    string         `json:"label" yaml:"label" toml:"label"`
	Severity string         `json:"severity" yaml:"severity" toml:"severity"`
	Angle    *float64       `json:"angle,omitempty" yaml:"angle,omitempty" toml:"angle,omitempty"`
	Distance *float64       `json:"distance,omitempty" yaml:"distance,omitempty" toml:"distance,omitempty"`
	Size     *float64       `json:"size,omitempty" yaml:"size,omitempty" toml:"size,omitempty"`
	Radius   *float64       `json:"radius,omitempty" yaml:"radius,omitempty" toml:"radius,omitempty"` // alternative to size
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

// Load reads a dataset, choosing the decoder from the file extension.
func Load(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	ds, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// Parse decodes a dataset from memory.
func Parse(data []byte, format Format) (*Dataset, error) {
	var f fileDataset
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	case FormatYAML:
		err = yaml.Unmarshal(data, &f)
	case FormatTOML:
		_, err = toml.Decode(string(data), &f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s dataset: %w", format, err)
	}

	ds := New(Hub{Label: f.Hub.Label, Radius: f.Hub.Radius})
	ds.Title = f.Title
	for _, fn := range f.Nodes {
		// Unknown tiers are kept as SeverityUnknown and reported by Validate.
		sev, _ := ParseSeverity(fn.Severity)
		size := fn.Size
		if size == nil && fn.Radius != nil {
			size = Float(*fn.Radius * 2)
		}
		ds.AddNode(Node{
			ID:       fn.ID,
			Label:    fn.Label,
			Severity: sev,
			Angle:    fn.Angle,
			Distance: fn.Distance,
			Size:     size,
			Metadata: fn.Metadata,
		})
	}
	return ds, nil
}

// Marshal encodes a dataset in the given format.
func Marshal(ds *Dataset, format Format) ([]byte, error) {
	f := fileDataset{
		Title: ds.Title,
		Hub:   fileHub{Label: ds.Hub.Label, Radius: ds.Hub.Radius},
		Nodes: make([]fileNode, 0, len(ds.Nodes)),
	}
	for _, n := range ds.Nodes {
		f.Nodes = append(f.Nodes, fileNode{
			ID:       n.ID,
			Label:    n.Label,
			Severity: n.Severity.String(),
			Angle:    n.Angle,
			Distance: n.Distance,
			Size:     n.Size,
			Metadata: n.Metadata,
		})
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(f, "", "  ")
	case FormatYAML:
		return yaml.Marshal(f)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
