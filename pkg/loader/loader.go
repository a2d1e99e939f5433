package loader

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/oasftree/pkg/model"
)

//go:embed data/skills.json data/domains.json
var embedded embed.FS

// ErrNoDataFile is returned when a data directory has no file for a type.
var ErrNoDataFile = errors.New("no taxonomy data file")

// FileStems maps each taxonomy type to the base name of its data file.
var FileStems = map[model.TaxonomyType]string{
	model.TypeSkill:  "skills",
	model.TypeDomain: "domains",
}

// PreferredExtensions defines the lookup order for data files.
var PreferredExtensions = []string{".json", ".yaml", ".yml"}

// Format is the encoding of a data file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported taxonomy file extension %q", filepath.Ext(path))
	}
}

// document is the wrapped form {"categories": [...]}; a bare array is also accepted.
type document struct {
	Categories model.Forest `json:"categories" yaml:"categories"`
}

// FindTypeFile locates the data file of typ in dir, trying
// PreferredExtensions in order and skipping empty files.
func FindTypeFile(dir string, typ model.TaxonomyType) (string, error) {
	stem, ok := FileStems[typ]
	if !ok {
		return "", &model.InvalidTypeError{Type: string(typ)}
	}
	for _, ext := range PreferredExtensions {
		path := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w for %s in %s", ErrNoDataFile, typ, dir)
}

// DataFiles lists the data files present in dir, one per type at most.
// Types without a file are skipped.
func DataFiles(dir string) []string {
	var out []string
	for _, typ := range model.AllTypes {
		if path, err := FindTypeFile(dir, typ); err == nil {
			out = append(out, path)
		}
	}
	return out
}

// IsDataFileName reports whether name (a base name) is a data file the
// loader could pick up, e.g. "skills.yaml".
func IsDataFileName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(PreferredExtensions, ext) {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, s := range FileStems {
		if s == stem {
			return true
		}
	}
	return false
}

// ParseForest decodes a forest from r. Both a bare array of categories and
// an object with a "categories" key are accepted.
func ParseForest(r io.Reader, format Format) (model.Forest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy data: %w", err)
	}
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	switch format {
	case FormatYAML:
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) (model.Forest, error) {
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '{' {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parsing taxonomy JSON: %w", err)
		}
		return doc.Categories, nil
	}
	var forest model.Forest
	if err := json.Unmarshal(trimmed, &forest); err != nil {
		return nil, fmt.Errorf("parsing taxonomy JSON: %w", err)
	}
	return forest, nil
}

func parseYAML(data []byte) (model.Forest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing taxonomy YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	top := root.Content[0]
	if top.Kind == yaml.MappingNode {
		var doc document
		if err := top.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parsing taxonomy YAML: %w", err)
		}
		return doc.Categories, nil
	}
	var forest model.Forest
	if err := top.Decode(&forest); err != nil {
		return nil, fmt.Errorf("parsing taxonomy YAML: %w", err)
	}
	return forest, nil
}

// LoadForestFromFile reads and decodes one data file.
func LoadForestFromFile(path string) (model.Forest, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer file.Close()

	forest, err := ParseForest(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return forest, nil
}

// Embedded returns the built-in forest of typ.
func Embedded(typ model.TaxonomyType) (model.Forest, error) {
	stem, ok := FileStems[typ]
	if !ok {
		return nil, &model.InvalidTypeError{Type: string(typ)}
	}
	f, err := embedded.Open("data/" + stem + ".json")
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s data: %w", typ, err)
	}
	defer f.Close()
	return ParseForest(f, FormatJSON)
}

// EmbeddedDataset returns the built-in forests of every type.
func EmbeddedDataset() (model.Dataset, error) {
	ds := make(model.Dataset, len(model.AllTypes))
	for _, typ := range model.AllTypes {
		forest, err := Embedded(typ)
		if err != nil {
			return nil, err
		}
		ds[typ] = forest
	}
	return ds, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
