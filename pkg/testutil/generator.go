// Package testutil provides deterministic taxonomy forest fixtures for tests
// and benchmarks. All generators produce the same output for the same seed.
package testutil

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vanderheijden86/oasftree/pkg/model"
)

// GeneratorConfig controls forest generation.
type GeneratorConfig struct {
	Seed        int64  // Random seed for determinism (0 = 42)
	SlugPrefix  string // Prefix for generated slugs (default: "cat")
	Roots       int    // Number of root categories (default: 3)
	MaxChildren int    // Upper bound of children per node (default: 4)
	MaxDepth    int    // Deepest level generated, roots are depth 0 (default: 3)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:        42,
		SlugPrefix:  "cat",
		Roots:       3,
		MaxChildren: 4,
		MaxDepth:    3,
	}
}

// Generator creates forests with various shapes.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.SlugPrefix == "" {
		cfg.SlugPrefix = def.SlugPrefix
	}
	if cfg.Roots <= 0 {
		cfg.Roots = def.Roots
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = def.MaxChildren
	}
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

var nameWords = []string{
	"Natural", "Language", "Processing", "Vision", "Audio", "Retrieval",
	"Agent", "Planning", "Security", "Analytics", "Finance", "Medical",
	"Translation", "Summarization", "Code", "Generation", "Robotics", "Data",
}

func (g *Generator) category(depth int) model.Category {
	g.next++
	words := make([]string, 1+g.rng.Intn(3))
	for i := range words {
		words[i] = nameWords[g.rng.Intn(len(nameWords))]
	}
	c := model.Category{
		Slug: fmt.Sprintf("%s-%d", g.cfg.SlugPrefix, g.next),
		Name: strings.Join(words, " "),
	}
	if depth < g.cfg.MaxDepth {
		n := g.rng.Intn(g.cfg.MaxChildren + 1)
		for i := 0; i < n; i++ {
			c.Children = append(c.Children, g.category(depth+1))
		}
	}
	return c
}

// Random builds a forest with random fan-out up to the configured bounds.
func (g *Generator) Random() model.Forest {
	f := make(model.Forest, 0, g.cfg.Roots)
	for i := 0; i < g.cfg.Roots; i++ {
		f = append(f, g.category(0))
	}
	return f
}

// Chain creates a single path n0 > n1 > ... > n{size-1}.
func Chain(size int) model.Forest {
	if size <= 0 {
		return nil
	}
	var build func(i int) model.Category
	build = func(i int) model.Category {
		c := model.Category{Slug: fmt.Sprintf("n%d", i), Name: fmt.Sprintf("Node %d", i)}
		if i+1 < size {
			c.Children = []model.Category{build(i + 1)}
		}
		return c
	}
	return model.Forest{build(0)}
}

// Balanced creates one root with the given fan-out repeated to depth levels
// below it. Slugs encode the path, e.g. "b-0-2-1".
func Balanced(depth, fanout int) model.Forest {
	var build func(slug string, d int) model.Category
	build = func(slug string, d int) model.Category {
		c := model.Category{Slug: slug, Name: "Balanced " + strings.TrimPrefix(slug, "b")}
		if d == depth {
			return c
		}
		for i := 0; i < fanout; i++ {
			c.Children = append(c.Children, build(fmt.Sprintf("%s-%d", slug, i), d+1))
		}
		return c
	}
	return model.Forest{build("b", 0)}
}

// Sample returns the four-node forest A(B(D), C).
func Sample() model.Forest {
	return model.Forest{
		{Slug: "a", Name: "A", Children: []model.Category{
			{Slug: "b", Name: "B", Children: []model.Category{
				{Slug: "d", Name: "D"},
			}},
			{Slug: "c", Name: "C"},
		}},
	}
}

// TenNodes returns a ten-category forest with two roots and three levels.
func TenNodes() model.Forest {
	return model.Forest{
		{Slug: "nlp", Name: "Natural Language Processing", Children: []model.Category{
			{Slug: "nlp-gen", Name: "Text Generation", Children: []model.Category{
				{Slug: "nlp-gen-sum", Name: "Summarization"},
				{Slug: "nlp-gen-dialog", Name: "Dialogue"},
			}},
			{Slug: "nlp-tr", Name: "Translation"},
		}},
		{Slug: "cv", Name: "Computer Vision", Children: []model.Category{
			{Slug: "cv-det", Name: "Object Detection", Children: []model.Category{
				{Slug: "cv-det-face", Name: "Face Detection"},
			}},
			{Slug: "cv-seg", Name: "Segmentation"},
			{Slug: "cv-ocr", Name: "Optical Character Recognition"},
		}},
	}
}
