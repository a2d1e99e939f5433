package export

import (
	"fmt"

	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
)

// Run performs the export described by cfg against the catalog and returns
// the written path. Outline exports start from a fresh browsing session:
// collapsed, or fully expanded when cfg.ExpandAll is set, with cfg.Query applied.
func Run(cfg WizardConfig, catalog *taxonomy.Catalog, filter taxonomy.FilterOptions) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	types := make([]model.TaxonomyType, 0, len(cfg.Types))
	for _, t := range cfg.Types {
		typ, err := model.ParseTaxonomyType(t)
		if err != nil {
			return "", err
		}
		types = append(types, typ)
	}

	if cfg.Format == FormatSQLite {
		indexes := make([]*taxonomy.TreeIndex, 0, len(types))
		for _, typ := range types {
			idx, err := catalog.Index(typ)
			if err != nil {
				return "", err
			}
			indexes = append(indexes, idx)
		}
		if err := NewSQLiteExporter(indexes...).Export(cfg.OutputPath); err != nil {
			return "", err
		}
		return cfg.OutputPath, nil
	}

	b, err := taxonomy.NewBrowser(catalog, types[0], taxonomy.BrowserOptions{Filter: filter})
	if err != nil {
		return "", err
	}
	if cfg.ExpandAll {
		b.ExpandAll()
	}
	b.SetQuery(cfg.Query)
	if b.Result().NoResults() {
		return "", fmt.Errorf("query %q matches no %s categories", cfg.Query, types[0])
	}

	err = SaveSnapshot(SnapshotOptions{
		Path:    cfg.OutputPath,
		Format:  cfg.Format,
		Rows:    b.Nodes(),
		Summary: b.Summary(),
	})
	if err != nil {
		return "", err
	}
	return cfg.OutputPath, nil
}
