package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/oasftree/pkg/config"
	"github.com/vanderheijden86/oasftree/pkg/model"
)

// Export formats.
const (
	FormatSQLite = "sqlite"
	FormatSVG    = "svg"
	FormatPNG    = "png"
)

// WizardConfig is what the export wizard collects. It is saved between runs.
type WizardConfig struct {
	Format     string   `json:"format"`
	Types      []string `json:"types"`
	Query      string   `json:"-"` // never saved; each run starts unfiltered
	ExpandAll  bool     `json:"expand_all"`
	OutputPath string   `json:"output_path"`
}

// Validate checks that the config describes a runnable export.
func (c WizardConfig) Validate() error {
	switch c.Format {
	case FormatSQLite, FormatSVG, FormatPNG:
	default:
		return fmt.Errorf("unknown export format %q", c.Format)
	}
	if len(c.Types) == 0 {
		return errors.New("no taxonomy type selected")
	}
	if c.Format != FormatSQLite && len(c.Types) > 1 {
		return fmt.Errorf("%s export takes exactly one taxonomy type", c.Format)
	}
	for _, t := range c.Types {
		if _, err := model.ParseTaxonomyType(t); err != nil {
			return err
		}
	}
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	return nil
}

// DefaultOutputPath suggests a file name in dir for the config.
func DefaultOutputPath(c WizardConfig, dir string) string {
	if dir == "" {
		dir = "."
	}
	if c.Format == FormatSQLite {
		return filepath.Join(dir, "oasf-taxonomy.sqlite3")
	}
	typ := "skill"
	if len(c.Types) > 0 {
		typ = c.Types[0]
	}
	return filepath.Join(dir, fmt.Sprintf("oasf-%s.%s", typ, c.Format))
}

// Wizard handles the interactive export flow.
type Wizard struct {
	config    *WizardConfig
	outputDir string
}

// NewWizard creates an export wizard suggesting files under outputDir.
func NewWizard(outputDir string) *Wizard {
	return &Wizard{
		config: &WizardConfig{
			Format: FormatSQLite,
			Types:  []string{string(model.TypeSkill), string(model.TypeDomain)},
		},
		outputDir: outputDir,
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run executes the interactive flow and returns the collected config.
func (w *Wizard) Run() (*WizardConfig, error) {
	if saved, err := LoadWizardConfig(); err == nil && saved != nil && saved.Validate() == nil {
		useSaved, err := w.offerSavedConfig(saved)
		if err != nil {
			return nil, err
		}
		if useSaved {
			w.config = saved
			return w.config, nil
		}
	}

	if err := w.collectFormat(); err != nil {
		return nil, err
	}
	if err := w.collectContent(); err != nil {
		return nil, err
	}
	if err := w.collectOutput(); err != nil {
		return nil, err
	}
	if err := w.config.Validate(); err != nil {
		return nil, err
	}
	return w.config, nil
}

// Config returns the collected configuration.
func (w *Wizard) Config() *WizardConfig {
	return w.config
}

func (w *Wizard) offerSavedConfig(saved *WizardConfig) (bool, error) {
	fmt.Println("Found previous export settings:")
	fmt.Printf("  Format: %s\n", saved.Format)
	fmt.Printf("  Types:  %v\n", saved.Types)
	fmt.Printf("  Output: %s\n", saved.OutputPath)
	fmt.Println("")

	useSaved := true
	form := newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Export again with these settings?").
				Value(&useSaved).
				Affirmative("Yes").
				Negative("No, reconfigure"),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return useSaved, nil
}

func (w *Wizard) collectFormat() error {
	return newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export format").
				Options(
					huh.NewOption("SQLite database (all categories)", FormatSQLite),
					huh.NewOption("SVG outline", FormatSVG),
					huh.NewOption("PNG outline", FormatPNG),
				).
				Value(&w.config.Format),
		),
	).Run()
}

func (w *Wizard) collectContent() error {
	typeOptions := huh.NewOptions(string(model.TypeSkill), string(model.TypeDomain))

	if w.config.Format == FormatSQLite {
		return newForm(
			huh.NewGroup(
				huh.NewMultiSelect[string]().
					Title("Taxonomies to include").
					Options(typeOptions...).
					Value(&w.config.Types),
			),
		).Run()
	}

	typ := string(model.TypeSkill)
	if len(w.config.Types) > 0 {
		typ = w.config.Types[0]
	}
	err := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Taxonomy").
				Options(typeOptions...).
				Value(&typ),
			huh.NewInput().
				Title("Filter query (optional)").
				Description("Only matches and their ancestors are drawn").
				Value(&w.config.Query),
			huh.NewConfirm().
				Title("Expand every category?").
				Description("No draws the root level plus paths to matches").
				Value(&w.config.ExpandAll),
		),
	).Run()
	if err != nil {
		return err
	}
	w.config.Types = []string{typ}
	return nil
}

func (w *Wizard) collectOutput() error {
	suggested := DefaultOutputPath(*w.config, w.outputDir)
	path := suggested
	err := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output file").
				Value(&path).
				Placeholder(suggested),
		),
	).Run()
	if err != nil {
		return err
	}
	if path == "" {
		path = suggested
	}
	w.config.OutputPath = path
	return nil
}

// WizardConfigPath returns the path of the saved wizard settings.
func WizardConfigPath() string {
	dir := config.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "export-wizard.json")
}

// LoadWizardConfig loads previously saved settings. A missing file returns nil, nil.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Types = slices.Compact(cfg.Types)
	return &cfg, nil
}

// SaveWizardConfig saves settings for the next run.
func SaveWizardConfig(cfg *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
