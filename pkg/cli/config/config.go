package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/service/deadline"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig is the TOML workflow configuration: the global default SLA
// table plus the theme catalog with per-status SLA budgets.
type AppConfig struct {
	path string

	DefaultSLADays map[string]int `toml:"default_sla_days"`
	Themes         []Theme        `toml:"theme"`
}

// Theme is a theme entry of the workflow configuration
type Theme struct {
	ID      string         `toml:"id"`
	Name    string         `toml:"name"`
	SLADays map[string]int `toml:"sla_days"`
}

// Validate checks if the theme entry is valid
func (t *Theme) Validate() error {
	if t.ID == "" {
		return goerr.Wrap(ErrInvalidConfig, "theme ID is required")
	}
	if t.Name == "" {
		return goerr.Wrap(ErrInvalidConfig, "theme name is required", goerr.V("id", t.ID))
	}
	if err := validateSLATable(t.SLADays); err != nil {
		return goerr.Wrap(err, "invalid theme SLA table", goerr.V("id", t.ID))
	}
	return nil
}

func validateSLATable(table map[string]int) error {
	for raw, days := range table {
		status, err := types.ParseObligationStatus(raw)
		if err != nil {
			return goerr.Wrap(ErrUnknownStatus, "unknown status in SLA table", goerr.V("status", raw))
		}
		if status.IsTerminal() {
			return goerr.Wrap(ErrInvalidConfig, "terminal statuses carry no SLA budget", goerr.V("status", raw))
		}
		if days <= 0 {
			return goerr.Wrap(ErrInvalidSLADays, "non-positive SLA days", goerr.V("status", raw), goerr.V("days", days))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := validateSLATable(a.DefaultSLADays); err != nil {
		return goerr.Wrap(err, "invalid default SLA table")
	}

	themeIDs := make(map[string]bool)
	for _, theme := range a.Themes {
		if err := theme.Validate(); err != nil {
			return err
		}
		if themeIDs[theme.ID] {
			return goerr.Wrap(ErrDuplicateThemeID, "duplicate theme", goerr.V("id", theme.ID))
		}
		themeIDs[theme.ID] = true
	}
	return nil
}

// Flags returns CLI flags for the workflow configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to the workflow TOML configuration (themes, SLA tables)",
			Category:    "Workflow",
			Sources:     cli.EnvVars("OBLIGO_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path, empty when not set
func (a *AppConfig) Path() string {
	return a.path
}

// Load reads and validates the configured TOML file. Without a path it
// returns an empty valid configuration.
func (a *AppConfig) Load() error {
	if a.path == "" {
		return nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return err
	}
	a.DefaultSLADays = loaded.DefaultSLADays
	a.Themes = loaded.Themes
	return nil
}

// LoadAppConfiguration loads the workflow configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "configuration file not found", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}

// Calculator builds the deadline calculator from the default SLA table.
// Statuses absent from the file keep their built-in defaults.
func (a *AppConfig) Calculator() *deadline.Calculator {
	if len(a.DefaultSLADays) == 0 {
		return deadline.New(nil)
	}

	table := make(map[types.ObligationStatus]int, len(deadline.DefaultSLADays))
	for status, days := range deadline.DefaultSLADays {
		table[status] = days
	}
	for raw, days := range a.DefaultSLADays {
		table[types.ObligationStatus(raw)] = days
	}
	return deadline.New(table)
}

// ThemeModels converts the configured themes to domain models
func (a *AppConfig) ThemeModels() []*model.Theme {
	themes := make([]*model.Theme, len(a.Themes))
	for i, t := range a.Themes {
		theme := &model.Theme{
			ID:   types.ThemeID(t.ID),
			Name: t.Name,
		}
		if len(t.SLADays) > 0 {
			theme.SLADays = make(map[types.ObligationStatus]int, len(t.SLADays))
			for raw, days := range t.SLADays {
				theme.SLADays[types.ObligationStatus(raw)] = days
			}
		}
		themes[i] = theme
	}
	return themes
}
