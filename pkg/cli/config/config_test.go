package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/obligo-lab/obligo/pkg/cli/config"
	"github.com/obligo-lab/obligo/pkg/domain/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o644)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	path := writeConfig(t, `
[default_sla_days]
IN_PROGRESS = 45
PRE_ANALYSIS = 2

[[theme]]
id = "reporting"
name = "Regulatory reporting"

[theme.sla_days]
PENDING_AREA_APPROVAL = 7

[[theme]]
id = "financial"
name = "Financial statements"
`)

	cfg, err := config.LoadAppConfiguration(path)
	gt.NoError(t, err).Required()

	gt.Value(t, cfg.DefaultSLADays["IN_PROGRESS"]).Equal(45)
	gt.Array(t, cfg.Themes).Length(2)
	gt.Value(t, cfg.Themes[0].ID).Equal("reporting")
	gt.Value(t, cfg.Themes[0].SLADays["PENDING_AREA_APPROVAL"]).Equal(7)

	t.Run("calculator uses the overridden defaults", func(t *testing.T) {
		c := cfg.Calculator()
		gt.Value(t, c.Compute(types.StatusInProgress, nil, nil)).Equal(45 * 24)
		// Untouched statuses keep their built-in budget
		gt.Value(t, c.Compute(types.StatusChancellory, nil, nil)).Equal(3 * 24)
	})

	t.Run("theme models carry typed SLA tables", func(t *testing.T) {
		themes := cfg.ThemeModels()
		gt.Array(t, themes).Length(2)
		gt.Value(t, themes[0].ID).Equal(types.ThemeID("reporting"))
		gt.Value(t, themes[0].SLADays[types.StatusPendingAreaApproval]).Equal(7)
	})
}

func TestLoadAppConfigurationRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "unknown status",
			content: `
[default_sla_days]
BOGUS = 3
`,
			wantErr: config.ErrUnknownStatus,
		},
		{
			name: "terminal status budget",
			content: `
[default_sla_days]
COMPLETED = 3
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "non-positive days",
			content: `
[default_sla_days]
IN_PROGRESS = 0
`,
			wantErr: config.ErrInvalidSLADays,
		},
		{
			name: "duplicate theme",
			content: `
[[theme]]
id = "reporting"
name = "A"

[[theme]]
id = "reporting"
name = "B"
`,
			wantErr: config.ErrDuplicateThemeID,
		},
		{
			name: "theme without name",
			content: `
[[theme]]
id = "reporting"
`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := config.LoadAppConfiguration(path)
			gt.Error(t, err).Is(tc.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})
}
