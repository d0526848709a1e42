package config

import (
	"os"
	"path/filepath"
	"testing"

	"assocreport/internal/encoding"
	"assocreport/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATA_FILE", "OUTPUT_FILE", "PLAN_FILE", "SIGNIFICANCE_LEVEL", "CATEGORY_ORDER",
		"YATES_CORRECTION", "REPORT_WORKERS", "LOG_LEVEL", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputFile, cfg.Data.OutputFile)
	assert.Equal(t, 0.05, cfg.Analysis.SignificanceLevel)
	assert.Equal(t, encoding.OrderSorted, cfg.Analysis.CategoryOrder)
	assert.False(t, cfg.Analysis.YatesCorrection)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, "8080", cfg.Server.Port)

	opts := cfg.Analysis.ChiSquareOptions()
	assert.Equal(t, 0.05, opts.Alpha)
	assert.Equal(t, encoding.OrderSorted, opts.Order)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNIFICANCE_LEVEL", "0.01")
	t.Setenv("CATEGORY_ORDER", "first_seen")
	t.Setenv("YATES_CORRECTION", "true")
	t.Setenv("REPORT_WORKERS", "2")
	t.Setenv("DATA_FILE", "shootings.xlsx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.01, cfg.Analysis.SignificanceLevel)
	assert.Equal(t, encoding.OrderFirstSeen, cfg.Analysis.CategoryOrder)
	assert.True(t, cfg.Analysis.YatesCorrection)
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, "shootings.xlsx", cfg.Data.DataFile)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"SIGNIFICANCE_LEVEL": "1.5",
		"CATEGORY_ORDER":     "random",
		"YATES_CORRECTION":   "maybe",
		"REPORT_WORKERS":     "0",
		"PORT":               "http",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestDefaultPlan(t *testing.T) {
	plan := DefaultPlan()
	require.NoError(t, plan.Validate())
	assert.Len(t, plan.Analyses, 5)
	assert.Equal(t, "Other", plan.FillMissing["race_category"])
	assert.Equal(t, "Unknown", plan.FillMissing["flee"])
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := `name: custom
fill_missing:
  gender: Unknown
analyses:
  - title: Gender vs Flee
    row: gender
    col: " flee "
  - row: threat_category
    col: armed_category
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", plan.Name)
	require.Len(t, plan.Analyses, 2)
	assert.EqualValues(t, "flee", plan.Analyses[0].ColVar)
	assert.Equal(t, "threat_category vs armed_category", plan.Analyses[1].Title)

	def, err := LoadPlan("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPlan(), def)

	_, err = LoadPlan(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestParsePlan_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"empty":    "name: x\n",
		"no col":   "analyses:\n  - row: a\n",
		"bad yaml": "analyses: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan([]byte(content))
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
