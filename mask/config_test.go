package mask

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Alpha)
	assert.Equal(t, uint64(0), cfg.MaskBudgetBits)
	assert.False(t, cfg.Strict)
}

func TestConfigValidateRejectsNonPositiveAlpha(t *testing.T) {
	cfg := DefaultConfig().WithAlpha(0)
	assert.Error(t, cfg.Validate())
}

func TestConfigFluentSetters(t *testing.T) {
	cfg := DefaultConfig().WithAlpha(2).WithMaskBudgetBits(1024).WithStrict(true)
	assert.Equal(t, 2, cfg.Alpha)
	assert.Equal(t, uint64(1024), cfg.MaskBudgetBits)
	assert.True(t, cfg.Strict)
}

func TestLoadConfigMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Alpha, cfg.Alpha)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.yaml")
	content := "alpha: 2\nmaskBudgetBits: 4096\nstrict: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Alpha)
	assert.Equal(t, uint64(4096), cfg.MaskBudgetBits)
	assert.True(t, cfg.Strict)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alpha: [this is not an int\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
