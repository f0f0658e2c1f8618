package confkit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpem17-evo/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	t.Setenv("GPEM_RESULTS", "results")
	tests := []struct {
		name     string
		base     string
		file     string
		expected string
	}{
		{"absolute path", "/base/dir", "/abs/scenarios.yaml", "/abs/scenarios.yaml"},
		{"relative path", "/base/dir", "config/scenarios.yaml", "/base/dir/config/scenarios.yaml"},
		{"env var", "/base/dir", "${GPEM_RESULTS}/evo", "/base/dir/results/evo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, confkit.ResolvePath(tt.base, tt.file))
		})
	}
}

func TestBaseDir(t *testing.T) {
	assert.Equal(t, "/etc/gpem", confkit.BaseDir("/etc/gpem/gpem.yaml"))
	assert.Equal(t, "etc", confkit.BaseDir("etc/gpem.yaml"))
}

type catalog struct {
	Scenarios map[string]string `yaml:"scenarios"`
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GPEM_TAG", "vanLon15")
	path := filepath.Join(dir, "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  \"0.50-20-1.00-[0-9]\": ${GPEM_TAG}\n"), 0o600))

	got, err := confkit.LoadYAML[catalog](path)
	require.NoError(t, err)
	assert.Equal(t, "vanLon15", got.Scenarios["0.50-20-1.00-[0-9]"])

	require.NoError(t, os.WriteFile(path, []byte("unknown: 1\n"), 0o600))
	_, err = confkit.LoadYAML[catalog](path)
	assert.Error(t, err)
}

func TestSection_Hydrate(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		section := &confkit.Section[string]{}
		err := section.Hydrate("/base", func(string) (*string, error) {
			t.Error("loader should not be called for empty file")
			return nil, nil
		})
		assert.NoError(t, err)
		assert.Nil(t, section.Value)
	})

	t.Run("successful hydration", func(t *testing.T) {
		section := &confkit.Section[string]{File: "scenarios.yaml"}
		expected := "catalog"
		err := section.Hydrate("/base", func(path string) (*string, error) {
			assert.Equal(t, "/base/scenarios.yaml", path)
			return &expected, nil
		})
		require.NoError(t, err)
		assert.Equal(t, expected, *section.Value)
		assert.Equal(t, "/base/scenarios.yaml", section.File)
	})
}
