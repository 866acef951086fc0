package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietanh2810/camp-animal-economy/internal/config"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("dev", &config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_WritesToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "api.log")

	l, err := New("prod", &config.LogConfig{Level: "debug", OutputFile: file})
	require.NoError(t, err)

	l.Info("collected", zap.String("type", "Mammal"))
	_ = l.Sync()

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"type":"Mammal"`)
}

func TestInit_ReplacesGlobal(t *testing.T) {
	before := zap.L()
	require.NoError(t, Init("dev", nil))
	t.Cleanup(func() { zap.ReplaceGlobals(before) })

	assert.NotSame(t, before, zap.L())
}
