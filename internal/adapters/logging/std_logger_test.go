package logging_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/logging"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
)

func TestStdLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStdLogger(&buf, "warn", "text")

	logger.Log(common.LevelInfo, "quiet", nil)
	logger.Log(common.LevelWarn, "loud", map[string]interface{}{"b": 2, "a": 1})

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "[WARNING] loud a=1 b=2")
}

func TestStdLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStdLogger(&buf, "debug", "json")

	logger.Log(common.LevelDebug, "hello", map[string]interface{}{"resource": "gear"})

	line := buf.String()
	start := strings.Index(line, "{")
	require.GreaterOrEqual(t, start, 0)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line[start:]), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "gear", entry["resource"])
	assert.Equal(t, common.LevelDebug, entry["level"])
}

func TestNewFromConfig_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.log")
	logger, closeLog, err := logging.NewFromConfig(config.LoggingConfig{
		Level:    "info",
		Format:   "text",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Log(common.LevelInfo, "catalog loaded", map[string]interface{}{"recipes": 3})
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] catalog loaded recipes=3")
}
