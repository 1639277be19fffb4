package hostconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
engine: loopback
chains:
  - name: local
    spec: testdata/local.json
log_level: debug
metrics_listen: "127.0.0.1:9184"
`))
	require.NoError(t, err)
	assert.Equal(t, EngineLoopback, cfg.Engine)
	require.Len(t, cfg.Chains, 1)
	assert.Equal(t, "local", cfg.Chains[0].Name)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "127.0.0.1:9184", cfg.MetricsListen)

	// Defaults kick in for requests.
	require.Len(t, cfg.Requests, 1)
	assert.Equal(t, DefaultRequest, cfg.Requests[0])
}

func TestParseWasmEngine(t *testing.T) {
	cfg, err := Parse([]byte(`
engine: wasm
engine_path: ./engine.wasm
chains:
  - spec: ./polkadot.json
`))
	require.NoError(t, err)
	assert.Equal(t, EngineWASM, cfg.Engine)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseRejectsUnknownEngine(t *testing.T) {
	_, err := Parse([]byte(`
engine: remote
chains:
  - spec: ./polkadot.json
`))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Engine", cfgErr.Field)
}

func TestParseRequiresEnginePathForWasm(t *testing.T) {
	_, err := Parse([]byte(`
engine: wasm
chains:
  - spec: ./polkadot.json
`))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "EnginePath", cfgErr.Field)
}

func TestParseRequiresChains(t *testing.T) {
	_, err := Parse([]byte(`engine: loopback`))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Chains", cfgErr.Field)
}

func TestParseRejectsChainWithoutSpec(t *testing.T) {
	_, err := Parse([]byte(`
engine: loopback
chains:
  - name: nameless
`))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Spec", cfgErr.Field)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: loopback
chains:
  - spec: ./local.json
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, EngineLoopback, cfg.Engine)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
