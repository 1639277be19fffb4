package chainspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSpec = `{
  "name": "Local Testnet",
  "id": "local_testnet",
  "chainType": "Development",
  "bootNodes": [],
  "genesis": {}
}`

func writeSpecFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeSpecFile(t, minimalSpec)

	doc, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	// Raw must be exactly the file bytes; they cross the boundary untouched.
	assert.Equal(t, []byte(minimalSpec), doc.Raw)
	assert.Len(t, doc.Raw, len(minimalSpec))
	assert.Equal(t, "Local Testnet", doc.Spec.Name)
	assert.Equal(t, "local_testnet", doc.Spec.ID)
	assert.False(t, doc.Spec.IsParachain())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var ioErr *errors.SpecIOError
	require.ErrorAs(t, err, &ioErr)
	assert.True(t, ioErr.ToErrorDetail().IsFatal)
}

func TestLoadFileTooLarge(t *testing.T) {
	path := writeSpecFile(t, minimalSpec)

	_, err := NewLoader(WithMaxSpecSize(8)).LoadFile(path)
	var ioErr *errors.SpecIOError
	require.ErrorAs(t, err, &ioErr)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := NewLoader().Load([]byte(`{"name": "x",`))
	var formatErr *errors.SpecFormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestLoadRejectsMissingFields(t *testing.T) {
	_, err := NewLoader().Load([]byte(`{"name": "No ID"}`))
	var formatErr *errors.SpecFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "ID", formatErr.Field)
}

func TestLoadRejectsBadChainType(t *testing.T) {
	_, err := NewLoader().Load([]byte(`{"name": "X", "id": "x", "chainType": "Imaginary"}`))
	var formatErr *errors.SpecFormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "ChainType", formatErr.Field)
}

func TestLoadLenientMode(t *testing.T) {
	doc, err := NewLoader(WithStrictValidation(false)).Load([]byte(`{"name": "No ID"}`))
	require.NoError(t, err)
	assert.Equal(t, "No ID", doc.Spec.Name)
}

func TestLoadParachainSpec(t *testing.T) {
	doc, err := NewLoader().Load([]byte(`{"name": "Para", "id": "para_1000", "relayChain": "local_testnet"}`))
	require.NoError(t, err)
	assert.True(t, doc.Spec.IsParachain())
	assert.Equal(t, "local_testnet", doc.Spec.RelayChain)
}
