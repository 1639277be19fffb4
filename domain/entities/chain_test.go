package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainIDString(t *testing.T) {
	assert.Equal(t, "chain-7", ChainID(7).String())
}

func TestChainStateString(t *testing.T) {
	tests := []struct {
		state ChainState
		want  string
	}{
		{state: StateUnregistered, want: "unregistered"},
		{state: StateIdle, want: "idle"},
		{state: StateAwaitingResponse, want: "awaiting-response"},
		{state: StateRemoved, want: "removed"},
		{state: ChainState(42), want: "unknown(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestChainSpecUnmarshal(t *testing.T) {
	raw := `{
		"name": "Westend",
		"id": "westend2",
		"chainType": "Live",
		"bootNodes": ["/dns/boot.example/tcp/30333/p2p/12D3Koo"],
		"relayChain": "",
		"genesis": {"stateRootHash": "0xabc"}
	}`

	var spec ChainSpec
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))
	assert.Equal(t, "Westend", spec.Name)
	assert.Equal(t, "westend2", spec.ID)
	assert.Len(t, spec.BootNodes, 1)
	assert.False(t, spec.IsParachain())
	assert.NotEmpty(t, spec.Genesis)
}

func TestChainSpecIsParachain(t *testing.T) {
	spec := ChainSpec{Name: "Collectives", ID: "collectives", RelayChain: "polkadot"}
	assert.True(t, spec.IsParachain())
}

func TestErrorDetailFormatting(t *testing.T) {
	detail := NewErrorDetail("engine", "add_chain trapped").WithCode("add_chain")
	assert.Equal(t, "engine: add_chain trapped [add_chain]", detail.Error())

	detail.Wrapped = NewErrorDetail("internal", "out of bounds memory access")
	assert.Contains(t, detail.Error(), "out of bounds memory access")
}
