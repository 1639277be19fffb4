package entities

import "encoding/json"

// ChainSpec is the host-side shape of a chain specification document.
//
// The raw JSON bytes are what actually cross the engine boundary; this struct
// only captures the fields the host validates before registration. Everything
// the engine interprets (genesis state, light sync checkpoints, protocol
// parameters) stays opaque.
type ChainSpec struct {
	// Name is the human-readable network name (e.g. "Polkadot").
	Name string `json:"name" validate:"required"`

	// ID is the network identifier used for peer discovery (e.g. "polkadot").
	ID string `json:"id" validate:"required"`

	// ChainType distinguishes live networks from local/test ones.
	ChainType string `json:"chainType,omitempty" validate:"omitempty,oneof=Live Local Development"`

	// BootNodes are multiaddresses of the initial peers.
	BootNodes []string `json:"bootNodes,omitempty"`

	// RelayChain names the relay chain this spec depends on, if any.
	// A spec with a relay chain can only be registered once a chain with
	// that ID is already active.
	RelayChain string `json:"relayChain,omitempty"`

	// Genesis is kept opaque; only the engine interprets it.
	Genesis json.RawMessage `json:"genesis,omitempty"`
}

// IsParachain reports whether the spec depends on a relay chain.
func (s *ChainSpec) IsParachain() bool {
	return s.RelayChain != ""
}
