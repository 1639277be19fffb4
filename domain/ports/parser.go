package ports

import "github.com/lantern-dev/lanternhost/domain/entities"

// SpecParser parses raw chain specification bytes into the host-side shape.
type SpecParser interface {
	// Parse unmarshals JSON bytes into a ChainSpec struct.
	Parse(data []byte) (*entities.ChainSpec, error)
}
