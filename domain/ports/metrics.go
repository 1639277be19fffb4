package ports

// Metrics receives host adapter lifecycle events. Implementations must be
// safe for concurrent use.
type Metrics interface {
	ChainAdded()
	ChainRemoved()
	RequestSubmitted()
	ResponseDelivered()
	LeaseAcquired()
	LeaseReleased()
}
