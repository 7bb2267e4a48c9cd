package models

// Envelope is one encrypted field on the wire: lowercase hex of
// nonce(12) || ciphertext || tag(16).
type Envelope string

// RemoteRecord is a record as held by the record service. Fields are in the
// kind's Fields order.
type RemoteRecord struct {
	ID     uint64
	Fields []Envelope
}

// Result mirrors the remote services' variant reply: exactly one of Ok or
// Err is meaningful. A unit success is encoded as {"ok":null}.
type Result[T any] struct {
	Ok  *T      `json:"ok,omitempty"`
	Err *string `json:"err,omitempty"`
}
