package enums

// PushOutcome is the per-item result of a single vendor submission.
type PushOutcome string

const (
	PushOutcomeSuccess PushOutcome = "success"
	PushOutcomeFailed  PushOutcome = "failed"
)

// PushErrorKind narrows a failed push down to a cause operators can act on.
type PushErrorKind string

const (
	PushErrorTransport    PushErrorKind = "transport"
	PushErrorRejected     PushErrorKind = "rejected"
	PushErrorMalformed    PushErrorKind = "malformed_response"
	PushErrorInvalidOrder PushErrorKind = "invalid_order"
	PushErrorCircuitOpen  PushErrorKind = "circuit_open"
	PushErrorRateLimited  PushErrorKind = "rate_limited"
)

// VariantStatus is the stock state of a product variant.
type VariantStatus string

const (
	VariantStatusInStock    VariantStatus = "IN STOCK"
	VariantStatusOutOfStock VariantStatus = "OUT OF STOCK"
)
