package domain

// Session is a ready-to-use API client for one service.
type Session struct {
	// Service is the integration the session belongs to.
	Service Service
	// Scopes are the scopes the session was authorized for.
	Scopes ScopeSet
	// Client is the API client built by the session builder.
	Client any
}

// InitResult is the outcome of initializing a client credential.
// Status is "pending" until the encrypted credential is written.
type InitResult struct {
	Status   string       `json:"status"`
	Key      SymmetricKey `json:"-"`
	Services []Service    `json:"services,omitempty"`
}

// Init statuses.
const (
	InitPending = "pending"
	InitSuccess = "success"
)
