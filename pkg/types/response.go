// Package types holds the wire envelopes shared by every HTTP endpoint.
// Success bodies always sit under "data" and failures under "error" so
// clients can branch on shape alone.
package types

// SuccessEnvelope wraps a successful response payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error payload. Code is a stable machine
// string from pkg/errors; Details is only populated for codes whose
// metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError for transport.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
