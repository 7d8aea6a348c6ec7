// Package types holds the wire envelopes shared by every chowpack endpoint.
package types

// SuccessEnvelope wraps every 2xx body. The payload always sits under "data"
// so the SPA unwraps responses uniformly, including checkout's soft results.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a coded error: a stable machine code and
// the user-visible message. Verbatim checkout validation messages and
// upstream order rejections ride in Message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error body under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
