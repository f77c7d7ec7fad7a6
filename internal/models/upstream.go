package models

import "encoding/json"

// UpstreamEnvelope is the response wrapper every upstream endpoint uses:
// {"status": "success"|"error", "data": {...}}.
type UpstreamEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Success reports whether the envelope carries a successful payload.
func (e *UpstreamEnvelope) Success() bool {
	return e != nil && e.Status == "success"
}

// UpstreamErrorData is the data payload of an error envelope.
type UpstreamErrorData struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Reason returns the most specific error text the payload carries.
func (d UpstreamErrorData) Reason() string {
	if d.Message != "" {
		return d.Message
	}
	return d.Error
}

// QueryRequest is the body of a natural-language query call.
type QueryRequest struct {
	Text string `json:"text"`
}

// QueryData is the data payload of a successful query envelope.
type QueryData struct {
	Response string `json:"response,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Answer returns the displayable text of a query response.
func (d QueryData) Answer() string {
	if d.Response != "" {
		return d.Response
	}
	return d.Message
}
