package errors

// ErrValidation reports a rejected input field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// ErrUpstream reports a failure from the external portfolio backend,
// already normalized to a user-displayable message.
type ErrUpstream struct {
	Message string
}

func (e *ErrUpstream) Error() string {
	return e.Message
}
