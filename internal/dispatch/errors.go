package dispatch

import "fmt"

// RenderError reports a template that could not be rendered for a recipient.
type RenderError struct {
	EventType string
	Err       error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template for %q: %v", e.EventType, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// TransportError reports a failed send to one address.
type TransportError struct {
	Address string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Address, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RepositoryError reports a failed repository read or write.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }
