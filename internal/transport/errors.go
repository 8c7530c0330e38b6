package transport

import "fmt"

// Error describes a transport failure. These are recovered locally and only logged.
type Error struct {
	Op  string
	URL string
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
