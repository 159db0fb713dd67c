package cli

import "errors"

var (
	ErrUsage           = errors.New("usage error")
	ErrUnknownProvider = errors.New("unknown mail provider")
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() []error {
	return []error{ErrUsage, e.err}
}

func asUsage(err error) error {
	if err == nil {
		return nil
	}
	return usageError{err: err}
}
