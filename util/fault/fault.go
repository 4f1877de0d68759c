// Package fault carries the error taxonomy services report to callers:
// validation, not-found and conflict outcomes are expected and rendered
// to the user; anything else is an infrastructure failure.
package fault

import "errors"

type Kind string

const (
	Validation     Kind = "VALIDATION"
	NotFound       Kind = "NOT_FOUND"
	Conflict       Kind = "CONFLICT"
	Infrastructure Kind = "INFRASTRUCTURE"
)

type coded struct {
	kind Kind
	msg  string
	err  error
}

func (e coded) Error() string { return e.msg }
func (e coded) Kind() Kind    { return e.kind }
func (e coded) Unwrap() error { return e.err }

// New builds a user-facing error of the given kind. msg is shown to the
// caller verbatim.
func New(kind Kind, msg string) error { return coded{kind: kind, msg: msg} }

// Wrap marks err as an infrastructure failure while keeping it in the
// chain for logging.
func Wrap(err error, msg string) error {
	return coded{kind: Infrastructure, msg: msg, err: err}
}

// KindOf extracts the kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var k interface{ Kind() Kind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}
