// Package moonpsrv is a small HTTP front end for moonp.Compile, adapted
// from the teacher's server package: chi routing, bearer-token auth, and a
// typed-error-with-causes pattern for turning internal failures into the
// right HTTP status.
package moonpsrv

import "errors"

var (
	ErrBadCredentials = errors.New("the supplied username/password combination is incorrect")
	ErrPermissions    = errors.New("you don't have permission to do that")
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrAlreadyExists  = errors.New("an account with that username already exists")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrBodyUnmarshal  = errors.New("malformed data in request body")
)

// Error is a message with one or more causes, compatible with errors.Is
// against any of those causes.
type Error struct {
	msg   string
	cause []error
}

func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		return e.msg == errTarget.msg
	}
	for i := range e.cause {
		if e.cause[i] == target {
			return true
		}
	}
	return false
}

// New creates an Error with msg and the given causes. causes may be omitted.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}
