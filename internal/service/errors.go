package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/talentflow/internal/fault"
	"github.com/garnizeh/talentflow/pkg/repository"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrTransient  = errors.New("transient failure")
)

// Error carries the kind of failure, the operation that produced it and a
// message fit for the caller. Err is the underlying cause, if any.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString(e.Kind.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// Message returns the caller-facing text of err without the operation prefix.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		if se.Msg != "" {
			return se.Msg
		}
		if se.Err != nil {
			return se.Err.Error()
		}
		return se.Kind.Error()
	}
	return err.Error()
}

func validation(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func conflict(op, format string, args ...any) error {
	return &Error{Kind: ErrConflict, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// classify maps errors coming back from the injector or the store onto the
// service kinds. Errors already classified pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, fault.ErrInjected):
		return &Error{Kind: ErrTransient, Op: op, Msg: "simulated server error (" + op + ")", Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: ErrNotFound, Op: op, Msg: "record not found", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Kind: ErrConflict, Op: op, Msg: "record already exists", Err: err}
	}
	return &Error{Kind: ErrTransient, Op: op, Msg: "temporary storage failure", Err: err}
}
