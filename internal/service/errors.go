package service

import (
	"errors"
	"fmt"

	"superbravo/internal/apierror"

	"gorm.io/gorm"
)

// Error is the only error type services hand to handlers. Kind is one of the
// apierror kinds; Msg is safe to show to clients except for
// apierror.KindAlmacenamiento, whose Msg is replaced by a generic text.
type Error struct {
	Kind string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return e.Kind + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func errValidacion(format string, args ...any) *Error {
	return &Error{Kind: apierror.KindValidacion, Msg: fmt.Sprintf(format, args...)}
}

func errNoEncontrado(format string, args ...any) *Error {
	return &Error{Kind: apierror.KindNoEncontrado, Msg: fmt.Sprintf(format, args...)}
}

func errStock(nombre string) *Error {
	return &Error{
		Kind: apierror.KindStockInsuficiente,
		Msg:  fmt.Sprintf("No hay suficiente existencia para el producto %s.", nombre),
	}
}

func errAlmacenamiento(op string, err error) *Error {
	return &Error{Kind: apierror.KindAlmacenamiento, Msg: op, Err: err}
}

// KindOf reports the apierror kind of err, KindAlmacenamiento for anything
// that is not a *Error.
func KindOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return apierror.KindAlmacenamiento
}

// asServiceError passes *Error values through and turns everything else into
// a storage failure. gorm.ErrRecordNotFound becomes notFound when given.
func asServiceError(op string, err error, notFound *Error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errAlmacenamiento(op, err)
}
