// Package apperr adalah taksonomi error terstruktur untuk seluruh pipeline:
// Validation (400), NotFound (404), IllegalTransition (409), Internal (500).
// Setiap error membawa kode internal yang stabil supaya boundary HTTP dan
// client bisa mengklasifikasi tanpa menebak dari pesan.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindIllegalTransition
)

// Kode internal, satu per kind. Nilai ini ikut serial ke wire dan dipakai
// client sebagai kontrak typed sebelum jatuh ke heuristik substring.
const (
	CodeValidation        = "E_VALIDATION_FAILED"
	CodeNotFound          = "E_RESOURCE_NOT_FOUND"
	CodeIllegalTransition = "E_ILLEGAL_TRANSITION"
	CodeInternal          = "E_INTERNAL_SERVER"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Context map[string]any
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Is menyamakan dua *Error berdasarkan Kind, supaya errors.Is(err,
// apperr.NotFound("")) bekerja sebagai pengecekan kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindIllegalTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, code, msg string, ctx map[string]any) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Context: ctx}
}

func Validation(msg string, ctx map[string]any) *Error {
	return newError(KindValidation, CodeValidation, msg, ctx)
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Sprintf(format, args...), nil)
}

func NotFound(msg string, ctx map[string]any) *Error {
	return newError(KindNotFound, CodeNotFound, msg, ctx)
}

func NotFoundf(format string, args ...any) *Error {
	return NotFound(fmt.Sprintf(format, args...), nil)
}

func IllegalTransition(from, to string) *Error {
	return newError(KindIllegalTransition, CodeIllegalTransition,
		fmt.Sprintf("Transisi status dari %q ke %q tidak diizinkan.", from, to),
		map[string]any{"from": from, "to": to})
}

func Internal(msg string, cause error) *Error {
	if msg == "" {
		msg = "Terjadi kesalahan internal pada server."
	}
	e := newError(KindInternal, CodeInternal, msg, nil)
	e.cause = cause
	return e
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ByCode memetakan kode internal ke kind. Dipakai client saat backend
// mengirim field "code" yang typed.
func ByCode(code, msg string) (*Error, bool) {
	switch code {
	case CodeValidation:
		return Validation(msg, nil), true
	case CodeNotFound:
		return NotFound(msg, nil), true
	case CodeIllegalTransition:
		e := newError(KindIllegalTransition, CodeIllegalTransition, msg, nil)
		return e, true
	case CodeInternal:
		return Internal(msg, nil), true
	}
	return nil, false
}

// FromMessage mengklasifikasi pesan error upstream yang opaque via substring.
// Rapuh, tapi dipertahankan sebagai fallback untuk backend lama yang belum
// mengirim kode typed.
func FromMessage(msg string) *Error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "not found") || strings.Contains(lower, "tidak ditemukan"):
		return NotFound(msg, nil)
	case strings.Contains(lower, "validation") || strings.Contains(lower, "validasi") ||
		strings.Contains(lower, "invalid") || strings.Contains(lower, "tidak valid"):
		return Validation(msg, nil)
	default:
		return Internal(msg, nil)
	}
}

// Wrap memastikan err berupa *Error. Error asing dibungkus jadi Internal
// dengan defaultMsg sebagai pesan user-facing; teks error asli (yang bisa
// berisi detail driver/DSN) hanya hidup di cause, tidak pernah jadi Message.
func Wrap(err error, defaultMsg string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(defaultMsg, err)
}
