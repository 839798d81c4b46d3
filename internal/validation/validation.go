// Package validation adalah satu-satunya sumber kebenaran "apakah data ini
// bentuknya benar". Aturan struktural dipasang sebagai tag di struct domain
// (internal/orders), paket ini yang mengeksekusi dan melokalkan pesannya.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msg := range fe {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// pakai nama json tag supaya pesan error cocok dengan field di wire
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if i := strings.Index(tag, ","); i >= 0 {
			tag = tag[:i]
		}
		if tag == "" || tag == "-" {
			return fld.Name
		}
		return tag
	})

	// "orderstatus": nilai harus anggota enum status
	_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		return orders.Status(fl.Field().String()).Valid()
	})

	return v
}

// CheckStruct memvalidasi v terhadap tag-nya dan mengembalikan
// ValidationError dengan map field->pesan di context. Validasi skema itu
// all-or-nothing: satu field gagal berarti seluruh payload ditolak.
func CheckStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperr.Internal("", err)
	}

	fields := FieldErrors{}
	for _, fe := range ve {
		fields[fieldKey(fe)] = messageForTag(fe)
	}
	return apperr.Validation("Data tidak valid: "+fields.Error(),
		map[string]any{"fields": fields})
}

// fieldKey membuang prefix nama struct root ("CreatePayload.briefs[0].…"
// -> "briefs[0].…").
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("minimal %s karakter", fe.Param())
		}
		return fmt.Sprintf("minimal %s item", fe.Param())
	case "gte":
		return fmt.Sprintf("harus >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("harus <= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("harus lebih dari %s", fe.Param())
	case "url":
		return "URL tidak valid"
	case "email":
		return "email tidak valid"
	case "startswith":
		return fmt.Sprintf("harus diawali %q", fe.Param())
	case "orderstatus":
		return "bukan status pesanan yang dikenal"
	default:
		return "tidak valid"
	}
}
