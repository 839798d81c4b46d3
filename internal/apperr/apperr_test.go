package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFound("x", nil).HTTPStatus())
	assert.Equal(t, http.StatusConflict, IllegalTransition("a", "b").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Internal("x", nil).HTTPStatus())
}

func TestIsMatchesKind(t *testing.T) {
	err := NotFoundf("Pesanan dengan ID %s tidak ditemukan.", "abc")
	assert.True(t, errors.Is(err, NotFound("", nil)))
	assert.False(t, errors.Is(err, Validation("", nil)))
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Internal("Gagal terhubung ke server.", cause)
	assert.ErrorIs(t, err, cause)
}

func TestByCode(t *testing.T) {
	e, ok := ByCode(CodeIllegalTransition, "transisi ditolak")
	require.True(t, ok)
	assert.Equal(t, KindIllegalTransition, e.Kind)
	assert.Equal(t, "transisi ditolak", e.Message)

	_, ok = ByCode("E_SOMETHING_ELSE", "x")
	assert.False(t, ok)
}

func TestFromMessageHeuristics(t *testing.T) {
	cases := []struct {
		msg  string
		kind Kind
	}{
		{"Order not found", KindNotFound},
		{"Pesanan tidak ditemukan", KindNotFound},
		{"validation failed for field x", KindValidation},
		{"Data tidak valid: briefs wajib diisi", KindValidation},
		{"invalid payload", KindValidation},
		{"gagal validasi", KindValidation},
		{"unexpected EOF", KindInternal},
	}
	for _, c := range cases {
		e := FromMessage(c.msg)
		assert.Equalf(t, c.kind, e.Kind, "pesan: %q", c.msg)
		assert.Equal(t, c.msg, e.Message)
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))

	// *Error lewat apa adanya
	orig := Validation("sudah terklasifikasi", nil)
	assert.Same(t, orig, Wrap(orig, "x"))

	// error asing dibungkus Internal; teks aslinya tinggal di cause
	cause := fmt.Errorf("pgx: connection reset, dsn=postgres://app:secret@db")
	wrapped := Wrap(cause, "Gagal menyimpan pesanan.")
	assert.Equal(t, KindInternal, wrapped.Kind)
	assert.Equal(t, "Gagal menyimpan pesanan.", wrapped.Message)
	assert.NotContains(t, wrapped.Message, "secret")
	assert.ErrorIs(t, wrapped, cause)
}
