package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokadesain/orderflow/internal/apperr"
)

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteErrMapsApperr(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("Data tidak valid.", nil), http.StatusBadRequest, apperr.CodeValidation},
		{apperr.NotFoundf("Pesanan dengan ID x tidak ditemukan."), http.StatusNotFound, apperr.CodeNotFound},
		{apperr.IllegalTransition("Menunggu Pembayaran", "Pesanan Selesai"), http.StatusConflict, apperr.CodeIllegalTransition},
		{apperr.Internal("boom", nil), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		writeErr(rec, c.err)

		assert.Equal(t, c.status, rec.Code)
		resp := decodeResp(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, c.code, resp.Code)
		assert.NotEmpty(t, resp.Error)
	}
}

func TestWriteErrMasksWrappedDriverError(t *testing.T) {
	// error driver yang dibungkus di service tetap tidak boleh bocor
	rec := httptest.NewRecorder()
	writeErr(rec, apperr.Wrap(
		errors.New("pgx: connection reset, dsn=postgres://app:secret@db"),
		"Gagal menyimpan pesanan."))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResp(t, rec)
	assert.Equal(t, apperr.CodeInternal, resp.Code)
	assert.Equal(t, "Gagal menyimpan pesanan.", resp.Error)
	assert.NotContains(t, resp.Error, "secret")
	assert.NotContains(t, resp.Error, "dsn")
}

func TestHandlersRejectMalformedJSON(t *testing.T) {
	// decode gagal sebelum menyentuh service, jadi handler tanpa Svc aman
	h := &OrdersHandler{}
	r := NewRouter()
	h.Register(r)

	reqs := []struct{ method, path string }{
		{http.MethodPost, "/api/orders"},
		{http.MethodPut, "/api/orders/abc/status"},
		{http.MethodPut, "/api/orders/abc"},
	}
	for _, c := range reqs {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(c.method, c.path, strings.NewReader("{bukan json"))
		r.ServeHTTP(rec, req)

		assert.Equalf(t, http.StatusBadRequest, rec.Code, "%s %s", c.method, c.path)
		resp := decodeResp(t, rec)
		assert.Equal(t, apperr.CodeValidation, resp.Code)
		assert.Equal(t, "Body permintaan bukan JSON yang valid.", resp.Error)
	}
}

func TestWriteErrHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, errors.New("pgx: connection reset, dsn=postgres://app:secret@db"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResp(t, rec)
	assert.Equal(t, apperr.CodeInternal, resp.Code)
	// detail internal tidak boleh bocor ke wire
	assert.NotContains(t, resp.Error, "dsn")
	assert.NotContains(t, resp.Error, "secret")
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decodeResp(t, rec)
	assert.True(t, resp.Success)
}

func TestHealthz(t *testing.T) {
	r := NewRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
