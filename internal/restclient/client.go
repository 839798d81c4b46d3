// Package restclient adalah kontrak tipis di atas order store yang
// dijangkau lewat REST. Semua kegagalan transport/parsing ditangkap di
// boundary ini dan diangkat ulang sebagai salah satu kind apperr; semua
// respons melewati adapter kanonisasi sebelum keluar dari paket.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse adalah amplop respons order store: {success, data, error,
// code, message}. Field code adalah kontrak typed; error/message adalah
// fallback untuk backend lama.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*apiResponse, int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, 0, apperr.Internal("Gagal menyiapkan permintaan.", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, apperr.Internal("Gagal menyiapkan permintaan.", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, apperr.Internal("Gagal terhubung ke server.", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, apperr.Internal("Gagal membaca respons server.", err)
	}

	var out apiResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, resp.StatusCode, apperr.Internal("Respons server tidak valid.", err)
		}
	}
	return &out, resp.StatusCode, nil
}

// classify mengangkat respons gagal menjadi apperr: kode typed dulu,
// heuristik substring untuk pesan opaque, lalu status HTTP sebagai
// penentu terakhir.
func classify(resp *apiResponse, status int, defaultMsg string) error {
	msg := resp.Error
	if msg == "" {
		msg = resp.Message
	}
	if msg == "" {
		msg = defaultMsg
	}

	if resp.Code != "" {
		if e, ok := apperr.ByCode(resp.Code, msg); ok {
			return e
		}
	}

	e := apperr.FromMessage(msg)
	if e.Kind == apperr.KindInternal {
		switch status {
		case http.StatusNotFound:
			return apperr.NotFound(msg, nil)
		case http.StatusBadRequest:
			return apperr.Validation(msg, nil)
		}
	}
	return e
}

// CreateOrder mem-persist satu order. Payload diasumsikan sudah lolos
// skema di sisi factory; penolakan backend tetap diangkat sebagai
// ValidationError.
func (c *Client) CreateOrder(ctx context.Context, payload orders.CreatePayload) (*orders.Order, error) {
	resp, status, err := c.do(ctx, http.MethodPost, "/api/orders", payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 || !resp.Success {
		return nil, classify(resp, status, "Gagal menyimpan pesanan.")
	}
	return CanonicalOrder(resp.Data)
}

// GetOrderByID mengembalikan (nil, nil) untuk id valid yang tidak ada;
// absennya data bukan error di operasi ini.
func (c *Client) GetOrderByID(ctx context.Context, id string) (*orders.Order, error) {
	if id == "" {
		return nil, apperr.Validation("ID Pesanan wajib diisi.", nil)
	}
	resp, status, err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 || !resp.Success {
		return nil, classify(resp, status, "Gagal mengambil data pesanan.")
	}
	return CanonicalOrder(resp.Data)
}

func (c *Client) GetAllOrders(ctx context.Context) ([]orders.Order, error) {
	resp, status, err := c.do(ctx, http.MethodGet, "/api/orders", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 || !resp.Success {
		return nil, classify(resp, status, "Gagal mengambil daftar pesanan.")
	}

	var rawList []json.RawMessage
	if err := json.Unmarshal(resp.Data, &rawList); err != nil {
		return nil, apperr.Internal("Respons server tidak valid.", err)
	}
	out := make([]orders.Order, 0, len(rawList))
	for _, raw := range rawList {
		o, err := CanonicalOrder(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// UpdateOrderStatus memvalidasi keanggotaan enum di sisi client sebelum
// memanggil backend; legalitas transisi ditegakkan server (boundary
// tunggal state machine).
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status orders.Status) error {
	if id == "" || !status.Valid() {
		return apperr.Validation("ID Pesanan dan status baru yang valid wajib diisi.", nil)
	}
	resp, code, err := c.do(ctx, http.MethodPut,
		fmt.Sprintf("/api/orders/%s/status", url.PathEscape(id)),
		map[string]string{"status": string(status)})
	if err != nil {
		return err
	}
	if code < 200 || code >= 300 || !resp.Success {
		return classify(resp, code, fmt.Sprintf("Pesanan dengan ID %s tidak dapat diperbarui.", id))
	}
	return nil
}

func (c *Client) UpdateCustomerInfo(ctx context.Context, id string, info orders.CustomerInfo) error {
	if id == "" {
		return apperr.Validation("ID Pesanan wajib diisi.", nil)
	}
	if info.Name == "" || info.Phone == "" || info.Telegram == "" {
		return apperr.Validation("Nama, telepon, dan telegram wajib diisi.", nil)
	}
	resp, status, err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id), info)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 || !resp.Success {
		return classify(resp, status, "Gagal memperbarui info pelanggan.")
	}
	return nil
}

// DeleteOrder adalah hard removal, bukan transisi ke Dibatalkan.
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	if id == "" {
		return apperr.Validation("ID Pesanan wajib diisi.", nil)
	}
	resp, status, err := c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 || !resp.Success {
		return classify(resp, status, "Gagal menghapus pesanan.")
	}
	return nil
}

// TrackOrder mencari snapshot penuh berdasarkan nomor pesanan atau email.
func (c *Client) TrackOrder(ctx context.Context, query string) (*orders.OrderDetails, error) {
	if query == "" {
		return nil, apperr.Validation("Masukkan nomor pesanan atau email", nil)
	}
	resp, status, err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(query), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, apperr.NotFoundf("Pesanan %q tidak ditemukan.", query)
	}
	if status < 200 || status >= 300 || !resp.Success {
		return nil, classify(resp, status, "Gagal mengambil data pesanan.")
	}
	return CanonicalOrderDetails(resp.Data)
}
