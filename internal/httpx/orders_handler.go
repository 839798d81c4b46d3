package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/orderstore"
)

// OrdersHandler mengekspos order store lewat REST dengan amplop respons
// {success, data, error, code} yang dikonsumsi restclient.
type OrdersHandler struct {
	Svc *orderstore.Service
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		// {idOrQuery}: UUID = ambil by id, selain itu dicari sebagai
		// nomor pesanan / email (pelacakan).
		r.Get("/{idOrQuery}", h.getOrder)
		r.Put("/{id}", h.updateCustomer)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.deleteOrder)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, apiResponse{Success: true, Data: data})
}

// writeErr memetakan apperr ke status + kode typed; error tak dikenal
// jadi 500 dengan pesan generik supaya detail internal tidak bocor.
func writeErr(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		writeJSON(w, e.HTTPStatus(), apiResponse{
			Success: false,
			Error:   e.Message,
			Code:    e.Code,
		})
		return
	}
	log.Error().Err(err).Msg("unhandled error")
	writeJSON(w, http.StatusInternalServerError, apiResponse{
		Success: false,
		Error:   "Terjadi kesalahan pada server.",
		Code:    apperr.CodeInternal,
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload orders.CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, apperr.Validation("Body permintaan bukan JSON yang valid.",
			map[string]any{"cause": err.Error()}))
		return
	}
	o, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusCreated, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	details, err := h.Svc.Track(r.Context(), chi.URLParam(r, "idOrQuery"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, details)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("Body permintaan bukan JSON yang valid.",
			map[string]any{"cause": err.Error()}))
		return
	}
	o, err := h.Svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), orders.Status(req.Status))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	var info orders.CustomerInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeErr(w, apperr.Validation("Body permintaan bukan JSON yang valid.",
			map[string]any{"cause": err.Error()}))
		return
	}
	if err := h.Svc.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), info); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}
