package restclient

import (
	"encoding/json"
	"time"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

// Payload dari order store bentuknya tidak pasti di boundary: nama field
// bisa camelCase atau snake_case tergantung umur backend-nya. Tabel alias
// ini satu-satunya tempat pemetaan itu hidup; semua respons lewat adapter
// di file ini sebelum logika bisnis menyentuhnya.
var fieldAliases = map[string][]string{
	"id":                {"id"},
	"orderNumber":       {"orderNumber", "order_number"},
	"tier":              {"tier"},
	"status":            {"status"},
	"version":           {"version"},
	"subtotal":          {"subtotal", "sub_total"},
	"handlingFee":       {"handlingFee", "handling_fee"},
	"uniqueCode":        {"uniqueCode", "unique_code"},
	"totalAmount":       {"totalAmount", "total_amount"},
	"briefs":            {"briefs"},
	"statusHistory":     {"statusHistory", "status_history"},
	"customerName":      {"customerName", "customer_name"},
	"customerEmail":     {"customerEmail", "customer_email"},
	"customerPhone":     {"customerPhone", "customer_phone"},
	"customerTelegram":  {"customerTelegram", "customer_telegram"},
	"customerAddress":   {"customerAddress", "customer_address"},
	"createdAt":         {"createdAt", "created_at"},
	"updatedAt":         {"updatedAt", "updated_at"},
	"paidAt":            {"paidAt", "paid_at"},
	"shippingAddress":   {"shippingAddress", "shipping_address"},
	"estimatedDelivery": {"estimatedDelivery", "estimated_delivery"},
	"items":             {"items"},
}

func lookup(m map[string]json.RawMessage, canonical string) (json.RawMessage, bool) {
	for _, alias := range fieldAliases[canonical] {
		if raw, ok := m[alias]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

func asString(m map[string]json.RawMessage, key string) string {
	raw, ok := lookup(m, key)
	if !ok {
		return ""
	}
	var s string
	_ = json.Unmarshal(raw, &s)
	return s
}

func asStringPtr(m map[string]json.RawMessage, key string) *string {
	raw, ok := lookup(m, key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func asInt(m map[string]json.RawMessage, key string) int {
	raw, ok := lookup(m, key)
	if !ok {
		return 0
	}
	// backend lama kadang mengirim angka sebagai float
	var f float64
	_ = json.Unmarshal(raw, &f)
	return int(f)
}

func asInt64(m map[string]json.RawMessage, key string) int64 {
	raw, ok := lookup(m, key)
	if !ok {
		return 0
	}
	var f float64
	_ = json.Unmarshal(raw, &f)
	return int64(f)
}

func asTime(m map[string]json.RawMessage, key string) (time.Time, bool) {
	raw, ok := lookup(m, key)
	if !ok {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func asTimePtr(m map[string]json.RawMessage, key string) *time.Time {
	t, ok := asTime(m, key)
	if !ok {
		return nil
	}
	return &t
}

// CanonicalOrder menormalisasi satu objek order mentah ke orders.Order.
func CanonicalOrder(raw json.RawMessage) (*orders.Order, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperr.Internal("Data pesanan di server tidak valid.", err)
	}

	o := &orders.Order{
		ID:               asString(m, "id"),
		OrderNumber:      asString(m, "orderNumber"),
		Tier:             asString(m, "tier"),
		Status:           orders.Status(asString(m, "status")),
		Version:          asInt64(m, "version"),
		Subtotal:         asInt(m, "subtotal"),
		HandlingFee:      asInt(m, "handlingFee"),
		UniqueCode:       asInt(m, "uniqueCode"),
		TotalAmount:      asInt(m, "totalAmount"),
		CustomerName:     asString(m, "customerName"),
		CustomerEmail:    asString(m, "customerEmail"),
		CustomerPhone:    asStringPtr(m, "customerPhone"),
		CustomerTelegram: asStringPtr(m, "customerTelegram"),
		CustomerAddress:  asStringPtr(m, "customerAddress"),
		UpdatedAt:        asTimePtr(m, "updatedAt"),
		PaidAt:           asTimePtr(m, "paidAt"),
	}
	if t, ok := asTime(m, "createdAt"); ok {
		o.CreatedAt = t
	}

	if rawBriefs, ok := lookup(m, "briefs"); ok {
		if err := json.Unmarshal(rawBriefs, &o.Briefs); err != nil {
			return nil, apperr.Internal("Data brief di server tidak valid.", err)
		}
	}

	history, err := canonicalHistory(m)
	if err != nil {
		return nil, err
	}
	o.StatusHistory = history

	if o.ID == "" || !o.Status.Valid() {
		return nil, apperr.Internal("Data pesanan di server tidak valid.", nil)
	}
	return o, nil
}

// canonicalHistory menerima dua bentuk history: log terurut
// [{status,timestamp,description}] (bentuk baru) atau map status->timestamp
// (bentuk lama, di-convert ke log terurut by timestamp).
func canonicalHistory(m map[string]json.RawMessage) ([]orders.StatusEntry, error) {
	raw, ok := lookup(m, "statusHistory")
	if !ok {
		return nil, nil
	}

	var entries []orders.StatusEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, apperr.Internal("Riwayat status di server tidak valid.", err)
	}
	byStatus := make(map[string]time.Time, len(legacy))
	for name, ts := range legacy {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		byStatus[name] = t
	}
	return orders.HistoryFromLegacyMap(byStatus), nil
}

// CanonicalOrderDetails menormalisasi snapshot pelacakan penuh.
func CanonicalOrderDetails(raw json.RawMessage) (*orders.OrderDetails, error) {
	order, err := CanonicalOrder(raw)
	if err != nil {
		return nil, err
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperr.Internal("Data pesanan di server tidak valid.", err)
	}

	details := &orders.OrderDetails{
		Order:             *order,
		ShippingAddress:   asString(m, "shippingAddress"),
		EstimatedDelivery: asTimePtr(m, "estimatedDelivery"),
	}
	if rawItems, ok := lookup(m, "items"); ok {
		if err := json.Unmarshal(rawItems, &details.Items); err != nil {
			return nil, apperr.Internal("Data item pesanan di server tidak valid.", err)
		}
	}
	return details, nil
}
