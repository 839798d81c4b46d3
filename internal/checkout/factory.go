// Package checkout membangun order dari keranjang: pricing, brief, payload
// yang sudah tervalidasi, dan saga pembuatan multi-tier.
package checkout

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/validation"
)

// HandlingFee adalah biaya penanganan tetap per order, tier apa pun.
const HandlingFee = 2500

// BriefPlaceholder dipakai saat briefDetails kosong atau kurang dari
// briefMinLen; item tidak pernah ditolak hanya karena brief belum diisi.
const BriefPlaceholder = "Brief belum diisi, menunggu detail dari pelanggan."

const briefMinLen = 10

// UniqueCode menghasilkan kode unik transfer di [100, 999] inklusif,
// independen per order. Tabrakan antar order yang sedang pending tidak
// dicek di sisi client; rekonsiliasi manual yang menanggung ambiguitasnya.
func UniqueCode() int {
	return rand.Intn(900) + 100
}

// BuildPayload merakit payload pembuatan order untuk satu grup tier dan
// memvalidasinya terhadap skema sebelum network call mana pun. Gagal skema
// berarti seluruh tier batal; payload parsial tidak pernah terkirim.
func BuildPayload(tier string, items []orders.CartItem, uniqueCode int, now time.Time) (orders.CreatePayload, error) {
	subtotal := 0
	briefs := make([]orders.Brief, 0, len(items))
	for i, item := range items {
		subtotal += item.EffectivePrice()
		briefs = append(briefs, buildBrief(item, i, now))
	}

	payload := orders.CreatePayload{
		Tier:          tier,
		Briefs:        briefs,
		Subtotal:      subtotal,
		HandlingFee:   HandlingFee,
		UniqueCode:    uniqueCode,
		TotalAmount:   subtotal + HandlingFee + uniqueCode,
		Status:        orders.StatusInitial,
		CustomerName:  "",
		CustomerEmail: "",
	}

	if err := validation.CheckStruct(payload); err != nil {
		return orders.CreatePayload{}, err
	}
	return payload, nil
}

func buildBrief(item orders.CartItem, pos int, now time.Time) orders.Brief {
	instanceID := item.InstanceID
	if instanceID == "" {
		// suffix posisi: produk yang sama boleh muncul lebih dari sekali
		// dalam satu order, instanceId tetap harus unik
		instanceID = fmt.Sprintf("%s-%d-%d", item.ID, now.UnixMilli(), pos+1)
	}

	details := item.BriefDetails
	if len(details) < briefMinLen {
		details = BriefPlaceholder
	}

	unit := item.Unit
	if unit == "" {
		unit = "px"
	}

	return orders.Brief{
		InstanceID:            instanceID,
		ProductID:             item.ID,
		ProductName:           item.Name,
		Tier:                  item.Tier,
		BriefDetails:          details,
		GoogleDriveAssetLinks: item.GoogleDriveAssetLinks,
		Width:                 item.Width,
		Height:                item.Height,
		Unit:                  unit,
		Price:                 item.EffectivePrice(),
	}
}
