package checkout

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func cartItem(id, name string, price int) orders.CartItem {
	return orders.CartItem{
		ID: id, Name: name, Tier: "premium", Price: price,
		BriefDetails: "Detail brief yang cukup panjang",
	}
}

func TestUniqueCodeRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code := UniqueCode()
		require.GreaterOrEqual(t, code, 100)
		require.LessOrEqual(t, code, 999)
	}
}

func TestBuildPayloadPricing(t *testing.T) {
	promo := 120000
	items := []orders.CartItem{
		cartItem("logo", "Desain Logo", 150000),
		cartItem("feed", "Feed Instagram", 75000),
	}
	items[0].PromoPrice = &promo // promo menang atas harga normal

	payload, err := BuildPayload("premium", items, 417, now)
	require.NoError(t, err)

	assert.Equal(t, 120000+75000, payload.Subtotal)
	assert.Equal(t, HandlingFee, payload.HandlingFee)
	assert.Equal(t, 417, payload.UniqueCode)
	assert.Equal(t, payload.Subtotal+HandlingFee+417, payload.TotalAmount)
	assert.Equal(t, orders.StatusInitial, payload.Status)
	require.Len(t, payload.Briefs, 2)
	assert.Equal(t, 120000, payload.Briefs[0].Price)
}

func TestBuildPayloadBriefPlaceholder(t *testing.T) {
	short := cartItem("logo", "Desain Logo", 150000)
	short.BriefDetails = "pendek" // < 10 karakter -> placeholder, bukan reject

	empty := cartItem("feed", "Feed Instagram", 75000)
	empty.BriefDetails = ""

	payload, err := BuildPayload("premium", []orders.CartItem{short, empty}, 250, now)
	require.NoError(t, err)
	assert.Equal(t, BriefPlaceholder, payload.Briefs[0].BriefDetails)
	assert.Equal(t, BriefPlaceholder, payload.Briefs[1].BriefDetails)
}

func TestBuildPayloadInstanceIDFallback(t *testing.T) {
	withID := cartItem("logo", "Desain Logo", 150000)
	withID.InstanceID = "logo-custom-1"

	without := cartItem("feed", "Feed Instagram", 75000)

	payload, err := BuildPayload("premium", []orders.CartItem{withID, without}, 250, now)
	require.NoError(t, err)
	assert.Equal(t, "logo-custom-1", payload.Briefs[0].InstanceID)
	assert.Equal(t, fmt.Sprintf("feed-%d-2", now.UnixMilli()), payload.Briefs[1].InstanceID)
}

func TestBuildPayloadDuplicateProductDistinctInstanceIDs(t *testing.T) {
	// produk yang sama dua kali tanpa instanceId dari client: fallback
	// tetap harus menghasilkan instanceId yang berbeda per item
	items := []orders.CartItem{
		cartItem("logo", "Desain Logo", 150000),
		cartItem("logo", "Desain Logo", 150000),
		cartItem("logo", "Desain Logo", 150000),
	}
	payload, err := BuildPayload("premium", items, 250, now)
	require.NoError(t, err)
	require.Len(t, payload.Briefs, 3)

	seen := make(map[string]bool)
	for _, b := range payload.Briefs {
		assert.Falsef(t, seen[b.InstanceID], "instanceId %q dobel", b.InstanceID)
		seen[b.InstanceID] = true
	}
}

func TestBuildPayloadDefaultUnit(t *testing.T) {
	it := cartItem("logo", "Desain Logo", 150000)
	it.Unit = "cm"
	payload, err := BuildPayload("premium", []orders.CartItem{it, cartItem("feed", "Feed", 1000)}, 250, now)
	require.NoError(t, err)
	assert.Equal(t, "cm", payload.Briefs[0].Unit)
	assert.Equal(t, "px", payload.Briefs[1].Unit)
}

func TestBuildPayloadSchemaFailureAbortsTier(t *testing.T) {
	bad := cartItem("logo", "Desain Logo", 150000)
	bad.GoogleDriveAssetLinks = "bukan-url"

	payload, err := BuildPayload("premium", []orders.CartItem{bad}, 250, now)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Zero(t, payload, "payload parsial tidak boleh keluar dari factory")
}
