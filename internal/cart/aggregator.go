// Package cart mempartisi keranjang belanja flat menjadi grup per tier
// dan menyimpan keranjang sesi di Redis.
package cart

import (
	"fmt"
	"strings"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

// ErrEmptyCartMessage: teks kanonis, konsumen lama mencocokkan substring ini.
const ErrEmptyCartMessage = "Keranjang tidak boleh kosong"

// TierGroups adalah hasil partisi keranjang: item per tier, urutan insert
// dipertahankan, urutan tier = first-seen.
type TierGroups struct {
	tiers  []string
	byTier map[string][]orders.CartItem
}

// Tiers mengembalikan nama tier sesuai urutan kemunculan pertama.
func (g *TierGroups) Tiers() []string { return g.tiers }

// Items mengembalikan item milik tier, urutan insert.
func (g *TierGroups) Items(tier string) []orders.CartItem { return g.byTier[tier] }

func (g *TierGroups) Len() int {
	n := 0
	for _, items := range g.byTier {
		n += len(items)
	}
	return n
}

// GroupByTier memvalidasi lalu mempartisi keranjang. Validasi per item
// all-or-nothing: satu field wajib hilang berarti seluruh agregasi gagal,
// dengan pesan yang menyebut item dan daftar field-nya.
func GroupByTier(items []orders.CartItem) (*TierGroups, error) {
	if len(items) == 0 {
		return nil, apperr.Validation(ErrEmptyCartMessage+".", nil)
	}

	for i, item := range items {
		if missing := missingFields(item); len(missing) > 0 {
			name := item.Name
			if name == "" {
				name = fmt.Sprintf("item #%d", i+1)
			}
			return nil, apperr.Validation(
				fmt.Sprintf("Item keranjang %q tidak valid: field %s wajib diisi.",
					name, strings.Join(missing, ", ")),
				map[string]any{"index": i, "id": item.ID, "missing": missing},
			)
		}
	}

	g := &TierGroups{byTier: make(map[string][]orders.CartItem)}
	for _, item := range items {
		if _, seen := g.byTier[item.Tier]; !seen {
			g.tiers = append(g.tiers, item.Tier)
		}
		g.byTier[item.Tier] = append(g.byTier[item.Tier], item)
	}
	return g, nil
}

func missingFields(item orders.CartItem) []string {
	var missing []string
	if item.ID == "" {
		missing = append(missing, "id")
	}
	if item.Name == "" {
		missing = append(missing, "name")
	}
	if item.Price <= 0 {
		missing = append(missing, "price")
	}
	if item.Tier == "" {
		missing = append(missing, "tier")
	}
	return missing
}
