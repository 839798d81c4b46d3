package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/redisx"
)

// Store menyimpan keranjang per sesi di Redis sebagai JSON array CartItem.
// Kontrak penyimpanan mengikuti keranjang sesi browser: key dihapus saat
// keranjang kosong, dan penulisan antar pemilik sesi yang sama bersifat
// last-writer-wins tanpa jaminan transaksional.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) key(sessionID string) string {
	return fmt.Sprintf(redisx.KeyCartSession, sessionID)
}

// Load mengembalikan slice kosong (bukan error) saat key tidak ada;
// keranjang absen dan keranjang kosong itu ekuivalen.
func (s *Store) Load(ctx context.Context, sessionID string) ([]orders.CartItem, error) {
	raw, ok, err := redisx.GetString(ctx, s.rdb, s.key(sessionID))
	if err != nil {
		return nil, apperr.Internal("Gagal memuat keranjang.", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var items []orders.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, apperr.Internal("Data keranjang di penyimpanan rusak.", err)
	}
	return items, nil
}

// Save menimpa keranjang sesi. Menyimpan keranjang kosong = menghapus key.
func (s *Store) Save(ctx context.Context, sessionID string, items []orders.CartItem) error {
	if len(items) == 0 {
		return s.Clear(ctx, sessionID)
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return apperr.Internal("Gagal menyimpan keranjang.", err)
	}
	if err := s.rdb.Set(ctx, s.key(sessionID), raw, redisx.TTLCartSession).Err(); err != nil {
		return apperr.Internal("Gagal menyimpan keranjang.", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return apperr.Internal("Gagal membersihkan keranjang.", err)
	}
	return nil
}
