package cart

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/redisx"
)

// Butuh redis hidup; set TEST_REDIS_ADDR untuk menjalankan.
func testStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR tidak diset")
	}
	return NewStore(redisx.New(addr))
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	session := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = s.Clear(ctx, session) })

	items := []orders.CartItem{
		item("logo", "Desain Logo", "premium", 150000),
		item("banner", "Banner Promo", "basic", 50000),
	}
	require.NoError(t, s.Save(ctx, session, items))

	got, err := s.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestStoreAbsentSessionIsEmpty(t *testing.T) {
	s := testStore(t)
	got, err := s.Load(context.Background(), "test-"+uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreEmptySaveDeletesKey(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	session := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = s.Clear(ctx, session) })

	require.NoError(t, s.Save(ctx, session, []orders.CartItem{
		item("logo", "Desain Logo", "premium", 150000),
	}))

	// keranjang kosong = key hilang, bukan array kosong tersimpan
	require.NoError(t, s.Save(ctx, session, nil))
	exists, err := redisx.Exists(ctx, s.rdb, fmt.Sprintf(redisx.KeyCartSession, session))
	require.NoError(t, err)
	assert.False(t, exists)
}
