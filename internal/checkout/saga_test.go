package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

// fakeRepo merekam panggilan; aman dipakai konkuren karena batch ops
// jalan lewat errgroup.
type fakeRepo struct {
	mu sync.Mutex

	created  []orders.CreatePayload
	deleted  []string
	statuses map[string]orders.Status
	infos    map[string]orders.CustomerInfo

	failOnTier string // CreateOrder untuk tier ini gagal
	missing    map[string]bool
	nextID     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		statuses: make(map[string]orders.Status),
		infos:    make(map[string]orders.CustomerInfo),
		missing:  make(map[string]bool),
	}
}

func (f *fakeRepo) CreateOrder(ctx context.Context, payload orders.CreatePayload) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payload.Tier == f.failOnTier {
		return nil, apperr.Internal("Gagal menyimpan pesanan.", nil)
	}
	f.nextID++
	f.created = append(f.created, payload)
	return &orders.Order{
		ID:          fmt.Sprintf("order-%d", f.nextID),
		Tier:        payload.Tier,
		Status:      payload.Status,
		TotalAmount: payload.TotalAmount,
	}, nil
}

func (f *fakeRepo) GetOrderByID(ctx context.Context, id string) (*orders.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[id] {
		return nil, nil
	}
	return &orders.Order{ID: id, Status: orders.StatusInitial}, nil
}

func (f *fakeRepo) UpdateOrderStatus(ctx context.Context, id string, status orders.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

func (f *fakeRepo) UpdateCustomerInfo(ctx context.Context, id string, info orders.CustomerInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos[id] = info
	return nil
}

func (f *fakeRepo) DeleteOrder(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func mixedCart() []orders.CartItem {
	return []orders.CartItem{
		cartItem("logo", "Desain Logo", 150000),
		{ID: "banner", Name: "Banner Promo", Tier: "basic", Price: 50000,
			BriefDetails: "Banner untuk promo akhir tahun"},
		cartItem("feed", "Feed Instagram", 75000),
	}
}

func TestCreateMultipleOrdersOnePerTier(t *testing.T) {
	repo := newFakeRepo()
	c := New(repo, WithClock(func() time.Time { return now }), WithUniqueCode(func() int { return 417 }))

	ids, err := c.CreateMultipleOrdersFromCart(context.Background(), mixedCart())
	require.NoError(t, err)
	require.Len(t, ids, 2, "satu order per tier")

	// urutan mengikuti first-seen tier di keranjang
	require.Len(t, repo.created, 2)
	assert.Equal(t, "premium", repo.created[0].Tier)
	assert.Equal(t, "basic", repo.created[1].Tier)

	// premium berisi logo + feed, harga konsisten
	premium := repo.created[0]
	require.Len(t, premium.Briefs, 2)
	assert.Equal(t, 150000+75000, premium.Subtotal)
	assert.Equal(t, premium.Subtotal+HandlingFee+417, premium.TotalAmount)
}

func TestCreateMultipleOrdersEmptyCart(t *testing.T) {
	c := New(newFakeRepo())
	_, err := c.CreateMultipleOrdersFromCart(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestCreateMultipleOrdersCompensatesOnFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.failOnTier = "basic" // tier kedua gagal
	c := New(repo)

	ids, err := c.CreateMultipleOrdersFromCart(context.Background(), mixedCart())
	require.Error(t, err)
	assert.Nil(t, ids)
	// order premium yang sempat jadi ikut dihapus
	assert.Equal(t, []string{"order-1"}, repo.deleted)
}

func TestCreateMultipleOrdersBestEffort(t *testing.T) {
	repo := newFakeRepo()
	repo.failOnTier = "basic"
	c := New(repo, WithBestEffort())

	ids, err := c.CreateMultipleOrdersFromCart(context.Background(), mixedCart())
	require.Error(t, err)
	// yang sudah jadi dipertahankan dan dikembalikan
	assert.Equal(t, []string{"order-1"}, ids)
	assert.Empty(t, repo.deleted)
}

func TestCancelBatch(t *testing.T) {
	repo := newFakeRepo()
	c := New(repo)

	require.NoError(t, c.CancelBatch(context.Background(), []string{"a", "b"}))
	assert.Equal(t, orders.StatusDibatalkan, repo.statuses["a"])
	assert.Equal(t, orders.StatusDibatalkan, repo.statuses["b"])

	err := c.CancelBatch(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestConfirmPayment(t *testing.T) {
	repo := newFakeRepo()
	c := New(repo)

	require.NoError(t, c.ConfirmPayment(context.Background(), []string{"a", "b"}))
	assert.Equal(t, orders.StatusPembayaranVerifikasi, repo.statuses["a"])
	assert.Equal(t, orders.StatusPembayaranVerifikasi, repo.statuses["b"])
}

func TestConfirmPaymentMissingOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.missing["ghost"] = true
	c := New(repo)

	err := c.ConfirmPayment(context.Background(), []string{"ghost"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "ghost")
}

func TestSaveContactInfo(t *testing.T) {
	repo := newFakeRepo()
	c := New(repo)

	info := orders.CustomerInfo{Name: "Budi Santoso", Phone: "081234567890", Telegram: "@budisan"}
	require.NoError(t, c.SaveContactInfo(context.Background(), []string{"a", "b"}, info))
	assert.Equal(t, info, repo.infos["a"])
	assert.Equal(t, info, repo.infos["b"])

	// info invalid ditolak sebelum menyentuh repo
	bad := orders.CustomerInfo{Name: "B", Phone: "1", Telegram: "x"}
	err := c.SaveContactInfo(context.Background(), []string{"a"}, bad)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
