package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/cart"
	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/redisx"
	"github.com/lokadesain/orderflow/internal/validation"
)

// Repository adalah kontrak yang dikonsumsi checkout dari order store.
// Dipenuhi oleh restclient.Client.
type Repository interface {
	CreateOrder(ctx context.Context, payload orders.CreatePayload) (*orders.Order, error)
	GetOrderByID(ctx context.Context, id string) (*orders.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status orders.Status) error
	UpdateCustomerInfo(ctx context.Context, id string, info orders.CustomerInfo) error
	DeleteOrder(ctx context.Context, id string) error
}

type Option func(*Checkout)

// WithBestEffort mempertahankan perilaku lama: kegagalan tier N tidak
// membatalkan order tier sebelumnya yang sudah tersimpan. Default-nya saga
// mengompensasi dengan menghapus sibling yang sudah dibuat.
func WithBestEffort() Option {
	return func(c *Checkout) { c.bestEffort = true }
}

// WithRedis mengaktifkan idempotency key per batch checkout.
func WithRedis(rdb *redis.Client) Option {
	return func(c *Checkout) { c.rdb = rdb }
}

// WithClock dan WithUniqueCode ada untuk determinisme di test.
func WithClock(now func() time.Time) Option {
	return func(c *Checkout) { c.now = now }
}

func WithUniqueCode(fn func() int) Option {
	return func(c *Checkout) { c.uniqueCode = fn }
}

// Checkout mengubah satu keranjang heterogen menjadi satu order per tier.
type Checkout struct {
	repo       Repository
	rdb        *redis.Client
	bestEffort bool
	now        func() time.Time
	uniqueCode func() int
}

func New(repo Repository, opts ...Option) *Checkout {
	c := &Checkout{
		repo:       repo,
		now:        time.Now,
		uniqueCode: UniqueCode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMultipleOrdersFromCart membuat tepat satu order per tier yang ada
// di keranjang, urut first-seen tier. Pembuatan per tier berjalan
// sekuensial. Mode default: kegagalan di tengah mengompensasi dengan
// menghapus order batch yang sudah jadi lalu mengembalikan error pertama;
// mode best-effort mengembalikan id yang sempat dibuat bersama error-nya.
func (c *Checkout) CreateMultipleOrdersFromCart(ctx context.Context, items []orders.CartItem) ([]string, error) {
	groups, err := cart.GroupByTier(items)
	if err != nil {
		return nil, err
	}

	now := c.now()
	created := make([]string, 0, len(groups.Tiers()))

	for _, tier := range groups.Tiers() {
		payload, err := BuildPayload(tier, groups.Items(tier), c.uniqueCode(), now)
		if err != nil {
			return c.fail(ctx, created, tier, err)
		}

		order, err := c.repo.CreateOrder(ctx, payload)
		if err != nil {
			return c.fail(ctx, created, tier, err)
		}
		log.Info().
			Str("order_id", order.ID).
			Str("tier", tier).
			Int("total_amount", order.TotalAmount).
			Msg("checkout: order dibuat")
		created = append(created, order.ID)
	}

	return created, nil
}

func (c *Checkout) fail(ctx context.Context, created []string, tier string, cause error) ([]string, error) {
	if c.bestEffort {
		log.Warn().Err(cause).Str("tier", tier).Int("created", len(created)).
			Msg("checkout: tier gagal, order sebelumnya dibiarkan (best-effort)")
		return created, apperr.Wrap(cause, "Gagal menyimpan pesanan.")
	}

	// kompensasi: hapus sibling yang sudah jadi di batch ini
	for _, id := range created {
		if err := c.repo.DeleteOrder(ctx, id); err != nil {
			log.Error().Err(err).Str("order_id", id).
				Msg("checkout: kompensasi gagal menghapus order")
		}
	}
	return nil, apperr.Wrap(cause, "Gagal menyimpan pesanan.")
}

// CreateBatch adalah varian idempoten per batch checkout: batchID yang
// sama mengembalikan id order hasil pembuatan pertama, bukan membuat lagi.
func (c *Checkout) CreateBatch(ctx context.Context, batchID string, items []orders.CartItem) ([]string, error) {
	if c.rdb == nil || batchID == "" {
		return c.CreateMultipleOrdersFromCart(ctx, items)
	}

	key := fmt.Sprintf(redisx.KeyIdemCheckout, batchID)
	if cached, ok, err := redisx.GetString(ctx, c.rdb, key); err == nil && ok {
		return strings.Split(cached, ","), nil
	}

	ids, err := c.CreateMultipleOrdersFromCart(ctx, items)
	if err != nil {
		return ids, err
	}
	_ = c.rdb.Set(ctx, key, strings.Join(ids, ","), redisx.TTLIdempotency).Err()
	return ids, nil
}

// CancelBatch membatalkan semua order satu sesi checkout: transisi ke
// Dibatalkan, bukan hard delete. Update berjalan konkuren, semua ditunggu
// selesai, hanya error pertama yang di-surface.
func (c *Checkout) CancelBatch(ctx context.Context, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return apperr.Validation("Daftar ID Pesanan tidak boleh kosong.", nil)
	}

	var g errgroup.Group
	for _, id := range orderIDs {
		id := id
		g.Go(func() error {
			return c.repo.UpdateOrderStatus(ctx, id, orders.StatusDibatalkan)
		})
	}
	return g.Wait()
}

// ConfirmPayment menandai semua order batch sebagai sedang diverifikasi.
// Order yang hilang di tengah konfirmasi di-surface sebagai NotFound yang
// menyebut id-nya.
func (c *Checkout) ConfirmPayment(ctx context.Context, orderIDs []string) error {
	if len(orderIDs) == 0 {
		return apperr.Validation("Daftar ID Pesanan tidak boleh kosong.", nil)
	}

	var g errgroup.Group
	for _, id := range orderIDs {
		id := id
		g.Go(func() error {
			order, err := c.repo.GetOrderByID(ctx, id)
			if err != nil {
				return err
			}
			if order == nil {
				return apperr.NotFoundf("Pesanan dengan ID %s tidak ditemukan saat konfirmasi.", id)
			}
			return c.repo.UpdateOrderStatus(ctx, id, orders.StatusPembayaranVerifikasi)
		})
	}
	return g.Wait()
}

// SaveContactInfo menulis info kontak pelanggan ke semua order batch.
func (c *Checkout) SaveContactInfo(ctx context.Context, orderIDs []string, info orders.CustomerInfo) error {
	if len(orderIDs) == 0 {
		return apperr.Validation("Daftar ID Pesanan tidak boleh kosong.", nil)
	}
	if err := validation.CheckStruct(info); err != nil {
		return err
	}

	var g errgroup.Group
	for _, id := range orderIDs {
		id := id
		g.Go(func() error {
			return c.repo.UpdateCustomerInfo(ctx, id, info)
		})
	}
	return g.Wait()
}
