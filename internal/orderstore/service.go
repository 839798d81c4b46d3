package orderstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
	"github.com/lokadesain/orderflow/internal/redisx"
	"github.com/lokadesain/orderflow/internal/validation"
)

// EventPublisher dipenuhi kafkax.Producer; interface supaya test bisa
// pakai fake tanpa broker.
type EventPublisher interface {
	PublishEvent(eventType, orderID string, payload any)
}

// Service memegang aturan bisnis order di sisi server: validasi payload,
// tabel transisi status, publish event, dan cache status di Redis.
type Service struct {
	Repo    *Repo
	Machine orders.Machine
	RDB     *redis.Client

	Created       EventPublisher
	StatusChanged EventPublisher
}

func (s *Service) Create(ctx context.Context, payload orders.CreatePayload) (*orders.Order, error) {
	if err := validation.CheckStruct(payload); err != nil {
		return nil, err
	}
	if payload.TotalAmount != payload.Subtotal+payload.HandlingFee+payload.UniqueCode {
		return nil, apperr.Validationf("totalAmount tidak konsisten dengan subtotal + handlingFee + uniqueCode.")
	}

	o, err := s.Repo.Create(ctx, payload)
	if err != nil {
		return nil, apperr.Wrap(err, "Gagal menyimpan pesanan.")
	}

	if s.Created != nil {
		s.Created.PublishEvent(orders.EventOrderCreated, o.ID, orders.OrderCreatedPayload{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			Tier:        o.Tier,
			TotalAmount: o.TotalAmount,
		})
	}
	s.cacheStatus(ctx, o)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*orders.Order, error) {
	o, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, "Gagal membaca pesanan.")
	}
	if o == nil {
		return nil, apperr.NotFoundf("Pesanan dengan ID %s tidak ditemukan.", id)
	}
	return o, nil
}

func (s *Service) List(ctx context.Context) ([]orders.Order, error) {
	out, err := s.Repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "Gagal membaca daftar pesanan.")
	}
	return out, nil
}

// Track mencari order berdasarkan id, nomor pesanan, atau email, lalu
// merakit snapshot detail untuk halaman pelacakan.
func (s *Service) Track(ctx context.Context, query string) (*orders.OrderDetails, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validationf("Query pelacakan tidak boleh kosong.")
	}

	o, err := s.Repo.FindByQuery(ctx, query)
	if err != nil {
		return nil, apperr.Wrap(err, "Gagal mencari pesanan.")
	}
	if o == nil {
		return nil, apperr.NotFoundf("Pesanan dengan query %q tidak ditemukan.", query)
	}

	details := &orders.OrderDetails{Order: *o}
	if o.CustomerAddress != nil {
		details.ShippingAddress = *o.CustomerAddress
	}
	for _, b := range o.Briefs {
		details.Items = append(details.Items, orders.LineItem{
			ID:       b.ProductID,
			Name:     b.ProductName,
			Quantity: 1,
			Price:    b.Price,
		})
	}
	return details, nil
}

// UpdateStatus menegakkan tabel transisi sebelum menulis, lalu publish
// OrderStatusChanged dan refresh cache status.
func (s *Service) UpdateStatus(ctx context.Context, id string, next orders.Status) (*orders.Order, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Machine.Check(cur.Status, next); err != nil {
		return nil, err
	}
	if cur.Status == next {
		return cur, nil // no-op, jangan bump version
	}

	o, err := s.Repo.UpdateStatus(ctx, id, next, "Status diperbarui menjadi "+string(next))
	if err != nil {
		return nil, apperr.Wrap(err, "Gagal memperbarui status pesanan.")
	}
	if o == nil {
		return nil, apperr.NotFoundf("Pesanan dengan ID %s tidak ditemukan.", id)
	}

	if s.StatusChanged != nil {
		updatedAt := o.CreatedAt
		if o.UpdatedAt != nil {
			updatedAt = *o.UpdatedAt
		}
		s.StatusChanged.PublishEvent(orders.EventOrderStatusChanged, o.ID, orders.OrderStatusChangedPayload{
			ID:        o.ID,
			Status:    o.Status,
			UpdatedAt: updatedAt,
			Version:   o.Version,
		})
	}
	s.cacheStatus(ctx, o)
	return o, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, info orders.CustomerInfo) error {
	if err := validation.CheckStruct(info); err != nil {
		return err
	}
	ok, err := s.Repo.UpdateCustomer(ctx, id, info)
	if err != nil {
		return apperr.Wrap(err, "Gagal memperbarui info pelanggan.")
	}
	if !ok {
		return apperr.NotFoundf("Pesanan dengan ID %s tidak ditemukan.", id)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return apperr.Wrap(err, "Gagal menghapus pesanan.")
	}
	if !ok {
		return apperr.NotFoundf("Pesanan dengan ID %s tidak ditemukan.", id)
	}
	// delete ikut lewat bus lifecycle yang sama dengan perubahan status,
	// supaya viewer yang sedang melacak order ini tahu ordernya hilang
	if s.StatusChanged != nil {
		s.StatusChanged.PublishEvent(orders.EventOrderDeleted, id, orders.OrderDeletedPayload{
			ID:        id,
			DeletedAt: time.Now().UTC(),
		})
	}
	if s.RDB != nil {
		_ = s.RDB.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Err()
	}
	return nil
}

// cacheStatus best-effort; gagal cache tidak pernah menggagalkan request.
func (s *Service) cacheStatus(ctx context.Context, o *orders.Order) {
	if s.RDB == nil {
		return
	}
	val, _ := json.Marshal(map[string]any{
		"status":  o.Status,
		"version": o.Version,
	})
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	if err := s.RDB.Set(ctx, key, val, redisx.TTLStatusCache).Err(); err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("cache status gagal")
	}
}
