// Package orderstore adalah sisi server dari kontrak repository: persist
// order + brief + riwayat status di Postgres, dengan riwayat sebagai log
// append-only (satu baris per transisi, tidak pernah menimpa).
package orderstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokadesain/orderflow/internal/orders"
)

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, order_number, tier, status, version, subtotal, handling_fee,
	unique_code, total_amount, customer_name, customer_email, customer_phone,
	customer_telegram, customer_address, paid_at, created_at, updated_at`

// Create menyimpan satu order lengkap dengan briefs dan baris history
// awal dalam satu transaksi.
func (r *Repo) Create(ctx context.Context, payload orders.CreatePayload) (*orders.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	o := &orders.Order{
		ID:            uuid.NewString(),
		OrderNumber:   fmt.Sprintf("ORD-%s", now.Format("20060102150405")),
		Tier:          payload.Tier,
		Briefs:        payload.Briefs,
		Status:        payload.Status,
		Version:       1,
		Subtotal:      payload.Subtotal,
		HandlingFee:   payload.HandlingFee,
		UniqueCode:    payload.UniqueCode,
		TotalAmount:   payload.TotalAmount,
		CustomerName:  payload.CustomerName,
		CustomerEmail: payload.CustomerEmail,
		CreatedAt:     now,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, tier, status, version, subtotal,
		                    handling_fee, unique_code, total_amount,
		                    customer_name, customer_email, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		o.ID, o.OrderNumber, o.Tier, string(o.Status), o.Version, o.Subtotal,
		o.HandlingFee, o.UniqueCode, o.TotalAmount,
		o.CustomerName, o.CustomerEmail, o.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i, b := range payload.Briefs {
		_, err = tx.Exec(ctx, `
			INSERT INTO briefs (order_id, instance_id, product_id, product_name,
			                    tier, brief_details, google_drive_asset_links,
			                    width, height, unit, price, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			o.ID, b.InstanceID, b.ProductID, b.ProductName,
			b.Tier, b.BriefDetails, b.GoogleDriveAssetLinks,
			b.Width, b.Height, b.Unit, b.Price, i)
		if err != nil {
			return nil, err
		}
	}

	if err := appendHistory(ctx, tx, o.ID, o.Status, "Pesanan dibuat", now); err != nil {
		return nil, err
	}
	o.StatusHistory = orders.AppendHistory(nil, o.Status, now, "Pesanan dibuat")

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func appendHistory(ctx context.Context, tx pgx.Tx, orderID string, status orders.Status, desc string, ts time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, description, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.NewString(), orderID, string(status), desc, ts)
	return err
}

// GetByID mengembalikan (nil, nil) kalau id tidak ada.
func (r *Repo) GetByID(ctx context.Context, id string) (*orders.Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadBriefs(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// FindByQuery mencari untuk pelacakan: id dulu, lalu nomor pesanan, lalu
// email pelanggan (yang terbaru menang).
func (r *Repo) FindByQuery(ctx context.Context, query string) (*orders.Order, error) {
	if _, err := uuid.Parse(query); err == nil {
		return r.GetByID(ctx, query)
	}
	row := r.DB.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE order_number=$1 OR customer_email=$1
		ORDER BY created_at DESC LIMIT 1`, query)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadBriefs(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) List(ctx context.Context) ([]orders.Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatus menaikkan version, menulis status baru, dan menambah baris
// history. Mengembalikan order hasil update; (nil, nil) kalau id tidak ada.
func (r *Repo) UpdateStatus(ctx context.Context, id string, status orders.Status, desc string) (*orders.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status=$1, version=version+1, updated_at=$2 WHERE id=$3`,
		string(status), now, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	if err := appendHistory(ctx, tx, id, status, desc, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateCustomer menulis info kontak. false kalau id tidak ada.
func (r *Repo) UpdateCustomer(ctx context.Context, id string, info orders.CustomerInfo) (bool, error) {
	var address *string
	if info.Address != "" {
		address = &info.Address
	}
	tag, err := r.DB.Exec(ctx, `
		UPDATE orders SET customer_name=$1, customer_phone=$2,
		       customer_telegram=$3, customer_address=$4, updated_at=$5
		WHERE id=$6`,
		info.Name, info.Phone, info.Telegram, address, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete adalah hard removal; briefs dan history ikut lewat cascade.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.Row) (*orders.Order, error) {
	var o orders.Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Tier, &status, &o.Version,
		&o.Subtotal, &o.HandlingFee, &o.UniqueCode, &o.TotalAmount,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.CustomerTelegram, &o.CustomerAddress, &o.PaidAt,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = orders.Status(status)
	return &o, nil
}

func (r *Repo) loadBriefs(ctx context.Context, o *orders.Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT instance_id, product_id, product_name, tier, brief_details,
		       google_drive_asset_links, width, height, unit, price
		FROM briefs WHERE order_id=$1 ORDER BY position`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var b orders.Brief
		if err := rows.Scan(&b.InstanceID, &b.ProductID, &b.ProductName, &b.Tier,
			&b.BriefDetails, &b.GoogleDriveAssetLinks, &b.Width, &b.Height,
			&b.Unit, &b.Price); err != nil {
			return err
		}
		o.Briefs = append(o.Briefs, b)
	}
	return rows.Err()
}

func (r *Repo) loadHistory(ctx context.Context, o *orders.Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT status, description, created_at
		FROM order_status_history WHERE order_id=$1 ORDER BY created_at`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e orders.StatusEntry
		var status string
		if err := rows.Scan(&status, &e.Description, &e.Timestamp); err != nil {
			return err
		}
		e.Status = orders.Status(status)
		o.StatusHistory = append(o.StatusHistory, e)
	}
	return rows.Err()
}
