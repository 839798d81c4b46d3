// Package tracker adalah konsumen sisi-pelanggan untuk pelacakan pesanan:
// langganan push channel untuk update status near-realtime, plus jalur
// REST independen untuk snapshot penuh berdasarkan nomor pesanan/email.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lokadesain/orderflow/internal/apperr"
	"github.com/lokadesain/orderflow/internal/orders"
)

// ConnState adalah tiga keadaan koneksi yang bisa diobservasi viewer.
type ConnState string

const (
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
)

// Label untuk indikator koneksi di UI.
func (s ConnState) Label() string {
	switch s {
	case StateConnected:
		return "Terhubung ke server"
	case StateConnecting:
		return "Menghubungkan..."
	default:
		return "Terputus dari server"
	}
}

// Pesan user-facing jalur lookup.
const (
	MsgOrderNotFound   = "Pesanan tidak ditemukan. Silakan periksa kembali nomor pesanan atau email Anda."
	MsgConnectionError = "Terjadi kesalahan koneksi. Silakan coba lagi."
	MsgEmptyQuery      = "Masukkan nomor pesanan atau email"
)

const (
	maxReconnectAttempts = 5
	maxReconnectDelay    = 30 * time.Second
)

// Lookup adalah jalur REST yang dikonsumsi tracker (restclient.Client).
type Lookup interface {
	TrackOrder(ctx context.Context, query string) (*orders.OrderDetails, error)
}

// Tracker memegang satu pesanan yang sedang ditampilkan. Push update untuk
// id lain adalah no-op; push yang tidak strictly newer dibuang supaya
// snapshot REST yang lebih segar tidak "mundur" gara-gara push basi.
type Tracker struct {
	lookup Lookup
	wsURL  string
	dialer *websocket.Dialer

	mu          sync.Mutex
	state       ConnState
	current     *orders.OrderDetails
	lastVersion int64
	lastUpdated time.Time
	deleted     bool
	closed      bool
	conn        *websocket.Conn
}

func New(lookup Lookup, wsURL string) *Tracker {
	return &Tracker{
		lookup: lookup,
		wsURL:  wsURL,
		dialer: websocket.DefaultDialer,
		state:  StateDisconnected,
	}
}

func (t *Tracker) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Current mengembalikan salinan snapshot yang sedang ditampilkan.
func (t *Tracker) Current() *orders.OrderDetails {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	cp := *t.current
	cp.StatusHistory = append([]orders.StatusEntry(nil), t.current.StatusHistory...)
	return &cp
}

// Search mengambil snapshot penuh via REST dan menjadikannya pesanan yang
// dilacak. Error dipetakan ke pesan lokal: 404 -> MsgOrderNotFound,
// kegagalan lain -> MsgConnectionError.
func (t *Tracker) Search(ctx context.Context, query string) (*orders.OrderDetails, error) {
	if query == "" {
		return nil, apperr.Validation(MsgEmptyQuery, nil)
	}

	details, err := t.lookup.TrackOrder(ctx, query)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(MsgOrderNotFound, nil)
		}
		var e *apperr.Error
		if errors.As(err, &e) && e.Kind == apperr.KindValidation {
			return nil, e
		}
		return nil, apperr.Internal(MsgConnectionError, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = details
	t.lastVersion = details.Version
	t.lastUpdated = snapshotTime(details)
	t.deleted = false
	return details, nil
}

func snapshotTime(d *orders.OrderDetails) time.Time {
	if d.UpdatedAt != nil {
		return *d.UpdatedAt
	}
	return d.CreatedAt
}

// Listen menyambung ke push channel dan memproses pesan sampai ctx selesai
// atau reconnect habis. Reconnect: backoff eksponensial cap 30s, maksimal
// 5 percobaan (kebijakan channel, bukan kebijakan konsumen).
func (t *Tracker) Listen(ctx context.Context) error {
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			t.setState(StateDisconnected)
			return nil
		}

		t.setState(StateConnecting)
		conn, _, err := t.dialer.DialContext(ctx, t.wsURL, nil)
		if err != nil {
			t.setState(StateDisconnected)
			attempts++
			if attempts >= maxReconnectAttempts {
				return apperr.Internal(MsgConnectionError, err)
			}
			delay := min(time.Second<<uint(attempts-1), maxReconnectDelay)
			log.Warn().Err(err).Int("attempt", attempts).Dur("delay", delay).
				Msg("tracker: gagal menyambung push channel, mencoba lagi")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}

		attempts = 0
		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()
		t.setState(StateConnected)

		t.readLoop(ctx, conn)
		_ = conn.Close()
		t.setState(StateDisconnected)
		attempts++
		if attempts >= maxReconnectAttempts {
			return nil
		}
	}
}

func (t *Tracker) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		var msg orders.PushMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("tracker: push channel terputus")
			}
			return
		}

		switch msg.Type {
		case orders.MsgTypeOrderUpdate:
			var update orders.OrderStatusChangedPayload
			if err := json.Unmarshal(msg.Data, &update); err != nil {
				log.Warn().Err(err).Msg("tracker: payload order_update tidak valid")
				continue
			}
			t.Apply(update)
		case orders.MsgTypeOrderDeleted:
			var del orders.OrderDeletedPayload
			if err := json.Unmarshal(msg.Data, &del); err != nil {
				log.Warn().Err(err).Msg("tracker: payload order_deleted tidak valid")
				continue
			}
			t.ApplyDeleted(del.ID)
		default:
			// type yang tidak dikenal diabaikan
		}
	}
}

// Apply menerapkan satu push update ke pesanan yang sedang ditampilkan.
// Aturan, urut:
//   - tracker sudah di-Close atau belum menampilkan pesanan: no-op
//   - id berbeda dari pesanan yang ditampilkan: no-op
//   - update tidak strictly newer (version, atau updated_at kalau producer
//     lama tanpa version): dibuang
//
// Update yang lolos di-prepend ke timeline dengan deskripsi lokal dan
// menjadi status saat ini. Return true hanya kalau update diterapkan.
func (t *Tracker) Apply(update orders.OrderStatusChangedPayload) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.deleted || t.current == nil || t.current.ID != update.ID {
		return false
	}

	if update.Version > 0 {
		if update.Version <= t.lastVersion {
			return false
		}
	} else if !update.UpdatedAt.After(t.lastUpdated) {
		return false
	}

	entry := orders.StatusEntry{
		Status:      update.Status,
		Timestamp:   update.UpdatedAt,
		Description: "Status diperbarui menjadi " + string(update.Status),
	}
	t.current.StatusHistory = append([]orders.StatusEntry{entry}, t.current.StatusHistory...)
	t.current.Status = update.Status
	ts := update.UpdatedAt
	t.current.UpdatedAt = &ts
	t.lastUpdated = update.UpdatedAt
	if update.Version > 0 {
		t.lastVersion = update.Version
		t.current.Version = update.Version
	}
	return true
}

// ApplyDeleted menandai pesanan yang sedang ditampilkan sudah dihapus di
// server. Snapshot terakhir dibiarkan untuk tampilan; update berikutnya
// untuk id itu tidak lagi diterapkan. Id lain: no-op.
func (t *Tracker) ApplyDeleted(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.current == nil || t.current.ID != id {
		return false
	}
	t.deleted = true
	return true
}

// Deleted melapor apakah pesanan yang ditampilkan sudah dihapus server.
func (t *Tracker) Deleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleted
}

// Close menghentikan tracker. Update yang datang setelah Close tidak
// menyentuh state (guard "masih di-mount").
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.state = StateDisconnected
	if t.conn != nil {
		err := t.conn.Close()
		t.conn = nil
		return err
	}
	return nil
}

func (t *Tracker) setState(s ConnState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		t.state = StateDisconnected
		return
	}
	t.state = s
}
