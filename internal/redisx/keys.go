package redisx

import "time"

const (
	// Keranjang sesi: cart:session:{session_id} -> JSON array CartItem.
	// Keranjang kosong = key dihapus, bukan array kosong.
	KeyCartSession = "cart:session:%s"

	// Cache status order: order_status:{order_id} -> {"status":...,"version":...}
	KeyOrderStatus = "order_status:%s"

	// Idempotency checkout batch: idem:checkout:{batch_id} -> CSV order_id
	KeyIdemCheckout = "idem:checkout:%s"
)

var (
	// Keranjang hidup sepanjang sesi belanja; last-writer-wins antar tab.
	TTLCartSession = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour
)
