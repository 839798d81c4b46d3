package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderDeleted       = "OrderDeleted"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
)

// Envelope v1 untuk semua event internal di bus.
type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "order-api"
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Tier        string `json:"tier"`
	TotalAmount int    `json:"total_amount"`
}

// OrderStatusChangedPayload adalah isi push "order_update" yang sampai ke
// viewer. Version monoton naik per order; consumer membuang update yang
// tidak strictly newer (mitigasi race push vs snapshot REST).
type OrderStatusChangedPayload struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version,omitempty"`
}

// OrderDeletedPayload mengumumkan hard delete; viewer yang sedang melacak
// order itu berhenti menerapkan update untuknya.
type OrderDeletedPayload struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

// ---- Amplop pesan push channel (WebSocket) ----

const (
	MsgTypeOrderUpdate  = "order_update"
	MsgTypeOrderDeleted = "order_deleted"
)

// PushMessage adalah amplop inbound/outbound di push channel. Type yang
// tidak dikenal wajib diabaikan consumer.
type PushMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}
