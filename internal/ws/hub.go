// Package ws adalah push channel realtime: hub broadcast satu arah ke
// semua viewer yang sedang membuka halaman pelacakan.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lokadesain/orderflow/internal/kafkax"
	"github.com/lokadesain/orderflow/internal/orders"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Inbound dari viewer diabaikan, jadi batas kecil saja.
	maxMessageSize = 512

	sendBuf = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Halaman pelacakan publik; origin tidak dibatasi.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub memelihara himpunan koneksi dan menyiarkan pesan ke semuanya.
// Semua mutasi himpunan terjadi di goroutine Run, tanpa lock.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			log.Debug().Int("clients", len(h.clients)).Msg("ws client terhubung")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer, putus saja daripada hub macet
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// BroadcastOrderUpdate membungkus payload ke amplop "order_update" lalu
// menyiarkannya. Filtering per order terjadi di sisi viewer.
func (h *Hub) BroadcastOrderUpdate(p orders.OrderStatusChangedPayload) {
	msg := orders.PushMessage{
		Type:      orders.MsgTypeOrderUpdate,
		Data:      kafkax.MustMarshal(p),
		Timestamp: time.Now().UTC(),
	}
	h.broadcast <- kafkax.MustMarshal(msg)
}

// BroadcastOrderDeleted memberi tahu viewer bahwa sebuah order di-hard
// delete; tracker berhenti menerapkan update untuk order itu.
func (h *Hub) BroadcastOrderDeleted(p orders.OrderDeletedPayload) {
	msg := orders.PushMessage{
		Type:      orders.MsgTypeOrderDeleted,
		Data:      kafkax.MustMarshal(p),
		Timestamp: time.Now().UTC(),
	}
	h.broadcast <- kafkax.MustMarshal(msg)
}

// ServeWS meng-upgrade request HTTP jadi koneksi hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade gagal")
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuf)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump membuang inbound; tugasnya cuma mendeteksi close dan menjawab
// ping/pong supaya koneksi mati terdeteksi.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("ws read berhenti")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
