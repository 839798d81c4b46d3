// Package kafkax membungkus segmentio/kafka-go untuk bus event order:
// producer async ber-inbox di sisi API, consumer group ber-worker-pool
// di sisi notifier.
package kafkax

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/lokadesain/orderflow/internal/orders"
)

type Producer struct {
	w         *kafka.Writer
	service   string
	inbox     chan kafka.Message
	closeCh   chan struct{}
	closeOnce sync.Once
}

func NewProducer(brokers []string, topic, service string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget untuk throughput; error dilog di loop
		},
		service: service,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Error().Err(err).Str("topic", p.w.Topic).Msg("kafka write gagal")
	}
}

// PublishEvent membungkus payload ke Envelope v1 lalu antre ke inbox.
// Key = order id supaya semua event satu order maintain urutan partisi.
func (p *Producer) PublishEvent(eventType, orderID string, payload any) {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: orderID,
		Payload:       MustMarshal(payload),
	}
	p.inbox <- kafka.Message{
		Key:   orders.PartitionKey(orderID),
		Value: MustMarshal(env),
		Time:  time.Now(),
	}
}

// Tutup inbox supaya goroutine nge-flush sisa pesan lalu exit rapi.
// Aman dipanggil dobel (shutdown path dan cancel ctx bisa balapan).
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.inbox) }) }

// Tunggu sampai goroutine selesai.
func (p *Producer) WaitClosed() { <-p.closeCh }
