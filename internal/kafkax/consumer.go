package kafkax

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/lokadesain/orderflow/internal/orders"
)

// Handler menerima satu Envelope yang sudah didecode dan tervalidasi.
// Return nil hanya jika proses sukses & offset boleh di-commit.
type Handler func(ctx context.Context, env orders.Envelope) error

// Consumer membaca satu topic lifecycle order sebagai consumer group:
// dispatcher tunggal, pool worker, commit offset manual per pesan.
type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

// decodeEnvelope memvalidasi pesan bus. Pesan yang bukan Envelope tidak
// akan pernah valid berapa kali pun di-retry; ok=false berarti skip dan
// commit, bukan error.
func decodeEnvelope(m kafka.Message) (orders.Envelope, bool) {
	var env orders.Envelope
	if err := UnmarshalEnvelope(m.Value, &env); err != nil {
		log.Warn().Err(err).Str("topic", m.Topic).Msg("envelope rusak, skip")
		return env, false
	}
	if env.EventType == "" {
		log.Warn().Str("topic", m.Topic).Msg("envelope tanpa event_type, skip")
		return env, false
	}
	return env, true
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	errs := make(chan error, c.workers)

	for i := 0; i < c.workers; i++ {
		go func() {
			for m := range jobs {
				env, ok := decodeEnvelope(m)
				if !ok {
					_ = c.r.CommitMessages(ctx, m)
					continue
				}
				if err := h(ctx, env); err != nil {
					errs <- err
					continue
				}
				// commit hanya setelah handler sukses
				if err := c.r.CommitMessages(ctx, m); err != nil {
					errs <- err
				}
			}
		}()
	}

	// dispatcher loop
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			close(jobs)
			// kecilkan noise saat shutdown
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			return nil
		}

		// drain error non-blocking supaya dispatcher tidak deadlock
		select {
		case e := <-errs:
			log.Warn().Err(e).Str("topic", c.r.Config().Topic).Msg("worker error")
			time.Sleep(200 * time.Millisecond) // backoff ringan
		default:
		}
	}
}
