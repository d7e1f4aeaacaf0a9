package events

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publie les événements de cycle de vie des commandes sur Kafka.
// Optionnel : sans KAFKA_BROKERS configuré, tout est no-op.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

var Orders *Producer

// Init lit KAFKA_BROKERS et prépare le producteur d'événements commandes
func Init() {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		log.Println("⚠️ KAFKA_BROKERS non configuré — événements commandes désactivés")
		return
	}

	topic := os.Getenv("KAFKA_ORDERS_TOPIC")
	if topic == "" {
		topic = "velora.orders"
	}

	Orders = NewProducer(strings.Split(brokers, ","), topic)
	log.Println("✅ Producteur Kafka prêt sur", topic)
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           100 * time.Millisecond,
		},
	}
}

// OrderEvent : payload commun à tous les événements commande
type OrderEvent struct {
	Type       string    `json:"type"` // "order.created", "order.status_changed", "order.deleted"
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status,omitempty"`
	PrevStatus string    `json:"prev_status,omitempty"`
	Total      float64   `json:"total,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publish envoie un événement, clé = order_id pour garder l'ordre par commande
func (p *Producer) Publish(ctx context.Context, event OrderEvent) error {
	if p == nil {
		return nil
	}

	event.OccurredAt = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	})
}

// PublishAsync : version fire-and-forget utilisée par les handlers
func (p *Producer) PublishAsync(event OrderEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			log.Printf("⚠️ Événement Kafka %s non publié: %v", event.Type, err)
		}
	}()
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
