// Package events publishes order lifecycle records to Kafka. Publishing is
// optional: an empty broker list disables it.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"freelance-checkout-system/models"
)

const TopicOrderCompleted = "checkout.order.completed"

var ErrDisabled = errors.New("kafka disabled")

// OrderCompletedEvent is the record emitted after an order is persisted.
type OrderCompletedEvent struct {
	OrderID          string          `json:"order_id"`
	ServiceTitle     string          `json:"service_title"`
	Quantity         int             `json:"quantity"`
	TotalBase        float64         `json:"total_base"`
	TotalDisplay     float64         `json:"total_display"`
	Currency         models.Currency `json:"currency"`
	GatewayPaymentID string          `json:"gateway_payment_id"`
	Status           string          `json:"status"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// PublishJSON writes one keyed JSON record.
func PublishJSON(ctx context.Context, writer *kafka.Writer, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()})
}
