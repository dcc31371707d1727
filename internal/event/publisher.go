package event

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys published on the exam topic exchange.
const (
	AttemptStarted   = "exam.attempt.started"
	AttemptSubmitted = "exam.attempt.submitted"
	PremiumActivated = "exam.premium.activated"
)

type envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	EmittedAt time.Time   `json:"emitted_at"`
}

type ExamEventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewExamEventPublisher(amqpURL, exchange string) (*ExamEventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &ExamEventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends the payload on the topic exchange using the event type
// as the routing key, so consumers can bind to exam.attempt.* etc.
func (p *ExamEventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := json.Marshal(envelope{
		Type:      eventType,
		Payload:   payload,
		EmittedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	log.Printf("[EVENT] %s", eventType)

	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *ExamEventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// NoopPublisher stands in when no broker is configured; events are
// logged and dropped.
type NoopPublisher struct{}

func (NoopPublisher) Publish(eventType string, payload interface{}) error {
	log.Printf("[EVENT] %s (no broker configured, dropped)", eventType)
	return nil
}
