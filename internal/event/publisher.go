package event

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

const (
	TestSessionCompleted   = "test.session.completed"
	TestSessionAbandoned   = "test.session.abandoned"
	PracticeSessionCreated = "practice.session.created"
	UserCreated            = "user.created"
	UserDeleted            = "user.deleted"
	AuthSignup             = "auth.signup"
	AuthLogin              = "auth.login"
	AuthLogout             = "auth.logout"
	AuthLoginFailed        = "auth.login_failed"
)

// Publisher emits domain events.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
	Close()
}

// Message is the JSON body sent for every event
type Message struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMessage(eventType string, payload interface{}, now time.Time) ([]byte, error) {
	return json.Marshal(Message{Type: eventType, Payload: payload, Timestamp: now})
}

type EventPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
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
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	log.Printf("RabbitMQ publisher ready on exchange %s", exchange)
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := NewMessage(eventType, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	log.Printf("[EVENT] %s", eventType)

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	// Use the event type as the routing key for topic exchange
	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Noop drops every event. Used when RabbitMQ is not configured.
type Noop struct{}

func (Noop) Publish(string, interface{}) error { return nil }

func (Noop) Close() {}
