package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Mailer sends the customer-facing confirmation emails.  Implemented by the
// email package; kept as an interface here so the consumer can be tested
// without an SMTP server.
type Mailer interface {
	SendBookingConfirmation(ev BookingConfirmedEvent) error
	SendOrderConfirmation(ev OrderPaidEvent) error
}

// Consumer drains the confirmation queues and dispatches emails.  It runs a
// reconnect loop with exponential backoff and never returns under normal
// operation; failed messages are rejected without requeue so a poison
// message cannot spin the loop.
type Consumer struct {
	url    string
	mailer Mailer
	logger *zap.Logger
}

// NewConsumer returns a Consumer for the given AMQP URL.
func NewConsumer(url string, mailer Mailer, logger *zap.Logger) *Consumer {
	return &Consumer{url: url, mailer: mailer, logger: logger}
}

// Start blocks, consuming both confirmation queues.  Run it on its own
// goroutine.
func (c *Consumer) Start() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("email-consumer: dial failed", zap.Duration("retry_in", backoff), zap.Error(err))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consume(conn); err != nil {
			c.logger.Warn("email-consumer: consume loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consume(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.logger.Warn("email-consumer: set QoS failed", zap.Error(err))
	}

	for _, name := range []string{BookingConfirmedQueue, OrderPaidQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	bookings, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", BookingConfirmedQueue, err)
	}
	orders, err := ch.Consume(OrderPaidQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", OrderPaidQueue, err)
	}

	for {
		select {
		case d, ok := <-bookings:
			if !ok {
				return errors.New("booking deliveries channel closed")
			}
			c.handle(d, c.handleBooking)
		case d, ok := <-orders:
			if !ok {
				return errors.New("order deliveries channel closed")
			}
			c.handle(d, c.handleOrder)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery, fn func([]byte) error) {
	if err := fn(d.Body); err != nil {
		c.logger.Error("email-consumer: handle message failed", zap.Error(err))
		_ = d.Nack(false, false) // reject, do not requeue
		return
	}
	_ = d.Ack(false)
}

func (c *Consumer) handleBooking(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal booking event: %w", err)
	}
	if err := c.mailer.SendBookingConfirmation(ev); err != nil {
		return fmt.Errorf("send booking confirmation %s: %w", ev.Reference, err)
	}
	c.logger.Info("email-consumer: booking confirmation sent",
		zap.String("reference", ev.Reference), zap.String("event_id", ev.EventID))
	return nil
}

func (c *Consumer) handleOrder(body []byte) error {
	var ev OrderPaidEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal order event: %w", err)
	}
	if err := c.mailer.SendOrderConfirmation(ev); err != nil {
		return fmt.Errorf("send order confirmation %s: %w", ev.Reference, err)
	}
	c.logger.Info("email-consumer: order confirmation sent",
		zap.String("reference", ev.Reference), zap.String("event_id", ev.EventID))
	return nil
}
