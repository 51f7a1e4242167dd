package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartCoverageConsumer connects to RabbitMQ, declares the coverage
// event queues (durable), and starts consuming from all three.  Each
// message is appended to logs/coverage.log in a single-line,
// human-friendly format.  The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; bad
// payloads are rejected without requeue so the consumer never spins
// on a poison message.
func StartCoverageConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("coverage-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("coverage-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("coverage-consumer: set QoS failed: %v", err)
	}

	for _, name := range []string{QueueBookingAssigned, QueueSwapApproved, QueueSeriesCreated} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	deliveries := make(chan delivery)
	for _, name := range []string{QueueBookingAssigned, QueueSwapApproved, QueueSeriesCreated} {
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func(queueName string, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				deliveries <- delivery{queue: queueName, d: d}
			}
		}(name, msgs)
	}

	for dv := range deliveries {
		if err := handleMessage(dv.queue, dv.d.Body); err != nil {
			log.Printf("coverage-consumer: handle message failed: %v", err)
			_ = dv.d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = dv.d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

type delivery struct {
	queue string
	d     amqp.Delivery
}

func handleMessage(queueName string, body []byte) error {
	line, err := formatLine(queueName, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "coverage.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(queueName string, body []byte) (string, error) {
	switch queueName {
	case QueueBookingAssigned:
		var ev BookingAssignedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking assigned | booking_id=%d | medic_id=%d | postcode=%s | shift_date=%s | source=%s | confidence=%.1f\n",
			ev.AssignedAt, ev.BookingID, ev.MedicID, ev.SitePostcode, ev.ShiftDate, ev.Source, ev.ConfidenceScore), nil
	case QueueSwapApproved:
		var ev SwapApprovedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Swap approved | swap_id=%d | booking_id=%d | from_medic=%d | to_medic=%d | approved_by=%d\n",
			ev.ApprovedAt, ev.SwapID, ev.BookingID, ev.RequestingMedicID, ev.AcceptingMedicID, ev.ApprovedBy), nil
	case QueueSeriesCreated:
		var ev SeriesCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Series created | parent_booking_id=%d | client_id=%d | pattern=%s | total=%d\n",
			ev.CreatedAt, ev.ParentBookingID, ev.ClientID, ev.Pattern, ev.TotalBookings), nil
	default:
		return "", fmt.Errorf("unknown queue %q", queueName)
	}
}
