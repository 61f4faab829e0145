package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// Job event stream layout.
const (
	JobStream      = "FORECAST_JOBS"
	JobSubjectBase = "forecast.jobs."
	JobSubjectAll  = JobSubjectBase + ">"
)

// JobSubject returns the subject events for one job are published on.
func JobSubject(jobID string) string {
	return JobSubjectBase + jobID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the job stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:       JobStream,
		Subjects:   []string{JobSubjectAll},
		Retention:  nats.LimitsPolicy,
		MaxAge:     24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishJobEvent publishes ev on the job's subject. Repeats of the same
// stage and status inside the duplicate window are dropped by the server.
func (p *Publisher) PublishJobEvent(ctx context.Context, ev *domain.JobEvent) error {
	data, err := EncodeJobEvent(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(JobSubject(ev.JobID), data, nats.MsgId(MessageID(ev)), nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish %s: %w", JobSubject(ev.JobID), err)
	}
	return nil
}

// Ping reports whether the connection is up.
func (p *Publisher) Ping() error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats: %s", p.conn.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
