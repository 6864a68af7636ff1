package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

const publishTimeout = 5 * time.Second

// conn is the subset of *nats.Conn used for publishing.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSNotifier publishes build events as JSON on a NATS subject.
type NATSNotifier struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// NewNATSNotifier connects to url and publishes on subject.
func NewNATSNotifier(url, subject string, logger *slog.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("blogbuilder"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, errors.NetworkError("connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	logger.Info("NATS notifier connected", logfields.URL(url), logfields.Subject(subject))
	return newNATSNotifier(nc, subject, logger), nil
}

func newNATSNotifier(c conn, subject string, logger *slog.Logger) *NATSNotifier {
	return &NATSNotifier{conn: c, subject: subject, logger: logger}
}

// Publish marshals ev and flushes it to the server.
func (n *NATSNotifier) Publish(ctx context.Context, ev BuildEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.InternalError("marshal build event").WithCause(err).Build()
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return errors.NetworkError("publish build event").
			WithCause(err).
			WithContext("subject", n.subject).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return errors.NetworkError("flush build event").
			WithCause(err).
			WithContext("subject", n.subject).
			Build()
	}
	n.logger.Debug("Published build event",
		logfields.BuildID(ev.BuildID),
		logfields.Outcome(ev.Outcome),
		logfields.Subject(n.subject))
	return nil
}

// Close drains nothing; pending publishes were flushed by Publish.
func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
