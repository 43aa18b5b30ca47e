// file: services/pg_notifier.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostgresNotifier rides on LISTEN/NOTIFY. Database triggers publish on the
// same channel, so writes from any client reach every instance.
type PostgresNotifier struct {
	db           *gorm.DB
	dsn          string
	channel      string
	minReconnect time.Duration
	maxReconnect time.Duration
}

func NewPostgresNotifier(db *gorm.DB, dsn string) *PostgresNotifier {
	return &PostgresNotifier{
		db:           db,
		dsn:          dsn,
		channel:      MembershipChannel,
		minReconnect: time.Second,
		maxReconnect: 30 * time.Second,
	}
}

func (n *PostgresNotifier) Publish(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", n.channel, string(payload)).Error
}

// Subscribe opens a dedicated listener connection. It fails if the first
// connection attempt fails; later drops are healed by pq, which sends a nil
// notification after reconnecting. That nil becomes an event so the index
// recomputes whatever it missed.
func (n *PostgresNotifier) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	failed := make(chan error, 1)
	l := pq.NewListener(n.dsn, n.minReconnect, n.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			select {
			case failed <- err:
			default:
			}
		case pq.ListenerEventDisconnected:
			slog.Warn("postgres listener disconnected", "channel", n.channel, "error", err)
		}
	})

	listened := make(chan error, 1)
	go func() { listened <- l.Listen(n.channel) }()
	select {
	case err := <-listened:
		if err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("listen %s: %w", n.channel, err)
		}
	case err := <-failed:
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", n.channel, err)
	case <-ctx.Done():
		_ = l.Close()
		return nil, ctx.Err()
	}

	out := make(chan ChangeEvent, 16)
	go func() {
		defer close(out)
		defer l.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case nt, ok := <-l.Notify:
				if !ok {
					return
				}
				select {
				case out <- decodeNotification(nt, time.Now()):
				default:
				}
			}
		}
	}()
	return out, nil
}

// decodeNotification turns a NOTIFY payload into an event. A nil notification
// marks a reconnect and is reported as an update of unknown origin.
func decodeNotification(nt *pq.Notification, now time.Time) ChangeEvent {
	ev := ChangeEvent{Op: OpUpdate}
	if nt != nil {
		if err := json.Unmarshal([]byte(nt.Extra), &ev); err != nil {
			slog.Warn("undecodable membership notification", "payload", nt.Extra, "error", err)
			ev = ChangeEvent{Op: OpUpdate}
		}
	}
	if ev.At.IsZero() {
		ev.At = now
	}
	return ev
}
