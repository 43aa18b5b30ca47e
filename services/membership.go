// file: services/membership.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MembershipChannel is the pub/sub channel carrying project_members changes.
const MembershipChannel = database.MembershipChannel

type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent announces a write to the membership tables.
type ChangeEvent struct {
	Table     string    `json:"table"`
	Op        ChangeOp  `json:"op"`
	ProjectID uint32    `json:"project_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier fans membership change events out to every running instance.
type Notifier interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	// Subscribe delivers events until ctx is cancelled, then closes the channel.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// NewNotifier builds the notifier named by MEMBERSHIP_NOTIFIER. "auto" prefers PostgreSQL
// LISTEN/NOTIFY, which also sees writes made outside this service, then Redis,
// then an in-process fan-out.
func NewNotifier(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (Notifier, error) {
	kind := cfg.MembershipNotifier
	if kind == "" || kind == "auto" {
		switch {
		case cfg.DBDriver == "postgres":
			kind = "postgres"
		case rdb != nil:
			kind = "redis"
		default:
			kind = "local"
		}
	}
	switch kind {
	case "postgres":
		return NewPostgresNotifier(db, cfg.DSN()), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis notifier needs a redis client")
		}
		return &RedisNotifier{rdb: rdb, channel: MembershipChannel}, nil
	case "local":
		return NewLocalNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown membership notifier %q", kind)
	}
}

// LocalNotifier is an in-process fan-out. Slow subscribers miss events rather
// than block publishers; one pending event is enough to trigger a recompute.
type LocalNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ChangeEvent
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[int]chan ChangeEvent)}
}

func (n *LocalNotifier) Publish(_ context.Context, ev ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, 16)
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		close(ch)
		n.mu.Unlock()
	}()
	return ch, nil
}

type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

func (n *RedisNotifier) Publish(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, payload).Err()
}

func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	pubsub := n.rdb.Subscribe(ctx, n.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	out := make(chan ChangeEvent, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("dropping malformed membership event", "payload", msg.Payload, "error", err)
					continue
				}
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()
	return out, nil
}

// BusyLoader returns the registration ids already on a project in the current hackathon.
type BusyLoader func(ctx context.Context) ([]uint32, error)

// GormBusyLoader joins projects to members for the newest hackathon.
func GormBusyLoader(db *gorm.DB) BusyLoader {
	return func(ctx context.Context) ([]uint32, error) {
		h, err := CurrentHackathon(ctx, db)
		if err != nil {
			return nil, err
		}
		if h == nil {
			return nil, nil
		}
		var ids []uint32
		err = db.WithContext(ctx).
			Table(models.ProjectMember{}.TableName()+" pm").
			Joins("JOIN "+models.Project{}.TableName()+" p ON p.id = pm.project_id").
			Where("p.hackathon_id = ?", h.ID).
			Distinct().
			Pluck("pm.registration_id", &ids).Error
		return ids, err
	}
}

// BusySnapshot is an immutable view of the busy set.
type BusySnapshot struct {
	IDs       []uint32  `json:"registration_ids"`
	Version   uint64    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembershipIndex keeps the busy set of the current hackathon up to date.
//
// Every change event triggers a full recomputation through load, so the index is
// eventually consistent with the database and never patched incrementally.
type MembershipIndex struct {
	load     BusyLoader
	notifier Notifier

	mu       sync.RWMutex
	busy     map[uint32]struct{}
	snapshot BusySnapshot

	watchMu  sync.Mutex
	watchers map[int]chan BusySnapshot
	nextID   int

	retryMin time.Duration
	retryMax time.Duration
}

func NewMembershipIndex(load BusyLoader, notifier Notifier) *MembershipIndex {
	return &MembershipIndex{
		load:     load,
		notifier: notifier,
		busy:     make(map[uint32]struct{}),
		watchers: make(map[int]chan BusySnapshot),
		retryMin: 500 * time.Millisecond,
		retryMax: 30 * time.Second,
	}
}

// Refresh recomputes the busy set and swaps it in.
func (m *MembershipIndex) Refresh(ctx context.Context) error {
	ids, err := m.load(ctx)
	if err != nil {
		return fmt.Errorf("load busy registrations: %w", err)
	}
	set := make(map[uint32]struct{}, len(ids))
	sorted := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if _, dup := set[id]; dup {
			continue
		}
		set[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	m.mu.Lock()
	m.busy = set
	m.snapshot = BusySnapshot{IDs: sorted, Version: m.snapshot.Version + 1, UpdatedAt: time.Now()}
	snap := m.snapshot
	m.mu.Unlock()

	m.broadcast(snap)
	return nil
}

func (m *MembershipIndex) Snapshot() BusySnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *MembershipIndex) IsBusy(id uint32) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.busy[id]
	return ok
}

// Notify publishes a change. Publishing failures are logged; the next event or
// restart still converges the index.
func (m *MembershipIndex) Notify(ctx context.Context, op ChangeOp, projectID uint32) {
	ev := ChangeEvent{Table: models.ProjectMember{}.TableName(), Op: op, ProjectID: projectID, At: time.Now()}
	if err := m.notifier.Publish(ctx, ev); err != nil {
		slog.Warn("publish membership change failed", "op", op, "project_id", projectID, "error", err)
	}
}

// NotifyHackathonChange announces that the current edition may have changed.
func (m *MembershipIndex) NotifyHackathonChange(ctx context.Context) {
	ev := ChangeEvent{Table: models.Hackathon{}.TableName(), Op: OpUpdate, At: time.Now()}
	if err := m.notifier.Publish(ctx, ev); err != nil {
		slog.Warn("publish hackathon change failed", "error", err)
	}
}

// Watch streams snapshots after every refresh until ctx ends. Only the latest
// snapshot is kept for a slow reader.
func (m *MembershipIndex) Watch(ctx context.Context) <-chan BusySnapshot {
	ch := make(chan BusySnapshot, 1)
	m.watchMu.Lock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = ch
	m.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		m.watchMu.Lock()
		delete(m.watchers, id)
		close(ch)
		m.watchMu.Unlock()
	}()
	return ch
}

func (m *MembershipIndex) broadcast(snap BusySnapshot) {
	m.watchMu.Lock()
	defer m.watchMu.Unlock()
	for _, ch := range m.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Run refreshes once, then recomputes on every change event until ctx is
// cancelled. A failed or lost subscription is retried with backoff, and every
// new subscription is followed by a refresh so writes made while unsubscribed
// are picked up.
func (m *MembershipIndex) Run(ctx context.Context) error {
	if err := m.Refresh(ctx); err != nil {
		slog.Error("initial membership refresh failed", "error", err)
	}
	retry := m.retryMin
	for {
		events, err := m.notifier.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Warn("membership subscribe failed", "error", err, "retry_in", retry)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retry):
			}
			retry = min(retry*2, m.retryMax)
			continue
		}
		retry = m.retryMin
		if err := m.Refresh(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("membership refresh failed", "error", err)
		}
		m.consume(ctx, events)
		if ctx.Err() != nil {
			return nil
		}
		slog.Warn("membership subscription closed, resubscribing")
	}
}

// consume refreshes on events until the channel closes or ctx ends.
func (m *MembershipIndex) consume(ctx context.Context, events <-chan ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			drain(events)
			if err := m.Refresh(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("membership refresh failed", "error", err)
			}
		}
	}
}

// drain discards queued events; one refresh covers all of them.
func drain(events <-chan ChangeEvent) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
