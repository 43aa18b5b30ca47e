package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alpnix/HackAtDavidson/config"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

// fakeMembers is a mutable busy set standing in for the project_members join.
type fakeMembers struct {
	mu    sync.Mutex
	ids   []uint32
	loads int
	fail  bool
}

func (f *fakeMembers) set(ids ...uint32) {
	f.mu.Lock()
	f.ids = ids
	f.mu.Unlock()
}

func (f *fakeMembers) load(ctx context.Context) ([]uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.fail {
		return nil, errors.New("db down")
	}
	return append([]uint32(nil), f.ids...), nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestMembershipRefreshIsPureRecompute(t *testing.T) {
	members := &fakeMembers{}
	members.set(3, 1, 3, 2)
	idx := NewMembershipIndex(members.load, NewLocalNotifier())

	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := idx.Snapshot()
	if !reflect.DeepEqual(first.IDs, []uint32{1, 2, 3}) {
		t.Errorf("IDs = %v", first.IDs)
	}
	if err := idx.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	second := idx.Snapshot()
	if !reflect.DeepEqual(first.IDs, second.IDs) {
		t.Errorf("refresh is not idempotent: %v vs %v", first.IDs, second.IDs)
	}
	if second.Version != first.Version+1 {
		t.Errorf("version %d -> %d", first.Version, second.Version)
	}

	members.set(2)
	_ = idx.Refresh(context.Background())
	if idx.IsBusy(1) || !idx.IsBusy(2) {
		t.Error("removed member still busy or remaining member free")
	}
}

func TestMembershipRefreshErrorKeepsPreviousSet(t *testing.T) {
	members := &fakeMembers{}
	members.set(5)
	idx := NewMembershipIndex(members.load, NewLocalNotifier())
	_ = idx.Refresh(context.Background())

	members.mu.Lock()
	members.fail = true
	members.mu.Unlock()
	if err := idx.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !idx.IsBusy(5) {
		t.Error("failed refresh must leave the previous set in place")
	}
}

func TestMembershipRunRecomputesOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := &fakeMembers{}
	notifier := NewLocalNotifier()
	idx := NewMembershipIndex(members.load, notifier)

	done := make(chan error, 1)
	go func() { done <- idx.Run(ctx) }()
	waitFor(t, func() bool { return idx.Snapshot().Version >= 1 })

	if idx.IsBusy(42) {
		t.Fatal("42 busy before any membership")
	}

	// Another instance adds registration 42 to a project and announces it.
	members.set(42)
	idx.Notify(ctx, OpInsert, 9)
	waitFor(t, func() bool { return idx.IsBusy(42) })

	members.set()
	idx.Notify(ctx, OpDelete, 9)
	waitFor(t, func() bool { return !idx.IsBusy(42) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

// flakyNotifier fails the first failures Subscribe calls, then delegates.
type flakyNotifier struct {
	*LocalNotifier
	mu       sync.Mutex
	failures int
	attempts int
}

func (n *flakyNotifier) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	n.mu.Lock()
	n.attempts++
	fail := n.attempts <= n.failures
	n.mu.Unlock()
	if fail {
		return nil, errors.New("redis unreachable")
	}
	return n.LocalNotifier.Subscribe(ctx)
}

func (n *flakyNotifier) subscribed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attempts > n.failures
}

func TestMembershipRunRefreshesWhileSubscribeFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := &fakeMembers{}
	members.set(4)
	notifier := &flakyNotifier{LocalNotifier: NewLocalNotifier(), failures: 1 << 30}
	idx := NewMembershipIndex(members.load, notifier)
	idx.retryMin, idx.retryMax = time.Millisecond, 2*time.Millisecond

	done := make(chan error, 1)
	go func() { done <- idx.Run(ctx) }()
	waitFor(t, func() bool { return idx.IsBusy(4) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop while retrying")
	}
}

func TestMembershipRunRetriesSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := &fakeMembers{}
	notifier := &flakyNotifier{LocalNotifier: NewLocalNotifier(), failures: 3}
	idx := NewMembershipIndex(members.load, notifier)
	idx.retryMin, idx.retryMax = time.Millisecond, 4*time.Millisecond

	go func() { _ = idx.Run(ctx) }()
	waitFor(t, notifier.subscribed)

	// Once subscribed, published changes reach the index.
	members.set(8)
	waitFor(t, func() bool {
		idx.Notify(ctx, OpInsert, 1)
		return idx.IsBusy(8)
	})
}

func TestMembershipWatchReceivesLatestSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	members := &fakeMembers{}
	idx := NewMembershipIndex(members.load, NewLocalNotifier())
	updates := idx.Watch(ctx)

	members.set(1)
	_ = idx.Refresh(ctx)
	members.set(1, 2)
	_ = idx.Refresh(ctx)

	select {
	case snap := <-updates:
		if !reflect.DeepEqual(snap.IDs, []uint32{1, 2}) {
			t.Errorf("slow watcher should see the latest snapshot, got %v", snap.IDs)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	waitFor(t, func() bool { return closed(updates) })
}

func TestLocalNotifierFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	n := NewLocalNotifier()
	a, _ := n.Subscribe(ctx)
	b, _ := n.Subscribe(ctx)

	_ = n.Publish(ctx, ChangeEvent{Op: OpInsert, ProjectID: 1})
	for _, ch := range []<-chan ChangeEvent{a, b} {
		select {
		case ev := <-ch:
			if ev.ProjectID != 1 {
				t.Errorf("event = %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed event")
		}
	}

	cancel()
	waitFor(t, func() bool { return closed(a) })
}

// closed reports whether ch has been closed, without blocking.
func closed[T any](ch <-chan T) bool {
	select {
	case _, open := <-ch:
		return !open
	default:
		return false
	}
}

func TestNewNotifierSelection(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.Config
		rdb    *redis.Client
		want   string
		wantOK bool
	}{
		{"auto on postgres", config.Config{DBDriver: "postgres", MembershipNotifier: "auto"}, nil, "*services.PostgresNotifier", true},
		{"auto on mysql without redis", config.Config{DBDriver: "mysql", MembershipNotifier: "auto"}, nil, "*services.LocalNotifier", true},
		{"auto on mysql with redis", config.Config{DBDriver: "mysql", MembershipNotifier: "auto"}, redis.NewClient(&redis.Options{Addr: "localhost:0"}), "*services.RedisNotifier", true},
		{"explicit local", config.Config{DBDriver: "postgres", MembershipNotifier: "local"}, nil, "*services.LocalNotifier", true},
		{"redis without client", config.Config{DBDriver: "mysql", MembershipNotifier: "redis"}, nil, "", false},
		{"unknown", config.Config{MembershipNotifier: "kafka"}, nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNotifier(&tt.cfg, nil, tt.rdb)
			if (err == nil) != tt.wantOK {
				t.Fatalf("err = %v", err)
			}
			if tt.wantOK && fmt.Sprintf("%T", n) != tt.want {
				t.Errorf("notifier = %T, want %s", n, tt.want)
			}
		})
	}
}

func TestDecodeNotification(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	ev := decodeNotification(&pq.Notification{
		Channel: MembershipChannel,
		Extra:   `{"table":"project_members","op":"DELETE","at":"2026-10-01T08:59:59.123456+00:00"}`,
	}, now)
	if ev.Table != "project_members" || ev.Op != OpDelete || ev.At.Second() != 59 {
		t.Errorf("trigger payload = %+v", ev)
	}

	if ev := decodeNotification(nil, now); ev.Op != OpUpdate || !ev.At.Equal(now) {
		t.Errorf("reconnect marker = %+v", ev)
	}
	if ev := decodeNotification(&pq.Notification{Extra: "not json"}, now); ev.Op != OpUpdate || !ev.At.Equal(now) {
		t.Errorf("garbage payload = %+v", ev)
	}
}
