package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errNoServer = errors.New("dry-run pool has no server")

// dryRunPool lets DryRun sessions begin and commit transactions without dialing.
// It never implements Commit itself, so gorm treats it as a pool, not a tx.
type dryRunPool struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (p *dryRunPool) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errNoServer
}

func (p *dryRunPool) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoServer
}

func (p *dryRunPool) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoServer
}

func (p *dryRunPool) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func (p *dryRunPool) BeginTx(context.Context, *sql.TxOptions) (gorm.ConnPool, error) {
	return &dryRunTx{pool: p}, nil
}

func (p *dryRunPool) counts() (commits, rollbacks int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commits, p.rollbacks
}

type dryRunTx struct {
	pool *dryRunPool
}

func (t *dryRunTx) PrepareContext(ctx context.Context, q string) (*sql.Stmt, error) {
	return t.pool.PrepareContext(ctx, q)
}

func (t *dryRunTx) ExecContext(ctx context.Context, q string, args ...interface{}) (sql.Result, error) {
	return t.pool.ExecContext(ctx, q, args...)
}

func (t *dryRunTx) QueryContext(ctx context.Context, q string, args ...interface{}) (*sql.Rows, error) {
	return t.pool.QueryContext(ctx, q, args...)
}

func (t *dryRunTx) QueryRowContext(ctx context.Context, q string, args ...interface{}) *sql.Row {
	return t.pool.QueryRowContext(ctx, q, args...)
}

func (t *dryRunTx) Commit() error {
	t.pool.mu.Lock()
	t.pool.commits++
	t.pool.mu.Unlock()
	return nil
}

func (t *dryRunTx) Rollback() error {
	t.pool.mu.Lock()
	t.pool.rollbacks++
	t.pool.mu.Unlock()
	return nil
}

// dryRunDB builds statements without a server so generated SQL can be asserted.
func dryRunDB(t *testing.T) *gorm.DB {
	db, _ := dryRunDBWithPool(t)
	return db
}

func dryRunDBWithPool(t *testing.T) (*gorm.DB, *dryRunPool) {
	t.Helper()
	pool := &dryRunPool{}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: pool}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db, pool
}

// onQuery calls fill after every dry-run SELECT whose SQL contains match, so
// tests can stand rows in for the server. Register once per match.
func onQuery(t *testing.T, db *gorm.DB, match string, fill func(tx *gorm.DB)) {
	t.Helper()
	err := db.Callback().Query().After("gorm:query").Register("test:rows:"+match, func(tx *gorm.DB) {
		if strings.Contains(tx.Statement.SQL.String(), match) {
			fill(tx)
		}
	})
	if err != nil {
		t.Fatalf("register query stub: %v", err)
	}
}

// stubCount answers a Count query with n.
func stubCount(tx *gorm.DB, n int64) {
	if dest, ok := tx.Statement.Dest.(*int64); ok {
		*dest = n
	}
	tx.RowsAffected = n
}

// capturedSQL records every statement a callback processor builds.
type capturedSQL struct {
	mu    sync.Mutex
	stmts []string
	vars  [][]interface{}
}

func (c *capturedSQL) record(tx *gorm.DB) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stmts = append(c.stmts, tx.Statement.SQL.String())
	c.vars = append(c.vars, append([]interface{}(nil), tx.Statement.Vars...))
}

func (c *capturedSQL) matching(frag string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, s := range c.stmts {
		if strings.Contains(s, frag) {
			out = append(out, s)
		}
	}
	return out
}

func captureCreates(t *testing.T, db *gorm.DB) *capturedSQL {
	t.Helper()
	c := &capturedSQL{}
	if err := db.Callback().Create().After("gorm:create").Register("test:capture_create", c.record); err != nil {
		t.Fatal(err)
	}
	return c
}

func captureUpdates(t *testing.T, db *gorm.DB) *capturedSQL {
	t.Helper()
	c := &capturedSQL{}
	if err := db.Callback().Update().After("gorm:update").Register("test:capture_update", c.record); err != nil {
		t.Fatal(err)
	}
	return c
}
