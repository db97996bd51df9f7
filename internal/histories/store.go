package histories

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"hearth/internal/config"
	"hearth/internal/statement"
)

//go:embed schema.sql
var schemaSQL string

const (
	dateFormat      = "2006-01-02"
	timestampFormat = "2006-01-02 15:04:05"
)

// Store persists statement records in the credit_histories MySQL table.
type Store struct {
	db *sql.DB
}

// Open connects to the configured MySQL database and verifies the
// connection before returning.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if err := cfg.RequireMySQL(); err != nil {
		return nil, err
	}

	mysqlCfg := mysql.NewConfig()
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = net.JoinHostPort(cfg.MySQL.Host, strconv.Itoa(cfg.MySQL.Port))
	mysqlCfg.User = cfg.MySQL.User
	mysqlCfg.Passwd = cfg.MySQL.Password
	mysqlCfg.DBName = cfg.MySQL.Database
	mysqlCfg.ParseTime = true
	mysqlCfg.Loc = time.UTC
	mysqlCfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", mysqlCfg.Addr, err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Tests use this to run the store
// against a local database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the credit_histories table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, trimmed); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Exists reports whether any rows were already imported for the given
// service and file pair.
func (s *Store) Exists(ctx context.Context, service, file string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM credit_histories WHERE service = ? AND file = ?`,
		service,
		file,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count existing rows: %w", err)
	}
	return count > 0, nil
}

// Begin opens a batch transaction. Every record of one statement file is
// inserted inside a single batch so a failure leaves no partial file
// behind.
func (s *Store) Begin(ctx context.Context) (*Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Batch accumulates inserts for one statement file.
type Batch struct {
	tx *sql.Tx
}

// Insert adds one record to the batch. The masked card number on the
// record stays in memory only; the table does not carry it.
func (b *Batch) Insert(ctx context.Context, record statement.Record) error {
	now := time.Now().UTC().Format(timestampFormat)
	_, err := b.tx.ExecContext(
		ctx,
		`INSERT INTO credit_histories (
            used_at, store, price, payment, note,
            service, file, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UsedAt.Format(dateFormat),
		record.Store,
		record.Price,
		record.Payment,
		nullableString(record.Note),
		record.Service,
		record.File,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Commit finalizes the batch.
func (b *Batch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Rollback abandons the batch. Calling it after a successful commit is a
// no-op.
func (b *Batch) Rollback() error {
	if err := b.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback batch: %w", err)
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
