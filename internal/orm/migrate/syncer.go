package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/orm/codegen"
	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
)

// LedgerTable records every synced entity table
const LedgerTable = "entity_schema_syncs"

// SyncRecord is one row of the sync ledger
type SyncRecord struct {
	ID       string    `json:"id" yaml:"id"`
	Entity   string    `json:"entity" yaml:"entity"`
	Table    string    `json:"table" yaml:"table"`
	Columns  []string  `json:"columns" yaml:"columns"`
	SyncedAt time.Time `json:"synced_at" yaml:"synced_at"`
}

// Syncer creates entity tables from metadata
type Syncer struct {
	db      *sql.DB
	dialect codegen.Dialect
	ddl     *codegen.DDLGenerator
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewSyncer creates a syncer for a database of the given dialect
func NewSyncer(db *sql.DB, dialect codegen.Dialect, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		db:      db,
		dialect: dialect,
		ddl:     codegen.NewDDLGenerator(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Initialize ensures the ledger table exists
func (s *Syncer) Initialize(ctx context.Context) error {
	timestamp := "TIMESTAMPTZ"
	if s.dialect == codegen.SQLite {
		timestamp = "TIMESTAMP"
	}

	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	entity TEXT NOT NULL,
	table_name TEXT NOT NULL,
	columns TEXT NOT NULL,
	synced_at %s NOT NULL
)`, LedgerTable, timestamp)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to initialize sync ledger: %w", err)
	}
	return nil
}

// Sync creates the table of every entity and records each one in the
// ledger. Everything runs in one transaction that is rolled back on the
// first failure.
func (s *Syncer) Sync(ctx context.Context, metas []*metadata.EntityMetadata) ([]SyncRecord, error) {
	sorted := make([]*metadata.EntityMetadata, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool {
		return s.ddl.TableName(sorted[i]) < s.ddl.TableName(sorted[j])
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			s.logger.Warn("rollback failed", zap.Error(err))
		}
	}()

	insert := fmt.Sprintf("INSERT INTO %s (id, entity, table_name, columns, synced_at) VALUES (%s)",
		LedgerTable, s.placeholders(5))

	records := make([]SyncRecord, 0, len(sorted))
	for _, meta := range sorted {
		stmt, err := s.ddl.GenerateCreateTable(meta, s.dialect)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create table for %s: %w", meta.Entity(), err)
		}

		columns, err := s.ddl.Columns(meta, s.dialect)
		if err != nil {
			return nil, err
		}
		record := SyncRecord{
			ID:       s.newID(),
			Entity:   meta.Entity(),
			Table:    s.ddl.TableName(meta),
			SyncedAt: s.now(),
		}
		for _, col := range columns {
			record.Columns = append(record.Columns, col.Name)
		}

		if _, err := tx.ExecContext(ctx, insert,
			record.ID, record.Entity, record.Table, strings.Join(record.Columns, ","), record.SyncedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to record sync of %s: %w", meta.Entity(), err)
		}

		s.logger.Info("synced entity table", zap.String("entity", record.Entity), zap.String("table", record.Table))
		records = append(records, record)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sync: %w", err)
	}
	return records, nil
}

// History returns the ledger, oldest first
func (s *Syncer) History(ctx context.Context) ([]SyncRecord, error) {
	query := fmt.Sprintf("SELECT id, entity, table_name, columns, synced_at FROM %s ORDER BY synced_at ASC, entity ASC", LedgerTable)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync ledger: %w", err)
	}
	defer rows.Close()

	var records []SyncRecord
	for rows.Next() {
		var r SyncRecord
		var columns string
		if err := rows.Scan(&r.ID, &r.Entity, &r.Table, &columns, &r.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		if columns != "" {
			r.Columns = strings.Split(columns, ",")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync ledger: %w", err)
	}

	return records, nil
}

func (s *Syncer) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if s.dialect == codegen.SQLite {
			marks[i] = "?"
		} else {
			marks[i] = fmt.Sprintf("$%d", i+1)
		}
	}
	return strings.Join(marks, ", ")
}
