// File path: internal/catalog/store.go

// Package catalog persists the built vector index and its message metadata as
// a single SQLite database. The two tables are written in one transaction and
// loaded together; they must never be served inconsistently.
package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/november7/memberbot/internal/common"
	"github.com/november7/memberbot/internal/corpus"
	"github.com/november7/memberbot/internal/vectorindex"
)

// ErrCorruptIndex indicates that the persisted vectors and message metadata
// disagree (row counts, ordinals, or dimensions). Startup must treat this as
// fatal rather than serve a torn pair.
var ErrCorruptIndex = errors.New("corrupt index: vectors and metadata out of sync")

// Store wraps a pooled sqlx.DB connection to the SQLite catalog.
type Store struct {
	db *sqlx.DB
}

// Open constructs a Store backed by the SQLite database at the provided path,
// migrating the schema on first use.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", abs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for i, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS messages (
		ordinal INTEGER PRIMARY KEY,
		text TEXT NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		timestamp TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS embeddings (
		ordinal INTEGER PRIMARY KEY,
		dim INTEGER NOT NULL,
		vector BLOB NOT NULL
	);`,
}

type messageRow struct {
	Ordinal   int    `db:"ordinal"`
	Text      string `db:"text"`
	UserName  string `db:"user_name"`
	Timestamp string `db:"timestamp"`
}

type embeddingRow struct {
	Ordinal int    `db:"ordinal"`
	Dim     int    `db:"dim"`
	Vector  []byte `db:"vector"`
}

// Save replaces the persisted snapshot with the given index and metadata in a
// single transaction. Positions in the messages slice are the ordinals.
func (s *Store) Save(ctx context.Context, index *vectorindex.FlatIndex, messages []corpus.Message) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	if index == nil {
		return errors.New("index required")
	}
	if index.Len() != len(messages) {
		return fmt.Errorf("%w: %d vectors, %d messages", ErrCorruptIndex, index.Len(), len(messages))
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM embeddings`); err != nil {
		return fmt.Errorf("clear embeddings: %w", err)
	}
	for ordinal, msg := range messages {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (ordinal, text, user_name, timestamp) VALUES (?, ?, ?, ?)`,
			ordinal, msg.Text, msg.UserName, msg.Timestamp); err != nil {
			return fmt.Errorf("insert message %d: %w", ordinal, err)
		}
	}
	for ordinal, vec := range index.Vectors() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO embeddings (ordinal, dim, vector) VALUES (?, ?, ?)`,
			ordinal, len(vec), encodeVector(vec)); err != nil {
			return fmt.Errorf("insert embedding %d: %w", ordinal, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	common.Logger().Info("catalog: snapshot saved", "messages", len(messages), "dim", index.Dim())
	return nil
}

// Load reads the persisted snapshot wholesale. A missing or empty catalog
// returns (nil, nil, nil); any disagreement between the two tables returns
// ErrCorruptIndex.
func (s *Store) Load(ctx context.Context) (*vectorindex.FlatIndex, []corpus.Message, error) {
	if s == nil || s.db == nil {
		return nil, nil, errors.New("catalog store not initialised")
	}
	msgRows := []messageRow{}
	if err := s.db.SelectContext(ctx, &msgRows, `SELECT * FROM messages ORDER BY ordinal`); err != nil {
		return nil, nil, fmt.Errorf("select messages: %w", err)
	}
	embRows := []embeddingRow{}
	if err := s.db.SelectContext(ctx, &embRows, `SELECT * FROM embeddings ORDER BY ordinal`); err != nil {
		return nil, nil, fmt.Errorf("select embeddings: %w", err)
	}
	if len(msgRows) == 0 && len(embRows) == 0 {
		return nil, nil, nil
	}
	if len(msgRows) != len(embRows) {
		return nil, nil, fmt.Errorf("%w: %d messages, %d embeddings", ErrCorruptIndex, len(msgRows), len(embRows))
	}
	messages := make([]corpus.Message, len(msgRows))
	vectors := make([][]float32, len(embRows))
	dim := embRows[0].Dim
	for i := range msgRows {
		if msgRows[i].Ordinal != i || embRows[i].Ordinal != i {
			return nil, nil, fmt.Errorf("%w: ordinals not dense at position %d", ErrCorruptIndex, i)
		}
		if embRows[i].Dim != dim {
			return nil, nil, fmt.Errorf("%w: dimension %d at ordinal %d, want %d", ErrCorruptIndex, embRows[i].Dim, i, dim)
		}
		vec, err := decodeVector(embRows[i].Vector, embRows[i].Dim)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: ordinal %d: %v", ErrCorruptIndex, i, err)
		}
		vectors[i] = vec
		messages[i] = corpus.Message{
			Text:      msgRows[i].Text,
			UserName:  msgRows[i].UserName,
			Timestamp: msgRows[i].Timestamp,
		}
	}
	index, err := vectorindex.NewFlatIndex(vectors)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	common.Logger().Info("catalog: snapshot loaded", "messages", len(messages), "dim", index.Dim())
	return index, messages, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte, dim int) ([]float32, error) {
	if len(buf) != 4*dim {
		return nil, fmt.Errorf("blob has %d bytes, want %d", len(buf), 4*dim)
	}
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
