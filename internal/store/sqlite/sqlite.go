package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/store"
)

var _ store.Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS snapshot_messages (
	room   TEXT    NOT NULL,
	seq    INTEGER NOT NULL,
	ts     INTEGER NOT NULL,
	sender TEXT    NOT NULL,
	text   TEXT    NOT NULL,
	PRIMARY KEY (room, seq)
);
`

// SQLiteStore keeps the latest snapshot in two tables. Each save replaces the
// previous one inside a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup opens the database and runs setup instead of the default schema.
// Useful for tests that need a particular starting state.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps ":memory:" alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the last saved snapshot. found is false until the first save.
func (s *SQLiteStore) Load(ctx context.Context) (map[string][]core.Message, bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT id FROM snapshot_meta WHERE id = 1`).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query snapshot meta: %w", err)
	}

	query := `
		SELECT room, ts, sender, text
		FROM snapshot_messages
		ORDER BY room, seq
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("query snapshot messages: %w", err)
	}
	defer rows.Close()

	rooms := make(map[string][]core.Message)
	for rows.Next() {
		var room string
		var msg core.Message
		if err := rows.Scan(&room, &msg.Timestamp, &msg.Sender, &msg.Text); err != nil {
			return nil, false, fmt.Errorf("%w: scan message: %w", core.ErrCorruptSnapshot, err)
		}
		rooms[room] = append(rooms[room], msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate snapshot messages: %w", err)
	}

	return rooms, true, nil
}

// Save replaces the stored snapshot with rooms.
func (s *SQLiteStore) Save(ctx context.Context, rooms map[string][]core.Message) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM snapshot_messages`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_messages (room, seq, ts, sender, text)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for room, msgs := range rooms {
		for seq, msg := range msgs {
			if _, err = stmt.ExecContext(ctx, room, seq, msg.Timestamp, msg.Sender, msg.Text); err != nil {
				return fmt.Errorf("insert message: %w", err)
			}
		}
	}

	query := `
		INSERT INTO snapshot_meta (id, saved_at) VALUES (1, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at
	`
	if _, err = tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("update snapshot meta: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
