// Package session persists the signed-in user locally.
//
// Exactly one user record is stored at a time, under fixed keys, in a
// SQLite file — the durable key-value store for this client. Lifecycle:
// written at sign-in/sign-up, read at app start to restore the session,
// cleared at sign-out. There is no schema versioning; the value is the
// serialized user record.
//
// SEALED AT REST:
// The stored record carries the user's credentials, so it is encrypted with
// XChaCha20-Poly1305 under a key generated once per install and kept next
// to the database with owner-only permissions. This protects the record
// from casual reads of a backup or a shared disk, not from an attacker who
// owns the device — the key sits beside the data. Losing the key file just
// signs the user out.
package session

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	_ "modernc.org/sqlite"

	"github.com/sakif/moodtrack/internal/model"
)

// Fixed storage keys, carried over from the app's original local store.
const (
	keyUser   = "user"
	keyUserID = "userId"
)

// Store is the local session store. Safe for concurrent use (database/sql
// pools underneath).
type Store struct {
	conn *sql.DB
	aead cipher.AEAD
}

// New opens (or creates) the session database at dbPath and loads or
// generates the sealing key. For ":memory:" an ephemeral key is used —
// handy in tests, useless for persistence, which is the point.
func New(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("session: opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: pinging database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: creating schema: %w", err)
	}

	key, err := loadOrCreateKey(dbPath)
	if err != nil {
		conn.Close()
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("session: initializing cipher: %w", err)
	}

	return &Store{conn: conn, aead: aead}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// CurrentUser returns the stored user, or (nil, nil) when nobody is signed
// in. A record that fails to unseal or decode is treated as signed out —
// the only recovery is signing in again, so there is nothing useful to
// return as an error.
func (s *Store) CurrentUser(ctx context.Context) (*model.User, error) {
	var sealed []byte
	err := s.conn.QueryRowContext(ctx,
		"SELECT value FROM session WHERE key = ?", keyUser,
	).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: reading user: %w", err)
	}

	plain, err := s.unseal(sealed)
	if err != nil {
		return nil, nil
	}
	var user model.User
	if err := json.Unmarshal(plain, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// CurrentUserID returns the stored user id, or "" when signed out. The id
// is kept unsealed under its own key for callers that only need identity.
func (s *Store) CurrentUserID(ctx context.Context) (string, error) {
	var id []byte
	err := s.conn.QueryRowContext(ctx,
		"SELECT value FROM session WHERE key = ?", keyUserID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: reading user id: %w", err)
	}
	return string(id), nil
}

// SetCurrentUser replaces the stored session with the given user.
func (s *Store) SetCurrentUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return fmt.Errorf("session: user must not be nil")
	}

	plain, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encoding user: %w", err)
	}
	sealed, err := s.seal(plain)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: starting transaction: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := tx.ExecContext(ctx, upsert, keyUser, sealed); err != nil {
		return fmt.Errorf("session: storing user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, keyUserID, []byte(user.ID)); err != nil {
		return fmt.Errorf("session: storing user id: %w", err)
	}
	return tx.Commit()
}

// Clear removes the stored session. Clearing an already-empty store is a
// no-op, not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx,
		"DELETE FROM session WHERE key IN (?, ?)", keyUser, keyUserID,
	); err != nil {
		return fmt.Errorf("session: clearing: %w", err)
	}
	return nil
}

func (s *Store) seal(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("session: generating nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plain, nil), nil
}

func (s *Store) unseal(sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize() {
		return nil, fmt.Errorf("session: sealed value too short")
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	return s.aead.Open(nil, nonce, ciphertext, nil)
}

// loadOrCreateKey reads the sealing key stored next to the database,
// generating it on first run. ":memory:" databases get an ephemeral key.
func loadOrCreateKey(dbPath string) ([]byte, error) {
	if dbPath == ":memory:" {
		key := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("session: generating key: %w", err)
		}
		return key, nil
	}

	keyPath := dbPath + ".key"
	if key, err := os.ReadFile(keyPath); err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("session: key file %s is corrupt", keyPath)
		}
		return key, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("session: reading key file: %w", err)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("session: generating key: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("session: writing key file: %w", err)
	}
	return key, nil
}
