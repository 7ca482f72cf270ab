// Package store provides the durable credential store: a SQLite-backed users
// table mapping a unique username to its password hash, salt and surrogate id.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrUserNotFound indicates no user record matches the given username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
)

// Store wraps the SQLite database connection
type Store struct {
	conn *sql.DB
}

// Auth is the credential material needed to verify a login.
type Auth struct {
	UserID int64
	Hash   string
	Salt   string
}

// Open opens the SQLite database at the given path and initializes the
// schema if needed
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// WAL keeps reads from blocking the writer
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait and retry instead of failing immediately with SQLITE_BUSY
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &Store{conn: conn}

	if err := s.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// initSchema creates the users table if it doesn't exist
func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	salt TEXT NOT NULL
);
`
	_, err := s.conn.Exec(schema)
	return err
}

// CountByUsername returns the number of user records with the given username
// (0 or 1, the column is unique). The match is case-sensitive.
func (s *Store) CountByUsername(name string) (int, error) {
	var count int
	err := s.conn.QueryRow(
		"SELECT COUNT(username) FROM users WHERE username = ?", name,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count username: %w", err)
	}
	return count, nil
}

// Insert creates a new user record and returns its id. Returns
// ErrUsernameTaken when the username is already present.
func (s *Store) Insert(username, passwordHash, salt string) (int64, error) {
	res, err := s.conn.Exec(
		"INSERT INTO users (username, password_hash, salt) VALUES (?, ?, ?)",
		username, passwordHash, salt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted user id: %w", err)
	}
	return id, nil
}

// FetchAuth returns the credential material for a username. Returns
// ErrUserNotFound when no record matches; any other error is a store
// failure, never to be conflated with "not found".
func (s *Store) FetchAuth(username string) (*Auth, error) {
	auth := &Auth{}
	err := s.conn.QueryRow(
		"SELECT password_hash, salt, id FROM users WHERE username = ?", username,
	).Scan(&auth.Hash, &auth.Salt, &auth.UserID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch auth for %q: %w", username, err)
	}
	return auth, nil
}

// UpdateUsername changes the username of an existing user record. Returns
// ErrUsernameTaken when the new name collides with another user, and
// ErrUserNotFound when the id does not exist.
func (s *Store) UpdateUsername(userID int64, newName string) error {
	res, err := s.conn.Exec(
		"UPDATE users SET username = ? WHERE id = ?", newName, userID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to update username: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
