package server

import (
	"database/sql"
	"time"
)

// Store wraps the database. The schema sticks to TEXT columns and $n
// placeholders so the same statements run on both sqlite and postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an open database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema if it does not exist
func (s *Store) Migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			picture TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			token TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			doc TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_user ON refresh_tokens (user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// User is an account row
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	PhoneNumber  string
	Picture      string
}

// CreateUser inserts an account
func (s *Store) CreateUser(u User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, password_hash, name, phone_number, picture, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.PhoneNumber, u.Picture,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// UserByEmail looks an account up by email
func (s *Store) UserByEmail(email string) (User, error) {
	var u User
	err := s.db.QueryRow(
		`SELECT id, email, password_hash, name, phone_number, picture FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.PhoneNumber, &u.Picture)
	return u, err
}

// UserByID looks an account up by id
func (s *Store) UserByID(id string) (User, error) {
	var u User
	err := s.db.QueryRow(
		`SELECT id, email, password_hash, name, phone_number, picture FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.PhoneNumber, &u.Picture)
	return u, err
}

// UpdateUserProfile updates the mutable profile fields; empty values
// leave the current ones in place
func (s *Store) UpdateUserProfile(id, name, phone, picture string) error {
	_, err := s.db.Exec(
		`UPDATE users SET
			name = CASE WHEN $2 = '' THEN name ELSE $2 END,
			phone_number = CASE WHEN $3 = '' THEN phone_number ELSE $3 END,
			picture = CASE WHEN $4 = '' THEN picture ELSE $4 END
		 WHERE id = $1`,
		id, name, phone, picture,
	)
	return err
}

// DeleteUser removes an account together with its tasks and tokens
func (s *Store) DeleteUser(id string) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM refresh_tokens WHERE user_id = $1`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	return err
}

// SaveRefreshToken stores a refresh token
func (s *Store) SaveRefreshToken(token, userID string, expiresAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO refresh_tokens (token, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		token, userID, expiresAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ConsumeRefreshToken deletes a refresh token and returns its owner.
// Expired or unknown tokens return sql.ErrNoRows.
func (s *Store) ConsumeRefreshToken(token string) (string, error) {
	var userID, expiresAt string
	err := s.db.QueryRow(
		`SELECT user_id, expires_at FROM refresh_tokens WHERE token = $1`,
		token,
	).Scan(&userID, &expiresAt)
	if err != nil {
		return "", err
	}

	if _, err := s.db.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return "", err
	}

	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || time.Now().After(exp) {
		return "", sql.ErrNoRows
	}
	return userID, nil
}

// TaskDocs returns a user's task documents in creation order
func (s *Store) TaskDocs(userID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT doc FROM tasks WHERE user_id = $1 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// TaskDoc returns one task document owned by the user
func (s *Store) TaskDoc(userID, taskID string) (string, error) {
	var doc string
	err := s.db.QueryRow(
		`SELECT doc FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	).Scan(&doc)
	return doc, err
}

// InsertTask stores a new task document
func (s *Store) InsertTask(userID, taskID, doc string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, user_id, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		taskID, userID, doc, now, now,
	)
	return err
}

// UpdateTaskDoc replaces a task document owned by the user
func (s *Store) UpdateTaskDoc(userID, taskID, doc string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE tasks SET doc = $3, updated_at = $4 WHERE id = $1 AND user_id = $2`,
		taskID, userID, doc, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteTask removes a task owned by the user
func (s *Store) DeleteTask(userID, taskID string) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
