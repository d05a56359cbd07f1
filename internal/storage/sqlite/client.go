package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/gitscout/backend/internal/storage/models"
	"github.com/gitscout/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS repos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		author TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		language TEXT,
		stars TEXT,
		forks TEXT,
		url TEXT UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_repos_url ON repos(url);

	CREATE TABLE IF NOT EXISTS search_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// ToggleFavorite inserts the repo if absent, deletes it if present, and
// reports whether it is a favorite afterwards.
func (c *Client) ToggleFavorite(repo models.Repo) (bool, error) {
	exists, err := c.IsFavorite(repo.URL)
	if err != nil {
		return false, err
	}

	if exists {
		_, err := c.db.Exec("DELETE FROM repos WHERE url = ?", repo.URL)
		if err != nil {
			return false, fmt.Errorf("failed to delete favorite: %w", err)
		}
		return false, nil
	}

	_, err = c.db.Exec(
		"INSERT INTO repos (author, name, description, language, stars, forks, url) VALUES (?, ?, ?, ?, ?, ?, ?)",
		repo.Author, repo.Name, repo.Description, repo.Language, repo.Stars, repo.Forks, repo.URL,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert favorite: %w", err)
	}
	return true, nil
}

func (c *Client) IsFavorite(url string) (bool, error) {
	var id int64
	err := c.db.QueryRow("SELECT id FROM repos WHERE url = ?", url).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query favorite: %w", err)
	}
	return true, nil
}

// GetFavorites returns favorites newest first, shaped like trending entries
// so the API surface stays uniform.
func (c *Client) GetFavorites() ([]models.Repo, error) {
	rows, err := c.db.Query(`
		SELECT author, name, COALESCE(description, ''), COALESCE(language, 'Unknown'),
		       COALESCE(stars, ''), COALESCE(forks, ''), url
		FROM repos ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	var repos []models.Repo
	for rows.Next() {
		var r models.Repo
		if err := rows.Scan(&r.Author, &r.Name, &r.Description, &r.Language, &r.Stars, &r.Forks, &r.URL); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		r.Topic = "Favorite"
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

func (c *Client) RecordSearch(query string) error {
	_, err := c.db.Exec("INSERT INTO search_history (query) VALUES (?)", query)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// GetKV reads an opaque value; ok=false means the key was never written.
func (c *Client) GetKV(key string) (string, bool, error) {
	var value string
	err := c.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv %q: %w", key, err)
	}
	return value, true, nil
}

func (c *Client) SetKV(key, value string) error {
	_, err := c.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set kv %q: %w", key, err)
	}
	return nil
}

func (c *Client) HasKV(key string) (bool, error) {
	var one int
	err := c.db.QueryRow("SELECT 1 FROM kv WHERE key = ?", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check kv %q: %w", key, err)
	}
	return true, nil
}
