package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

type Manager struct {
	DB *sql.DB
}

type Config struct {
	ConnectionString string
	Host             string
	Port             string
	User             string
	Password         string
	DBName           string
}

func NewManager(cfg Config) (*Manager, error) {
	var connectionString string

	if cfg.ConnectionString != "" {
		connectionString = cfg.ConnectionString
	} else {
		connectionString = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
		)
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database")

	manager := &Manager{DB: db}

	if err := manager.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return manager, nil
}

func (m *Manager) runMigrations() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_google_account BOOLEAN NOT NULL DEFAULT FALSE,
			otp VARCHAR(6),
			otp_purpose VARCHAR(12),
			otp_expires_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS news_articles (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			summary TEXT,
			url TEXT,
			image TEXT,
			source TEXT,
			pub_date TIMESTAMP WITH TIME ZONE,
			category TEXT NOT NULL,
			country TEXT,
			fetched_at DATE NOT NULL DEFAULT CURRENT_DATE
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_news_articles_url
			ON news_articles(url) WHERE url IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_news_articles_title_category
			ON news_articles(title, category) WHERE url IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_news_articles_category_fetched
			ON news_articles(category, fetched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_news_articles_pub_date
			ON news_articles(pub_date DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username_lower
			ON users(LOWER(username))`,
	}

	for i, migration := range migrations {
		if _, err := m.DB.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func (m *Manager) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

func (m *Manager) GetDB() *sql.DB {
	return m.DB
}
