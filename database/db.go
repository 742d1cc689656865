package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Aniket8745/real-estate-api/config"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func InitDB(cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}

	logger.Info("Database connection established")
	return db, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(255) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			avatar TEXT NOT NULL DEFAULT 'https://cdn-icons-png.flaticon.com/512/149/149071.png',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS listings (
			id SERIAL PRIMARY KEY,
			user_ref INTEGER NOT NULL REFERENCES users(id),
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			address TEXT NOT NULL,
			regular_price BIGINT NOT NULL,
			discount_price BIGINT NOT NULL DEFAULT 0,
			bathrooms INTEGER NOT NULL,
			bedrooms INTEGER NOT NULL,
			furnished BOOLEAN NOT NULL DEFAULT FALSE,
			parking BOOLEAN NOT NULL DEFAULT FALSE,
			type VARCHAR(10) NOT NULL CHECK (type IN ('rent', 'sale')),
			offer BOOLEAN NOT NULL DEFAULT FALSE,
			image_urls TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id SERIAL PRIMARY KEY,
			listing_id INTEGER NOT NULL REFERENCES listings(id),
			user_id INTEGER NOT NULL REFERENCES users(id),
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			provider_order_id VARCHAR(64) UNIQUE NOT NULL,
			listing_id INTEGER NOT NULL REFERENCES listings(id),
			user_id INTEGER NOT NULL REFERENCES users(id),
			price BIGINT NOT NULL,
			payment_status VARCHAR(10) NOT NULL DEFAULT 'Pending'
				CHECK (payment_status IN ('Pending', 'Completed', 'Failed')),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_user_ref ON listings(user_ref);`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_listing_id ON feedback(listing_id);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_listing_id ON orders(listing_id);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
