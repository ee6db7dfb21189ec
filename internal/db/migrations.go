package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		department VARCHAR(16) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_profiles_department ON profiles (department);`,
	`CREATE TABLE IF NOT EXISTS trash (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		trash_type TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		floor TEXT NOT NULL,
		room TEXT NOT NULL,
		time TIMESTAMPTZ NOT NULL,
		photo_urls JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'trash' AND column_name = 'photo_urls') THEN
			ALTER TABLE trash ADD COLUMN photo_urls JSONB NOT NULL DEFAULT '[]'::jsonb;
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_trash_user_time ON trash (user_id, time DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
