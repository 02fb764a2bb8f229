package database

import (
	"context"
	"database/sql"
	"fmt"
)

// bootstrap creates the enums and tables the service needs.  Every statement
// is idempotent so it can run on each start.
var bootstrap = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`DO $$ BEGIN
		CREATE TYPE industry_type AS ENUM ('tour', 'travel', 'logistics', 'other');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
		CREATE TYPE user_role AS ENUM ('user', 'admin', 'moderator');
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS users (
		id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		first_name        VARCHAR(50)  NOT NULL,
		last_name         VARCHAR(50)  NOT NULL,
		email             VARCHAR(255) NOT NULL UNIQUE,
		password          VARCHAR(255) NOT NULL,
		role              user_role     NOT NULL DEFAULT 'user',
		industry_type     industry_type NOT NULL DEFAULT 'other',
		phone             VARCHAR(20),
		is_active         BOOLEAN NOT NULL DEFAULT TRUE,
		is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		login_attempts    INTEGER NOT NULL DEFAULT 0 CHECK (login_attempts >= 0),
		lock_until        TIMESTAMPTZ,
		last_login        TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tour_profiles (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id        UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		company_name   VARCHAR(100),
		license_number VARCHAR(50),
		specialties    JSONB,
		languages      JSONB,
		certifications JSONB,
		experience     INTEGER,
		rating         DECIMAL(3,2) NOT NULL DEFAULT 0.00,
		total_tours    INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS travel_profiles (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id        UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		agency_name    VARCHAR(100),
		iata_number    VARCHAR(50),
		specialties    JSONB,
		destinations   JSONB,
		certifications JSONB,
		experience     INTEGER,
		rating         DECIMAL(3,2) NOT NULL DEFAULT 0.00,
		total_bookings INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS logistics_profiles (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id         UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		company_name    VARCHAR(100),
		license_number  VARCHAR(50),
		specialties     JSONB,
		vehicle_types   JSONB,
		coverage_areas  JSONB,
		certifications  JSONB,
		experience      INTEGER,
		rating          DECIMAL(3,2) NOT NULL DEFAULT 0.00,
		total_shipments INTEGER NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema applies the bootstrap statements in order.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range bootstrap {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
