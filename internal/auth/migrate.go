package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func AutoMigrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		return err
	}
	_, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS users (
          id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          username   TEXT UNIQUE NOT NULL,
          email      TEXT UNIQUE NOT NULL,
          password   TEXT NOT NULL,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
  `)
	return err
}
