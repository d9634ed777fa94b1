package playlist

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

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id          uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          title       TEXT NOT NULL,
          description TEXT NOT NULL DEFAULT '',
          owner_id    TEXT NOT NULL,
          is_public   BOOLEAN NOT NULL DEFAULT FALSE,
          tags        TEXT[] NOT NULL DEFAULT '{}',
          category    TEXT NOT NULL DEFAULT '',
          shared_with TEXT[] NOT NULL DEFAULT '{}',
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
          updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS videos (
          id            uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          playlist_id   uuid NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
          title         TEXT NOT NULL,
          url           TEXT NOT NULL,
          description   TEXT NOT NULL DEFAULT '',
          thumbnail_url TEXT NOT NULL DEFAULT '',
          duration      TEXT NOT NULL DEFAULT '',
          created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		return err
	}

	_, err := db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_playlists_owner ON playlists(owner_id);
      CREATE INDEX IF NOT EXISTS idx_playlists_public ON playlists(is_public) WHERE is_public;
      CREATE INDEX IF NOT EXISTS idx_playlists_shared_with ON playlists USING GIN (shared_with);
      CREATE INDEX IF NOT EXISTS idx_videos_playlist ON videos(playlist_id);
    `)
	return err
}
