package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store and VideoStore.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const playlistColumns = `id, title, description, owner_id, is_public, tags, category, shared_with, created_at, updated_at`

const videoColumns = `id, title, url, description, thumbnail_url, duration, playlist_id, created_at`

func (s *PostgresStore) CreatePlaylist(ctx context.Context, p Playlist) (Playlist, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO playlists (title, description, owner_id, is_public, tags, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+playlistColumns,
		p.Title, p.Description, p.OwnerID, p.IsPublic, nonNil(p.Tags), p.Category,
	)
	created, err := scanPlaylist(row)
	if err != nil {
		return Playlist{}, err
	}
	created.Videos = []Video{}
	return created, nil
}

func (s *PostgresStore) FindPlaylist(ctx context.Context, id string) (Playlist, error) {
	row := s.db.QueryRow(ctx, `SELECT `+playlistColumns+` FROM playlists WHERE id = $1`, id)
	p, err := scanPlaylist(row)
	if err != nil {
		return Playlist{}, err
	}
	list, err := s.attachVideos(ctx, []Playlist{p})
	if err != nil {
		return Playlist{}, err
	}
	return list[0], nil
}

func (s *PostgresStore) ListAccessible(ctx context.Context, userID, email string) ([]Playlist, error) {
	return s.queryPlaylists(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE owner_id = $1
		   OR is_public
		   OR ($2 <> '' AND $2 = ANY(shared_with))
		ORDER BY created_at DESC, id`, userID, email)
}

func (s *PostgresStore) FilterPlaylists(ctx context.Context, userID string, c FilterCriteria) ([]Playlist, error) {
	conds := []string{"(owner_id = $1 OR is_public)"}
	args := []any{userID}

	if c.Category != "" {
		args = append(args, c.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	for _, tag := range c.Tags {
		args = append(args, tag)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE strpos(t.tag, $%d) > 0)", len(args)))
	}

	sql := `SELECT ` + playlistColumns + ` FROM playlists WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id`
	return s.queryPlaylists(ctx, sql, args...)
}

func (s *PostgresStore) UpdatePlaylist(ctx context.Context, id string, patch UpdatePlaylistInput) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE playlists SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			is_public   = COALESCE($4, is_public),
			tags        = COALESCE($5, tags),
			category    = COALESCE($6, category),
			updated_at  = now()
		WHERE id = $1`,
		id, patch.Title, patch.Description, patch.IsPublic, patch.Tags, patch.Category,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func (s *PostgresStore) DeletePlaylist(ctx context.Context, id string) error {
	// videos.playlist_id is ON DELETE CASCADE.
	tag, err := s.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// AppendSharedWith is a single UPDATE so concurrent shares on the same
// playlist serialize on the row lock instead of overwriting each other.
func (s *PostgresStore) AppendSharedWith(ctx context.Context, id string, emails []string) ([]string, error) {
	var shared []string
	err := s.db.QueryRow(ctx, `
		UPDATE playlists
		SET shared_with = shared_with || ARRAY(
				SELECT n.email
				FROM unnest($2::text[]) WITH ORDINALITY AS n(email, ord)
				WHERE NOT (n.email = ANY(shared_with))
				ORDER BY n.ord
			),
			updated_at = now()
		WHERE id = $1
		RETURNING shared_with`,
		id, nonNil(emails),
	).Scan(&shared)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return nonNil(shared), nil
}

func (s *PostgresStore) CreateVideo(ctx context.Context, v Video) (Video, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO videos (playlist_id, title, url, description, thumbnail_url, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+videoColumns,
		v.PlaylistID, v.Title, v.URL, v.Description, v.ThumbnailURL, v.Duration,
	)
	created, err := scanVideo(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Video{}, ErrPlaylistNotFound
		}
		return Video{}, err
	}
	return created, nil
}

func (s *PostgresStore) FindVideo(ctx context.Context, playlistID, videoID string) (Video, error) {
	row := s.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1 AND playlist_id = $2`,
		videoID, playlistID)
	return scanVideo(row)
}

func (s *PostgresStore) DeleteVideo(ctx context.Context, playlistID, videoID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM videos WHERE id = $1 AND playlist_id = $2`, videoID, playlistID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVideoNotFound
	}
	return nil
}

func (s *PostgresStore) queryPlaylists(ctx context.Context, sql string, args ...any) ([]Playlist, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.attachVideos(ctx, playlists)
}

// attachVideos loads the videos of every playlist in one query.
func (s *PostgresStore) attachVideos(ctx context.Context, playlists []Playlist) ([]Playlist, error) {
	if len(playlists) == 0 {
		return playlists, nil
	}

	ids := make([]string, len(playlists))
	index := make(map[string]int, len(playlists))
	for i := range playlists {
		ids[i] = playlists[i].ID
		index[playlists[i].ID] = i
		playlists[i].Videos = []Video{}
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+videoColumns+`
		FROM videos
		WHERE playlist_id = ANY($1::uuid[])
		ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[v.PlaylistID]; ok {
			playlists[i].Videos = append(playlists[i].Videos, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return playlists, nil
}

func scanPlaylist(row pgx.Row) (Playlist, error) {
	var p Playlist
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.OwnerID,
		&p.IsPublic,
		&p.Tags,
		&p.Category,
		&p.SharedWith,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Playlist{}, ErrPlaylistNotFound
		}
		return Playlist{}, err
	}
	p.Tags = nonNil(p.Tags)
	p.SharedWith = nonNil(p.SharedWith)
	return p, nil
}

func scanVideo(row pgx.Row) (Video, error) {
	var v Video
	err := row.Scan(
		&v.ID,
		&v.Title,
		&v.URL,
		&v.Description,
		&v.ThumbnailURL,
		&v.Duration,
		&v.PlaylistID,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Video{}, ErrVideoNotFound
		}
		return Video{}, err
	}
	return v, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
