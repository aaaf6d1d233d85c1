package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/prism/internal/config"
	"github.com/your-org/prism/internal/engine"
	"github.com/your-org/prism/internal/models"
)

// PostgresStore is the catalog backing both engine pipelines plus the
// write paths used by the upload handler and the ingest worker. It
// implements engine.Catalog and engine.VectorSearcher.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var (
	_ engine.Catalog        = (*PostgresStore)(nil)
	_ engine.VectorSearcher = (*PostgresStore)(nil)
)

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// unavailable tags a store-level failure with the engine's error kind so
// callers can classify it with errors.Is.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, engine.ErrCatalogUnavailable, err)
}

// --- Albums ---

func (s *PostgresStore) CreateAlbum(ctx context.Context, slug, name string) (*models.Album, error) {
	a := &models.Album{
		ID:   uuid.New(),
		Slug: slug,
		Name: name,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO albums (id, slug, name) VALUES ($1, $2, $3) RETURNING created_at, updated_at`,
		a.ID, a.Slug, a.Name,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAlbums(ctx context.Context) ([]models.Album, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, slug, name, created_at, updated_at, deleted_at
		 FROM albums WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, unavailable("list albums", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		var a models.Album
		if err := rows.Scan(&a.ID, &a.Slug, &a.Name, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt); err != nil {
			return nil, unavailable("scan album", err)
		}
		albums = append(albums, a)
	}
	return albums, nil
}

// AlbumByID returns the active album or engine.ErrAlbumNotFound. A
// soft-deleted album is indistinguishable from an absent one by design.
func (s *PostgresStore) AlbumByID(ctx context.Context, id uuid.UUID) (*models.Album, error) {
	a := &models.Album{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, slug, name, created_at, updated_at, deleted_at
		 FROM albums WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&a.ID, &a.Slug, &a.Name, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, engine.ErrAlbumNotFound
		}
		return nil, unavailable("album by id", err)
	}
	return a, nil
}

func (s *PostgresStore) AlbumBySlug(ctx context.Context, slug string) (*models.Album, error) {
	a := &models.Album{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, slug, name, created_at, updated_at, deleted_at
		 FROM albums WHERE slug = $1 AND deleted_at IS NULL`, slug,
	).Scan(&a.ID, &a.Slug, &a.Name, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, engine.ErrAlbumNotFound
		}
		return nil, unavailable("album by slug", err)
	}
	return a, nil
}

func (s *PostgresStore) DeleteAlbum(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE albums SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return unavailable("delete album", err)
	}
	if tag.RowsAffected() == 0 {
		return engine.ErrAlbumNotFound
	}
	return nil
}

// --- Photos ---

func (s *PostgresStore) CreatePhoto(ctx context.Context, p *models.Photo) error {
	p.ID = uuid.New()
	p.Status = models.PhotoStatusPending
	err := s.pool.QueryRow(ctx,
		`INSERT INTO photos (id, album_id, filename, size_bytes, content_hash, status, object_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		p.ID, p.AlbumID, p.Filename, p.SizeBytes, p.ContentHash, p.Status, p.ObjectKey,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

const photoColumns = `id, album_id, filename, size_bytes, content_hash, status, object_key, created_at, updated_at, deleted_at`

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	p := &models.Photo{}
	err := row.Scan(&p.ID, &p.AlbumID, &p.Filename, &p.SizeBytes, &p.ContentHash,
		&p.Status, &p.ObjectKey, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) GetPhoto(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	p, err := scanPhoto(s.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, unavailable("get photo", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPhotos(ctx context.Context, albumID uuid.UUID) ([]models.Photo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+photoColumns+` FROM photos
		 WHERE album_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, albumID)
	if err != nil {
		return nil, unavailable("list photos", err)
	}
	defer rows.Close()
	return collectPhotos(rows)
}

func collectPhotos(rows pgx.Rows) ([]models.Photo, error) {
	var photos []models.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, unavailable("scan photo", err)
		}
		photos = append(photos, *p)
	}
	return photos, nil
}

func (s *PostgresStore) UpdatePhotoStatus(ctx context.Context, id uuid.UUID, status models.PhotoStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE photos SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return unavailable("update photo status", err)
	}
	return nil
}

func (s *PostgresStore) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE photos SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return unavailable("delete photo", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("photo not found")
	}
	return nil
}

// PhotoByHash returns the active photo in the album with the exact content
// hash, or nil. At most one is expected per (album, hash); if the store
// holds more, the lowest id wins so repeated calls agree.
func (s *PostgresStore) PhotoByHash(ctx context.Context, albumID uuid.UUID, hash string) (*models.Photo, error) {
	p, err := scanPhoto(s.pool.QueryRow(ctx,
		`SELECT `+photoColumns+` FROM photos
		 WHERE album_id = $1 AND content_hash = $2 AND deleted_at IS NULL
		 ORDER BY id ASC LIMIT 1`, albumID, hash))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, unavailable("photo by hash", err)
	}
	return p, nil
}

func (s *PostgresStore) PhotosByNameAndSize(ctx context.Context, albumID uuid.UUID, filename string, size int64) ([]models.Photo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+photoColumns+` FROM photos
		 WHERE album_id = $1 AND filename = $2 AND size_bytes = $3 AND deleted_at IS NULL
		 ORDER BY id ASC`, albumID, filename, size)
	if err != nil {
		return nil, unavailable("photos by name and size", err)
	}
	defer rows.Close()
	return collectPhotos(rows)
}

func (s *PostgresStore) CompletedPhotosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Photo, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+photoColumns+` FROM photos
		 WHERE id = ANY($1) AND status = $2 AND deleted_at IS NULL`,
		ids, models.PhotoStatusCompleted)
	if err != nil {
		return nil, unavailable("completed photos by ids", err)
	}
	defer rows.Close()
	return collectPhotos(rows)
}

// --- Face Embeddings ---

func (s *PostgresStore) AddFaceEmbedding(ctx context.Context, fe *models.FaceEmbedding) error {
	fe.ID = uuid.New()
	vec := pgvector.NewVector(fe.Embedding)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO face_embeddings (id, photo_id, embedding, bbox, det_score)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		fe.ID, fe.PhotoID, vec, fe.BBox, fe.DetScore,
	).Scan(&fe.CreatedAt)
	if err != nil {
		return fmt.Errorf("add face embedding: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountFaces(ctx context.Context, photoID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM face_embeddings WHERE photo_id = $1`, photoID,
	).Scan(&count)
	if err != nil {
		return 0, unavailable("count faces", err)
	}
	return count, nil
}

func (s *PostgresStore) CountPhotos(ctx context.Context, albumID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM photos WHERE album_id = $1 AND deleted_at IS NULL`, albumID,
	).Scan(&count)
	if err != nil {
		return 0, unavailable("count photos", err)
	}
	return count, nil
}

// SearchEmbeddings finds stored embeddings closest to the query vector
// within one album, using pgvector cosine distance normalized to a [0,1]
// similarity. Soft-deleted photos are excluded here; status filtering
// happens during hydration.
func (s *PostgresStore) SearchEmbeddings(ctx context.Context, albumID uuid.UUID, query []float32, threshold float64, limit int) ([]engine.Candidate, error) {
	if limit <= 0 {
		limit = engine.DefaultMaxCandidates
	}
	vec := pgvector.NewVector(query)

	rows, err := s.pool.Query(ctx, `
		SELECT fe.photo_id, 1 - (fe.embedding <=> $1) AS similarity
		FROM face_embeddings fe
		JOIN photos p ON p.id = fe.photo_id
		WHERE p.album_id = $2
		  AND p.deleted_at IS NULL
		  AND 1 - (fe.embedding <=> $1) >= $3
		ORDER BY fe.embedding <=> $1
		LIMIT $4`,
		vec, albumID, threshold, limit)
	if err != nil {
		return nil, unavailable("search embeddings", err)
	}
	defer rows.Close()

	var candidates []engine.Candidate
	for rows.Next() {
		var c engine.Candidate
		if err := rows.Scan(&c.PhotoID, &c.Similarity); err != nil {
			return nil, unavailable("scan candidate", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}
