package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/repository"
)

const sourceColumns = `id, url, name, author, logo, description, ordered_by, handler,
       reverse_import_order, active, deleted, last_fetch_error, owner_id,
       created_at, updated_at`

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

func scanSource(rows *sql.Rows) (*entity.Source, error) {
	var source entity.Source
	if err := rows.Scan(
		&source.ID, &source.URL, &source.Name, &source.Author, &source.Logo,
		&source.Description, &source.OrderedBy, &source.Handler,
		&source.ReverseImportOrder, &source.Active, &source.Deleted,
		&source.LastFetchError, &source.OwnerID,
		&source.CreatedAt, &source.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &source, nil
}

func (repo *SourceRepo) getBy(ctx context.Context, method, where string, arg any) (*entity.Source, error) {
	defer observeQuery("source_get", time.Now())
	query := `
SELECT ` + sourceColumns + `
FROM sources
WHERE ` + where + `
LIMIT 1`
	var source entity.Source
	err := repo.db.QueryRowContext(ctx, query, arg).Scan(
		&source.ID, &source.URL, &source.Name, &source.Author, &source.Logo,
		&source.Description, &source.OrderedBy, &source.Handler,
		&source.ReverseImportOrder, &source.Active, &source.Deleted,
		&source.LastFetchError, &source.OwnerID,
		&source.CreatedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &source, nil
}

func (repo *SourceRepo) Get(ctx context.Context, id string) (*entity.Source, error) {
	return repo.getBy(ctx, "Get", "id = $1", id)
}

func (repo *SourceRepo) GetByURL(ctx context.Context, url string) (*entity.Source, error) {
	return repo.getBy(ctx, "GetByURL", "url = $1", url)
}

func (repo *SourceRepo) list(ctx context.Context, method, query string) ([]*entity.Source, error) {
	defer observeQuery("source_list", time.Now())
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 50)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", method, err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
WHERE NOT deleted
ORDER BY created_at ASC, id ASC`
	return repo.list(ctx, "List", query)
}

func (repo *SourceRepo) ListFetchable(ctx context.Context) ([]*entity.Source, error) {
	const query = `
SELECT ` + sourceColumns + `
FROM sources
WHERE active AND NOT deleted
ORDER BY created_at ASC, id ASC`
	return repo.list(ctx, "ListFetchable", query)
}

func (repo *SourceRepo) Create(ctx context.Context, source *entity.Source) error {
	defer observeQuery("source_insert", time.Now())
	const query = `
INSERT INTO sources (id, url, name, author, logo, description, ordered_by, handler,
                     reverse_import_order, active, deleted, last_fetch_error, owner_id,
                     created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := repo.db.ExecContext(ctx, query,
		source.ID, source.URL, source.Name, source.Author, source.Logo,
		source.Description, source.OrderedBy, source.Handler,
		source.ReverseImportOrder, source.Active, source.Deleted,
		source.LastFetchError, source.OwnerID,
		source.CreatedAt, source.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SourceRepo) Update(ctx context.Context, source *entity.Source) error {
	defer observeQuery("source_update", time.Now())
	const query = `
UPDATE sources SET
       url                  = $1,
       name                 = $2,
       author               = $3,
       logo                 = $4,
       description          = $5,
       ordered_by           = $6,
       handler              = $7,
       reverse_import_order = $8,
       active               = $9,
       deleted              = $10,
       last_fetch_error     = $11,
       owner_id             = $12,
       updated_at           = $13
WHERE id = $14`
	res, err := repo.db.ExecContext(ctx, query,
		source.URL, source.Name, source.Author, source.Logo,
		source.Description, source.OrderedBy, source.Handler,
		source.ReverseImportOrder, source.Active, source.Deleted,
		source.LastFetchError, source.OwnerID,
		source.UpdatedAt, source.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Delete removes the source row. Video links and filters go with it via
// ON DELETE CASCADE; the videos themselves stay.
func (repo *SourceRepo) Delete(ctx context.Context, id string) error {
	defer observeQuery("source_delete", time.Now())
	const query = `DELETE FROM sources WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *SourceRepo) LinkVideo(ctx context.Context, sourceID, videoID string) error {
	defer observeQuery("source_link_video", time.Now())
	const query = `
INSERT INTO sources_videos (source_id, video_id)
VALUES ($1, $2)
ON CONFLICT (source_id, video_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, query, sourceID, videoID); err != nil {
		return fmt.Errorf("LinkVideo: %w", err)
	}
	return nil
}

func (repo *SourceRepo) UnlinkVideo(ctx context.Context, sourceID, videoID string) error {
	defer observeQuery("source_unlink_video", time.Now())
	const query = `DELETE FROM sources_videos WHERE source_id = $1 AND video_id = $2`
	if _, err := repo.db.ExecContext(ctx, query, sourceID, videoID); err != nil {
		return fmt.Errorf("UnlinkVideo: %w", err)
	}
	return nil
}

func (repo *SourceRepo) VideoIDs(ctx context.Context, sourceID string) ([]string, error) {
	defer observeQuery("source_video_ids", time.Now())
	const query = `
SELECT video_id
FROM sources_videos
WHERE source_id = $1
ORDER BY video_id ASC`
	rows, err := repo.db.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("VideoIDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]string, 0, 100)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("VideoIDs: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (repo *SourceRepo) Videos(ctx context.Context, sourceID string) ([]*entity.Video, error) {
	defer observeQuery("source_videos", time.Now())
	const query = `
SELECT v.id, v.handler, v.uploader, v.uploader_id, v.title, v.description,
       v.duration, v.thumbnail, v.url, v.released_at, v.media_url,
       v.media_filesize, v.created_at, v.updated_at
FROM videos v
JOIN sources_videos sv ON sv.video_id = v.id
WHERE sv.source_id = $1
ORDER BY v.created_at DESC, v.id ASC`
	rows, err := repo.db.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("Videos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	videos := make([]*entity.Video, 0, 100)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("Videos: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}
