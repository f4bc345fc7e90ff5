package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/repository"
)

const videoColumns = `id, handler, uploader, uploader_id, title, description, duration,
       thumbnail, url, released_at, media_url, media_filesize, created_at, updated_at`

type VideoRepo struct{ db *sql.DB }

func NewVideoRepo(db *sql.DB) repository.VideoRepository {
	return &VideoRepo{db: db}
}

func scanVideo(rows *sql.Rows) (*entity.Video, error) {
	var video entity.Video
	if err := rows.Scan(
		&video.ID, &video.Handler, &video.Uploader, &video.UploaderID,
		&video.Title, &video.Description, &video.Duration, &video.Thumbnail,
		&video.URL, &video.ReleasedAt, &video.MediaURL, &video.MediaFilesize,
		&video.CreatedAt, &video.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &video, nil
}

func (repo *VideoRepo) get(ctx context.Context, method, id string) (*entity.Video, error) {
	defer observeQuery("video_get", time.Now())
	const query = `
SELECT ` + videoColumns + `
FROM videos
WHERE id = $1
LIMIT 1`
	var video entity.Video
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&video.ID, &video.Handler, &video.Uploader, &video.UploaderID,
		&video.Title, &video.Description, &video.Duration, &video.Thumbnail,
		&video.URL, &video.ReleasedAt, &video.MediaURL, &video.MediaFilesize,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return &video, nil
}

func (repo *VideoRepo) Get(ctx context.Context, id string) (*entity.Video, error) {
	return repo.get(ctx, "Get", id)
}

func (repo *VideoRepo) List(ctx context.Context) ([]*entity.Video, error) {
	defer observeQuery("video_list", time.Now())
	const query = `
SELECT ` + videoColumns + `
FROM videos
ORDER BY created_at DESC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	videos := make([]*entity.Video, 0, 100)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (repo *VideoRepo) Create(ctx context.Context, video *entity.Video) error {
	defer observeQuery("video_insert", time.Now())
	const query = `
INSERT INTO videos (id, handler, uploader, uploader_id, title, description, duration,
                    thumbnail, url, released_at, media_url, media_filesize,
                    created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := repo.db.ExecContext(ctx, query,
		video.ID, video.Handler, video.Uploader, video.UploaderID,
		video.Title, video.Description, video.Duration, video.Thumbnail,
		video.URL, video.ReleasedAt, video.MediaURL, video.MediaFilesize,
		video.CreatedAt, video.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *VideoRepo) Update(ctx context.Context, video *entity.Video) error {
	defer observeQuery("video_update", time.Now())
	const query = `
UPDATE videos SET
       handler        = $1,
       uploader       = $2,
       uploader_id    = $3,
       title          = $4,
       description    = $5,
       duration       = $6,
       thumbnail      = $7,
       url            = $8,
       released_at    = $9,
       media_url      = $10,
       media_filesize = $11,
       updated_at     = $12
WHERE id = $13`
	res, err := repo.db.ExecContext(ctx, query,
		video.Handler, video.Uploader, video.UploaderID,
		video.Title, video.Description, video.Duration, video.Thumbnail,
		video.URL, video.ReleasedAt, video.MediaURL, video.MediaFilesize,
		video.UpdatedAt, video.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (repo *VideoRepo) Delete(ctx context.Context, id string) error {
	defer observeQuery("video_delete", time.Now())
	const query = `DELETE FROM videos WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// ExistsByIDBatch はバッチでID存在チェックを行い、N+1問題を解消する
func (repo *VideoRepo) ExistsByIDBatch(ctx context.Context, ids []string) (map[string]bool, error) {
	defer observeQuery("video_exists_batch", time.Now())
	if len(ids) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT id FROM videos WHERE id = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("ExistsByIDBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ExistsByIDBatch: Scan: %w", err)
		}
		result[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByIDBatch: rows.Err: %w", err)
	}

	return result, nil
}
