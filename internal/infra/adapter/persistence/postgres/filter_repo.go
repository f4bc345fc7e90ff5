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

type FilterRepo struct{ db *sql.DB }

func NewFilterRepo(db *sql.DB) repository.FilterRepository {
	return &FilterRepo{db: db}
}

func (repo *FilterRepo) Get(ctx context.Context, id string) (*entity.Filter, error) {
	defer observeQuery("filter_get", time.Now())
	const query = `
SELECT id, source_id, name, ordered_by, created_at, updated_at
FROM filters
WHERE id = $1
LIMIT 1`
	var filter entity.Filter
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&filter.ID, &filter.SourceID, &filter.Name, &filter.OrderedBy,
		&filter.CreatedAt, &filter.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	byFilter, err := repo.criteriaByFilter(ctx, []string{filter.ID})
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	filter.Criteria = byFilter[filter.ID]
	return &filter, nil
}

func (repo *FilterRepo) ListBySource(ctx context.Context, sourceID string) ([]*entity.Filter, error) {
	defer observeQuery("filter_list", time.Now())
	const query = `
SELECT id, source_id, name, ordered_by, created_at, updated_at
FROM filters
WHERE source_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := repo.db.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("ListBySource: %w", err)
	}
	defer func() { _ = rows.Close() }()

	filters := make([]*entity.Filter, 0, 20)
	ids := make([]string, 0, 20)
	for rows.Next() {
		var filter entity.Filter
		if err := rows.Scan(
			&filter.ID, &filter.SourceID, &filter.Name, &filter.OrderedBy,
			&filter.CreatedAt, &filter.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListBySource: %w", err)
		}
		filters = append(filters, &filter)
		ids = append(ids, filter.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBySource: %w", err)
	}

	// 基準はバッチで読み込み、N+1問題を解消する
	byFilter, err := repo.criteriaByFilter(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ListBySource: %w", err)
	}
	for _, filter := range filters {
		filter.Criteria = byFilter[filter.ID]
	}
	return filters, nil
}

// criteriaByFilter loads the criteria of all given filters in one round
// trip, grouped by filter id in insertion order.
func (repo *FilterRepo) criteriaByFilter(ctx context.Context, filterIDs []string) (map[string][]*entity.Criteria, error) {
	if len(filterIDs) == 0 {
		return make(map[string][]*entity.Criteria), nil
	}

	const query = `
SELECT id, filter_id, field, operator, value, keyword, unit_of_measure
FROM criteria
WHERE filter_id = ANY($1)
ORDER BY seq ASC`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(filterIDs))
	if err != nil {
		return nil, fmt.Errorf("criteriaByFilter: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string][]*entity.Criteria, len(filterIDs))
	for rows.Next() {
		var c entity.Criteria
		if err := rows.Scan(
			&c.ID, &c.FilterID, &c.Field, &c.Operator, &c.Value, &c.Keyword, &c.Unit,
		); err != nil {
			return nil, fmt.Errorf("criteriaByFilter: %w", err)
		}
		result[c.FilterID] = append(result[c.FilterID], &c)
	}
	return result, rows.Err()
}

func (repo *FilterRepo) Create(ctx context.Context, filter *entity.Filter) error {
	defer observeQuery("filter_insert", time.Now())
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO filters (id, source_id, name, ordered_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = tx.ExecContext(ctx, query,
		filter.ID, filter.SourceID, filter.Name, filter.OrderedBy,
		filter.CreatedAt, filter.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	for _, c := range filter.Criteria {
		if err := insertCriteria(ctx, tx, c); err != nil {
			return fmt.Errorf("Create: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *FilterRepo) Update(ctx context.Context, filter *entity.Filter) error {
	defer observeQuery("filter_update", time.Now())
	const query = `
UPDATE filters SET
       name       = $1,
       ordered_by = $2,
       updated_at = $3
WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query,
		filter.Name, filter.OrderedBy, filter.UpdatedAt, filter.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// Delete removes the filter row. Its criteria go with it via
// ON DELETE CASCADE.
func (repo *FilterRepo) Delete(ctx context.Context, id string) error {
	defer observeQuery("filter_delete", time.Now())
	const query = `DELETE FROM filters WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCriteria(ctx context.Context, db execer, c *entity.Criteria) error {
	const query = `
INSERT INTO criteria (id, filter_id, field, operator, value, keyword, unit_of_measure)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := db.ExecContext(ctx, query,
		c.ID, c.FilterID, c.Field, c.Operator, c.Value, c.Keyword, c.Unit,
	)
	return err
}

func (repo *FilterRepo) AddCriteria(ctx context.Context, filterID string, criteria *entity.Criteria) error {
	defer observeQuery("criteria_insert", time.Now())
	criteria.FilterID = filterID
	err := insertCriteria(ctx, repo.db, criteria)
	if isUniqueViolation(err) {
		return entity.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("AddCriteria: %w", err)
	}
	return nil
}

func (repo *FilterRepo) RemoveCriteria(ctx context.Context, criteriaID string) error {
	defer observeQuery("criteria_delete", time.Now())
	const query = `DELETE FROM criteria WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, criteriaID)
	if err != nil {
		return fmt.Errorf("RemoveCriteria: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
