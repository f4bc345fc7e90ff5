package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/adapter/persistence/postgres"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

var sourceCols = []string{
	"id", "url", "name", "author", "logo", "description", "ordered_by",
	"handler", "reverse_import_order", "active", "deleted",
	"last_fetch_error", "owner_id", "created_at", "updated_at",
}

func sourceRow(src *entity.Source) *sqlmock.Rows {
	return sqlmock.NewRows(sourceCols).AddRow(
		src.ID, src.URL, src.Name, src.Author, src.Logo, src.Description,
		src.OrderedBy, src.Handler, src.ReverseImportOrder, src.Active,
		src.Deleted, src.LastFetchError, src.OwnerID,
		src.CreatedAt, src.UpdatedAt,
	)
}

func testSource() *entity.Source {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return &entity.Source{
		ID:        "9b2f0c4d1e6a8b3c5d7e9f0a1b2c3d4e",
		URL:       "https://video.example/@spacelab",
		Name:      "Space Lab",
		Author:    "Space Lab",
		OrderedBy: entity.OrderedByReleasedAt,
		Handler:   "youtube",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

/* ──────────────────────────────── 1. Get ──────────────────────────────── */

func TestSourceRepo_Get(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	want := testSource()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs(want.ID).
		WillReturnRows(sourceRow(want))

	repo := postgres.NewSourceRepo(db)
	got, err := repo.Get(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("Get err=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id`)).
		WithArgs("ffffffffffffffffffffffffffffffff").
		WillReturnRows(sqlmock.NewRows(sourceCols))

	repo := postgres.NewSourceRepo(db)
	_, err := repo.Get(context.Background(), "ffffffffffffffffffffffffffffffff")
	if err != entity.ErrNotFound {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

/* ──────────────────────────────── 2. List ──────────────────────────────── */

func TestSourceRepo_List(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM sources`).
		WillReturnRows(sourceRow(testSource()))

	repo := postgres.NewSourceRepo(db)
	got, err := repo.List(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("List err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_ListFetchable(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`WHERE active AND NOT deleted`).
		WillReturnRows(sourceRow(testSource()))

	repo := postgres.NewSourceRepo(db)
	got, err := repo.ListFetchable(context.Background())
	if err != nil || len(got) != 1 {
		t.Fatalf("ListFetchable err=%v len=%d", err, len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 3. Create ──────────────────────────────── */

func TestSourceRepo_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	src := testSource()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sources`)).
		WithArgs(
			src.ID, src.URL, src.Name, src.Author, src.Logo, src.Description,
			src.OrderedBy, src.Handler, src.ReverseImportOrder, src.Active,
			src.Deleted, src.LastFetchError, src.OwnerID,
			src.CreatedAt, src.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSourceRepo(db)
	if err := repo.Create(context.Background(), src); err != nil {
		t.Fatalf("Create err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_Create_Duplicate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sources`)).
		WillReturnError(&pq.Error{Code: "23505"})

	repo := postgres.NewSourceRepo(db)
	if err := repo.Create(context.Background(), testSource()); err != entity.ErrAlreadyExists {
		t.Fatalf("err=%v, want ErrAlreadyExists", err)
	}
}

/* ──────────────────────────────── 4. Update / Delete ──────────────────────────────── */

func TestSourceRepo_Update_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sources SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSourceRepo(db)
	if err := repo.Update(context.Background(), testSource()); err != entity.ErrNotFound {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestSourceRepo_Delete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	src := testSource()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sources`)).
		WithArgs(src.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSourceRepo(db)
	if err := repo.Delete(context.Background(), src.ID); err != nil {
		t.Fatalf("Delete err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

/* ──────────────────────────────── 5. Video links ──────────────────────────────── */

func TestSourceRepo_LinkVideo_Idempotent(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	// 既にリンク済みの組はON CONFLICTで0行になるが、エラーにはならない
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (source_id, video_id) DO NOTHING`)).
		WithArgs("src-id", "vid-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := postgres.NewSourceRepo(db)
	if err := repo.LinkVideo(context.Background(), "src-id", "vid-id"); err != nil {
		t.Fatalf("LinkVideo err=%v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSourceRepo_VideoIDs(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM sources_videos`).
		WithArgs("src-id").
		WillReturnRows(sqlmock.NewRows([]string{"video_id"}).
			AddRow("aaa").AddRow("bbb"))

	repo := postgres.NewSourceRepo(db)
	got, err := repo.VideoIDs(context.Background(), "src-id")
	if err != nil {
		t.Fatalf("VideoIDs err=%v", err)
	}
	if diff := cmp.Diff([]string{"aaa", "bbb"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSourceRepo_Videos(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	released := now.Add(-24 * time.Hour)
	mock.ExpectQuery(`JOIN sources_videos`).
		WithArgs("src-id").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "handler", "uploader", "uploader_id", "title", "description",
			"duration", "thumbnail", "url", "released_at", "media_url",
			"media_filesize", "created_at", "updated_at",
		}).AddRow(
			"1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f", "youtube", "Space Lab", "UC123",
			"Launch replay", "", 540, "https://video.example/t.jpg",
			"https://video.example/watch?v=abc", released,
			"https://cdn.example/abc.mp4", int64(1<<20), now, now,
		))

	repo := postgres.NewSourceRepo(db)
	got, err := repo.Videos(context.Background(), "src-id")
	if err != nil || len(got) != 1 {
		t.Fatalf("Videos err=%v len=%d", err, len(got))
	}
	if got[0].Title != "Launch replay" || !got[0].Resolved() {
		t.Fatalf("unexpected video: %+v", got[0])
	}
}
