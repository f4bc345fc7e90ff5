package entity_test

import (
	"testing"
	"time"

	"tubefeed/internal/domain/entity"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSource_Fetchable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		active  bool
		deleted bool
		want    bool
	}{
		{"active", true, false, true},
		{"inactive", false, false, false},
		{"soft deleted", true, true, false},
		{"inactive and deleted", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &entity.Source{Active: tt.active, Deleted: tt.deleted}
			assert.Equal(t, tt.want, s.Fetchable())
		})
	}
}

func TestVideosSorted_ByReleasedAt(t *testing.T) {
	t.Parallel()

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mid := old.Add(24 * time.Hour)
	recent := old.Add(48 * time.Hour)

	videos := []*entity.Video{
		{ID: "a", ReleasedAt: &old},
		{ID: "b", ReleasedAt: &recent},
		{ID: "c", ReleasedAt: nil},
		{ID: "d", ReleasedAt: &mid},
	}

	sorted := entity.VideosSorted(videos, entity.OrderedByReleasedAt)

	gotIDs := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID}
	if diff := cmp.Diff([]string{"b", "d", "a", "c"}, gotIDs); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// Input order is untouched.
	assert.Equal(t, "a", videos[0].ID)
}

func TestVideosSorted_ByCreatedAt(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	videos := []*entity.Video{
		{ID: "a", CreatedAt: base},
		{ID: "b", CreatedAt: base.Add(time.Hour)},
	}

	sorted := entity.VideosSorted(videos, entity.OrderedByCreatedAt)
	assert.Equal(t, "b", sorted[0].ID)
	assert.Equal(t, "a", sorted[1].ID)
}
