package video

import (
	"time"

	"tubefeed/internal/domain/entity"
)

// DTO is the wire representation of a video. MediaFilesize is zero until
// the media reference has been resolved at least once.
type DTO struct {
	ID            string     `json:"id"`
	Handler       string     `json:"handler"`
	Uploader      string     `json:"uploader,omitempty"`
	UploaderID    string     `json:"uploader_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Duration      int        `json:"duration"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	URL           string     `json:"url"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	MediaFilesize int64      `json:"media_filesize,omitempty"`
	Resolved      bool       `json:"resolved"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func fromEntity(v *entity.Video) DTO {
	return DTO{
		ID:            v.ID,
		Handler:       v.Handler,
		Uploader:      v.Uploader,
		UploaderID:    v.UploaderID,
		Title:         v.Title,
		Description:   v.Description,
		Duration:      v.Duration,
		Thumbnail:     v.Thumbnail,
		URL:           v.URL,
		ReleasedAt:    v.ReleasedAt,
		MediaFilesize: v.MediaFilesize,
		Resolved:      v.Resolved(),
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}
