package source

import (
	"time"

	"tubefeed/internal/domain/entity"
)

// DTO is the wire representation of a source.
type DTO struct {
	ID                 string    `json:"id"`
	URL                string    `json:"url"`
	Name               string    `json:"name"`
	Author             string    `json:"author,omitempty"`
	Logo               string    `json:"logo,omitempty"`
	Description        string    `json:"description,omitempty"`
	OrderedBy          string    `json:"ordered_by"`
	Handler            string    `json:"handler"`
	ReverseImportOrder bool      `json:"reverse_import_order"`
	Active             bool      `json:"active"`
	LastFetchError     string    `json:"last_fetch_error,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func fromEntity(s *entity.Source) DTO {
	return DTO{
		ID:                 s.ID,
		URL:                s.URL,
		Name:               s.Name,
		Author:             s.Author,
		Logo:               s.Logo,
		Description:        s.Description,
		OrderedBy:          s.OrderedBy,
		Handler:            s.Handler,
		ReverseImportOrder: s.ReverseImportOrder,
		Active:             s.Active,
		LastFetchError:     s.LastFetchError,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// resultsDTO is the wire representation of a fetch run's counters.
type resultsDTO struct {
	Sources         int `json:"sources"`
	AddedVideos     int `json:"added_videos"`
	DeletedVideos   int `json:"deleted_videos"`
	RefreshedVideos int `json:"refreshed_videos"`
}

func fromResults(r entity.FetchResults) resultsDTO {
	return resultsDTO{
		Sources:         r.Sources,
		AddedVideos:     r.AddedVideos,
		DeletedVideos:   r.DeletedVideos,
		RefreshedVideos: r.RefreshedVideos,
	}
}
