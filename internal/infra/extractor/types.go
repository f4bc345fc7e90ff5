package extractor

import "time"

// Params are the parameters of a source-level extraction call.
type Params struct {
	Flatten   bool      // list entries without resolving each one
	Reverse   bool      // playlist direction
	MaxCount  int       // extraction depth, 0 = provider default
	DateFloor time.Time // ignore entries older than this, zero = no floor
}

// Entry is one item of a source-level extraction: the flattened,
// unresolved form of a video. Timestamp and UploadDate are both
// optional; ReleasedTime prefers the epoch timestamp.
type Entry struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	WebpageURL  string  `json:"webpage_url"`
	Timestamp   int64   `json:"timestamp"`
	UploadDate  string  `json:"upload_date"` // YYYYMMDD
	Duration    float64 `json:"duration"`
	Thumbnail   string  `json:"thumbnail"`
	Uploader    string  `json:"uploader"`
	UploaderID  string  `json:"uploader_id"`
	LiveStatus  string  `json:"live_status,omitempty"`
}

// PageURL returns the entry's canonical page URL, falling back from
// webpage_url to url.
func (e *Entry) PageURL() string {
	if e.WebpageURL != "" {
		return e.WebpageURL
	}
	return e.URL
}

// ReleasedTime converts the provider-declared release moment to a
// timestamp, or nil when the provider declared none.
func (e *Entry) ReleasedTime() *time.Time {
	if e.Timestamp > 0 {
		t := time.Unix(e.Timestamp, 0).UTC()
		return &t
	}
	if len(e.UploadDate) == 8 {
		if t, err := time.Parse("20060102", e.UploadDate); err == nil {
			return &t
		}
	}
	return nil
}

// SourceMetadata is the result of a source-level extraction call.
type SourceMetadata struct {
	Title        string  `json:"title"`
	Uploader     string  `json:"uploader"`
	Logo         string  `json:"logo"`
	Description  string  `json:"description"`
	ExtractorKey string  `json:"extractor_key"`
	Entries      []Entry `json:"entries"`
}

// Format is one playable media rendition of a video.
type Format struct {
	FormatID       string `json:"format_id"`
	URL            string `json:"url"`
	Filesize       int64  `json:"filesize"`
	FilesizeApprox int64  `json:"filesize_approx"`
}

// Size returns the exact filesize when known, the approximation
// otherwise.
func (f *Format) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

// VideoMetadata is the result of a single-video extraction call.
type VideoMetadata struct {
	Entry
	Formats []Format `json:"formats"`
}
