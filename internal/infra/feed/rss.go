package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tubefeed/internal/domain/entity"
)

// RSSMaterializer writes RSS 2.0 files with media enclosures under a
// base directory: <base>/<sourceID>.xml for sources and
// <base>/<sourceID>/<filterID>.xml for filters.
type RSSMaterializer struct {
	baseDir   string
	publicURL string // base URL prefix for enclosure links
}

// NewRSSMaterializer creates a materializer rooted at baseDir.
// publicURL prefixes the media endpoint links embedded in enclosures,
// e.g. "https://feeds.example.com".
func NewRSSMaterializer(baseDir, publicURL string) *RSSMaterializer {
	return &RSSMaterializer{baseDir: baseDir, publicURL: publicURL}
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Author        string    `xml:"author,omitempty"`
	Image         *rssImage `xml:"image,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description,omitempty"`
	GUID        rssGUID       `xml:"guid"`
	PubDate     string        `xml:"pubDate,omitempty"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
	Duration    int           `xml:"duration,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// WriteSourceFeed implements Materializer.
func (m *RSSMaterializer) WriteSourceFeed(ctx context.Context, source *entity.Source, videos []*entity.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := m.sourcePath(source.ID)
	return m.write(path, m.render(source.Name, source.Author, source.Description, source.Logo, source.URL, videos))
}

// WriteFilterFeed implements Materializer.
func (m *RSSMaterializer) WriteFilterFeed(ctx context.Context, source *entity.Source, filter *entity.Filter, videos []*entity.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	title := fmt.Sprintf("%s - %s", source.Name, filter.Name)
	path := m.filterPath(source.ID, filter.ID)
	return m.write(path, m.render(title, source.Author, source.Description, source.Logo, source.URL, videos))
}

// RemoveSource implements Materializer.
func (m *RSSMaterializer) RemoveSource(_ context.Context, sourceID string) error {
	if err := os.Remove(m.sourcePath(sourceID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove source feed: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(m.baseDir, sourceID)); err != nil {
		return fmt.Errorf("remove filter feeds: %w", err)
	}
	return nil
}

// RemoveFilter implements Materializer.
func (m *RSSMaterializer) RemoveFilter(_ context.Context, sourceID, filterID string) error {
	if err := os.Remove(m.filterPath(sourceID, filterID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove filter feed: %w", err)
	}
	return nil
}

func (m *RSSMaterializer) sourcePath(sourceID string) string {
	return filepath.Join(m.baseDir, sourceID+".xml")
}

func (m *RSSMaterializer) filterPath(sourceID, filterID string) string {
	return filepath.Join(m.baseDir, sourceID, filterID+".xml")
}

func (m *RSSMaterializer) render(title, author, description, logo, link string, videos []*entity.Video) *rssFeed {
	channel := rssChannel{
		Title:         title,
		Link:          link,
		Description:   description,
		Author:        author,
		LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
	}
	if logo != "" {
		channel.Image = &rssImage{URL: logo, Title: title, Link: link}
	}

	for _, v := range videos {
		item := rssItem{
			Title:       v.Title,
			Link:        v.URL,
			Description: v.Description,
			GUID:        rssGUID{IsPermaLink: false, Value: v.ID},
			Duration:    v.Duration,
		}
		if v.ReleasedAt != nil {
			item.PubDate = v.ReleasedAt.UTC().Format(time.RFC1123Z)
		}
		if v.MediaURL != "" {
			item.Enclosure = &rssEnclosure{
				URL:    fmt.Sprintf("%s/media/%s", m.publicURL, v.ID),
				Length: v.MediaFilesize,
				Type:   "video/mp4",
			}
		}
		channel.Items = append(channel.Items, item)
	}

	return &rssFeed{Version: "2.0", Channel: channel}
}

// write atomically replaces the artifact by writing a temp file and
// renaming it over the target.
func (m *RSSMaterializer) write(path string, f *rssFeed) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create feed dir: %w", err)
	}

	data, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace feed: %w", err)
	}
	return nil
}
