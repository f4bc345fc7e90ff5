package provider_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tubefeed/internal/infra/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	return provider.NewRegistry(&provider.Config{})
}

func TestYouTube_SanitizeVideoURL(t *testing.T) {
	t.Parallel()

	yt := provider.NewYouTube(nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL1", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/abc123", "https://www.youtube.com/watch?v=abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := yt.SanitizeVideoURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// Idempotence: ids derive from sanitized URLs.
			again, err := yt.SanitizeVideoURL(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestYouTube_SanitizeSourceURL(t *testing.T) {
	t.Parallel()

	yt := provider.NewYouTube(nil)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"channel", "https://www.youtube.com/channel/UCabc/", "https://www.youtube.com/channel/UCabc", false},
		{"handle", "https://youtube.com/@somecreator", "https://www.youtube.com/@somecreator", false},
		{"playlist", "https://www.youtube.com/watch?v=x&list=PLxyz", "https://www.youtube.com/playlist?list=PLxyz", false},
		{"bare watch url", "https://www.youtube.com/watch?v=x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := yt.SanitizeSourceURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := yt.SanitizeSourceURL(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestRumble_Sanitize(t *testing.T) {
	t.Parallel()

	rb := provider.NewRumble(nil)

	src, err := rb.SanitizeSourceURL("https://rumble.com/c/SomeChannel/?page=2")
	require.NoError(t, err)
	assert.Equal(t, "https://rumble.com/c/SomeChannel", src)

	vid, err := rb.SanitizeVideoURL("https://rumble.com/v4abcd-title.html?mref=x")
	require.NoError(t, err)
	assert.Equal(t, "https://rumble.com/v4abcd-title.html", vid)

	again, err := rb.SanitizeVideoURL(vid)
	require.NoError(t, err)
	assert.Equal(t, vid, again)
}

func TestRegistry_ForURL(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	h, err := reg.ForURL("https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, "youtube", h.Name())

	h, err = reg.ForURL("https://rumble.com/c/news")
	require.NoError(t, err)
	assert.Equal(t, "rumble", h.Name())

	_, err = reg.ForURL("https://vimeo.com/123")
	assert.Error(t, err)
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)

	h, err := reg.Lookup("youtube")
	require.NoError(t, err)
	assert.True(t, h.Settings().UseProxy)

	_, err = reg.Lookup("dailymotion")
	assert.Error(t, err)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "handlers.yaml")
	contents := `
handlers:
  youtube:
    refresh_interval_hours: 2
    refresh_recent_days: 7
    use_proxy: false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := provider.LoadConfig(path)
	require.NoError(t, err)

	yt := provider.NewYouTube(cfg.For("youtube"))
	settings := yt.Settings()
	assert.Equal(t, 2*time.Hour, settings.RefreshInterval)
	assert.Equal(t, 7*24*time.Hour, settings.RefreshRecent)
	assert.False(t, settings.UseProxy)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := provider.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.For("youtube"))
}
