package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

func writeProfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeProfile(t, t.TempDir(), ".fetchkit.yml", `
timeout: 5000
followRedirects: false
maxRedirects: 3
validateSSL: false
proxy: http://proxy.internal:8080
headers:
  X-Service: billing
`)

	profile, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 5000, profile.Timeout)
	assert.False(t, profile.GetFollowRedirects())
	assert.Equal(t, 3, profile.MaxRedirects)
	assert.False(t, profile.GetValidateSSL())
	assert.Equal(t, "http://proxy.internal:8080", profile.Proxy)
	assert.Equal(t, "billing", profile.Headers["X-Service"])
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeProfile(t, t.TempDir(), ".fetchkit.yml", `
headers:
  Accept: application/json
`)

	profile, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, 30000, profile.Timeout)
	assert.True(t, profile.GetFollowRedirects())
	assert.Equal(t, 10, profile.MaxRedirects)
	assert.True(t, profile.GetValidateSSL())
}

func TestLoadFileExpandsEnvironment(t *testing.T) {
	t.Setenv("FETCHKIT_TOKEN", "s3cret")
	path := writeProfile(t, t.TempDir(), ".fetchkit.yml", `
headers:
  Authorization: Bearer ${FETCHKIT_TOKEN}
`)

	profile, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", profile.Headers["Authorization"])
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := writeProfile(t, t.TempDir(), ".fetchkit.yml", "timeout: [broken")
	_, err = LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse profile")
}

func TestParse(t *testing.T) {
	profile, err := Parse([]byte("timeout: 750\nmaxRedirects: 2"))

	require.NoError(t, err)
	assert.Equal(t, 750, profile.Timeout)
	assert.Equal(t, 2, profile.MaxRedirects)
	// Untouched fields keep their defaults.
	assert.True(t, profile.GetValidateSSL())
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "fetchkit.yaml", "timeout: 1234")

	profile, err := FindAndLoad(dir)

	require.NoError(t, err)
	assert.Equal(t, 1234, profile.Timeout)
}

func TestFindAndLoadFallsBackToDefaults(t *testing.T) {
	profile, err := FindAndLoad(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), profile)
}

func TestLoadWithExplicitPath(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "custom.yml", "timeout: 42")

	profile, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 42, profile.Timeout)
}

func TestMerge(t *testing.T) {
	base := &Profile{
		Timeout:      1000,
		MaxRedirects: 5,
		Headers:      map[string]string{"A": "1", "B": "1"},
	}
	override := &Profile{
		Timeout:         2000,
		FollowRedirects: BoolPtr(false),
		Headers:         map[string]string{"B": "2", "C": "3"},
	}

	merged := base.Merge(override)

	assert.Equal(t, 2000, merged.Timeout)
	assert.Equal(t, 5, merged.MaxRedirects)
	assert.False(t, merged.GetFollowRedirects())
	assert.Equal(t, map[string]string{"A": "1", "B": "2", "C": "3"}, merged.Headers)

	// Merging nil is a no-op.
	assert.Equal(t, base, base.Merge(nil))
}

func TestTimeoutDuration(t *testing.T) {
	assert.Equal(t, fetch.DefaultTimeout, (&Profile{}).TimeoutDuration())
	assert.Equal(t, 1500*time.Millisecond, (&Profile{Timeout: 1500}).TimeoutDuration())
}

func TestClientOptionsEndToEnd(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Service")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	profile := &Profile{
		Timeout: 2000,
		Headers: map[string]string{"X-Service": "billing"},
	}

	client := fetch.NewClient(profile.ClientOptions()...)
	result, err := client.Get(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, result)
	assert.Equal(t, "billing", gotHeader)
}

func TestClientOptionsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	profile := &Profile{Timeout: 50}
	client := fetch.NewClient(profile.ClientOptions()...)

	_, err := client.Get(context.Background(), server.URL, nil)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
