package resolver

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := ParseBase(raw)
	require.NoError(t, err)
	return u
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative under dir", "http://x/p/", "logo.png", "http://x/p/logo.png"},
		{"root relative", "http://x/p/", "/static/a.png", "http://x/static/a.png"},
		{"absolute unchanged", "http://x/p/", "https://cdn.y/z.png", "https://cdn.y/z.png"},
		{"root base", "http://x/", "d.png", "http://x/d.png"},
		{"base without path", "http://x", "d.png", "http://x/d.png"},
		{"directory of base file", "http://x/a/b/c", "d.png", "http://x/a/b/d.png"},
		{"query kept", "http://x/a/", "img.php?id=3", "http://x/a/img.php?id=3"},
		{"fragment dropped", "http://x/a/", "pic.png#top", "http://x/a/pic.png"},
		{"absolute fragment dropped", "http://x/", "http://y/pic.png#top", "http://y/pic.png"},
		{"scheme relative", "https://x/", "//cdn.y/z.png", "https://cdn.y/z.png"},
		{"dot segments kept", "http://x/a/", "../b.png", "http://x/a/../b.png"},
		{"surrounding space", "http://x/", "  a.png\n", "http://x/a.png"},
		{"escaped path", "http://x/", "my image.png", "http://x/my%20image.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(mustBase(t, tt.base), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_AbsoluteIndependentOfBase(t *testing.T) {
	refs := []string{"https://cdn.y/z.png", "http://a.b/c/d.jpg?x=1"}
	bases := []string{"http://x/", "https://other/deep/path/page.html", "http://h:8080"}
	for _, ref := range refs {
		for _, b := range bases {
			got, err := Resolve(mustBase(t, b), ref)
			require.NoError(t, err)
			assert.Equal(t, ref, got)
		}
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want error
	}{
		{"empty", "", ErrEmptyReference},
		{"blank", "   ", ErrEmptyReference},
		{"query only", "?a=b", ErrEmptyPath},
		{"fragment only", "#top", ErrEmptyPath},
		{"data uri", "data:image/png;base64,AAAA", ErrNoAuthority},
	}
	base := mustBase(t, "http://x/p/")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(base, tt.ref)
			var rerr *ResolutionError
			require.True(t, errors.As(err, &rerr))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResolve_Unparseable(t *testing.T) {
	_, err := Resolve(mustBase(t, "http://x/"), "http://[::1")
	var rerr *ResolutionError
	assert.True(t, errors.As(err, &rerr))
}

func TestParseBase(t *testing.T) {
	_, err := ParseBase("/relative/only")
	assert.ErrorIs(t, err, ErrBaseNotAbsolute)
	_, err = ParseBase("http://x/")
	assert.NoError(t, err)
}
