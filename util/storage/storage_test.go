package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	base := t.TempDir()
	fs := New(base)

	path, err := fs.Save(strings.NewReader("png-bytes"), "Cover.PNG", 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, base))
	assert.True(t, strings.HasSuffix(path, ".png"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
}

func TestFileExtension(t *testing.T) {
	testCases := []struct {
		name string
		want string
	}{
		{"cover.jpg", "jpg"},
		{"cover.JPG", "jpg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailingdot.", ""},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, fileExtension(tc.name), tc.name)
	}
}
