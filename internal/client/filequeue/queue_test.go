package filequeue

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_FiltersAndSorts(t *testing.T) {
	q, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(q.Dir(), "b.csv"), []byte("bb"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(q.Dir(), "a.csv"), []byte("aaaaa"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(q.Dir(), "c.csv.tmp"), []byte("partial"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(q.Dir(), ".hidden"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(q.Dir(), "sub"), 0o700))

	items, err := q.List()
	require.NoError(t, err)
	assert.Equal(t, []Item{{Name: "a.csv", Size: 5}, {Name: "b.csv", Size: 2}}, items)
}

func TestAddOpenDelete(t *testing.T) {
	q, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	require.NoError(t, q.Add("gps.csv", strings.NewReader("lat,lon")))

	rc, size, err := q.Open("gps.csv")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "lat,lon", string(b))
	assert.EqualValues(t, 7, size)

	require.NoError(t, q.Delete("gps.csv"))
	require.NoError(t, q.Delete("gps.csv"))

	items, err := q.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInvalidNames(t *testing.T) {
	q, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		_, _, err := q.Open(name)
		assert.Error(t, err, name)
		assert.Error(t, q.Delete(name), name)
		assert.Error(t, q.Add(name, strings.NewReader("x")), name)
	}
}
