package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAllowlists(t *testing.T) {
	lists := Default()

	assert.Greater(t, lists.Cuisine.Len(), 50)
	assert.True(t, lists.Cuisine.Any("Chicken CURRY"))
	assert.False(t, lists.Cuisine.Any("Chicken Soup"))
	assert.Equal(t, 2, lists.Authentic.Count("Paneer Tikka"))
	assert.True(t, lists.Popular.Any("Tandoori chicken"))
}

func TestSetCount(t *testing.T) {
	s := NewSet("Curry", " masala ", "curry", "")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 2, s.Count("Chicken Tikka Masala Curry"))
	assert.Equal(t, 0, s.Count("Pancakes"))
}

func TestSetCountAny(t *testing.T) {
	s := NewSet("goan", "delhi")

	assert.Equal(t, 1, s.CountAny("Goan Fish Curry", "Goan"))
	assert.Equal(t, 2, s.CountAny("Goan prawns", "Delhi"))
	assert.Equal(t, 0, s.CountAny("Pasta", "Italian"))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cuisine: [pho, laksa]\npopular: [pho]\n"), 0o644))

	lists, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, lists.Cuisine.Len())
	assert.True(t, lists.Popular.Any("Beef Pho"))
	assert.Equal(t, 0, lists.Regional.Len())
}

func TestParseRejectsEmptyCuisine(t *testing.T) {
	_, err := Parse([]byte("popular: [pho]\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
