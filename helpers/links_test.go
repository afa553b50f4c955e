package helpers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var encarHosts = []string{"encar.com", "www.encar.com"}

func TestFilterLinks(t *testing.T) {
	input := strings.Join([]string{
		"https://www.encar.com/dc/dc_carsearchlist.do?carType=kor#!",
		"",
		"# saved searches",
		"http://encar.com/",
		"https://fem.encar.com/cars/detail/1",
		"https://www.encar.com.evil.io/search",
		"https://example.com/?u=https://www.encar.com",
		"ftp://www.encar.com/file",
		"   https://www.encar.com/dc/dc_carsearchlist.do?carType=for   ",
		"https://www.encar.com/dc/dc_carsearchlist.do?carType=kor#!",
	}, "\n")

	links, err := FilterLinks(strings.NewReader(input), encarHosts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.encar.com/dc/dc_carsearchlist.do?carType=kor#!",
		"http://encar.com/",
		"https://www.encar.com/dc/dc_carsearchlist.do?carType=for",
	}, links)
}

func TestIsAllowedLink(t *testing.T) {
	assert.True(t, IsAllowedLink("https://www.encar.com", encarHosts))
	assert.True(t, IsAllowedLink("https://www.encar.com/", encarHosts))
	assert.True(t, IsAllowedLink("https://WWW.ENCAR.COM/search?x=1", encarHosts))
	assert.True(t, IsAllowedLink("http://encar.com/?q", encarHosts))
	assert.False(t, IsAllowedLink("https://encar.co/", encarHosts))
	assert.False(t, IsAllowedLink("https://www.example.com/", encarHosts))
	assert.False(t, IsAllowedLink("www.encar.com/search", encarHosts))
	assert.False(t, IsAllowedLink("https://www.example.com/", nil))
}

func TestLoadLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encar_links.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://www.encar.com/a\nhttps://google.com/\n"), 0o644))

	links, err := LoadLinks(path, encarHosts)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.encar.com/a"}, links)

	_, err = LoadLinks(filepath.Join(t.TempDir(), "missing.txt"), encarHosts)
	assert.Error(t, err)
}
