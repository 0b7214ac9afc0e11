package geo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_NoDatabases(t *testing.T) {
	l, err := Open("", "")
	require.NoError(t, err)

	assert.IsType(t, NopLocator{}, l)
	assert.Equal(t, Location{}, l.Lookup("8.8.8.8"))
	assert.NoError(t, l.Close())
}

func TestOpen_MissingDatabase(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "GeoLite2-City.mmdb"), "")
	assert.Error(t, err)

	_, err = Open("", filepath.Join(dir, "GeoLite2-ASN.mmdb"))
	assert.Error(t, err)
}

func TestGeoIPLocator_SkipsNonPublic(t *testing.T) {
	// 没有打开任何数据库的查询器，私有地址不应触发查询
	l := &GeoIPLocator{}

	for _, ip := range []string{"0.0.0.0", "10.0.0.1", "192.168.1.100", "127.0.0.1", "garbage"} {
		assert.Equal(t, Location{}, l.Lookup(ip), ip)
	}
	assert.Equal(t, Location{}, l.Lookup("8.8.8.8"))
	assert.NoError(t, l.Close())
}
