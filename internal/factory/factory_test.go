package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-plant-inspector/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ImageFetchTimeout: 5 * time.Second,
		MaxImageBytes:     1 << 20,
	}
}

func TestCreateStorage(t *testing.T) {
	cfg := testConfig()
	f := NewStorageFactory(cfg)

	fetcher, err := f.CreateStorage(HTTPStorage)
	require.NoError(t, err)
	require.NotNil(t, fetcher)

	_, err = f.CreateStorage(AzureStorage)
	require.Error(t, err, "azure needs credentials")

	_, err = f.CreateStorage(LocalStorage)
	require.Error(t, err, "local needs a root")

	cfg.LocalImageRoot = t.TempDir()
	fetcher, err = f.CreateStorage(LocalStorage)
	require.NoError(t, err)
	require.NotNil(t, fetcher)

	_, err = f.CreateStorage("ftp")
	require.Error(t, err)
}

func TestStorageTypeSchemes(t *testing.T) {
	require.Equal(t, []string{"http", "https"}, HTTPStorage.Schemes())
	require.Equal(t, []string{"azblob"}, AzureStorage.Schemes())
	require.Equal(t, []string{"file"}, LocalStorage.Schemes())
	require.Nil(t, StorageType("ftp").Schemes())
}

func TestBuildRepository(t *testing.T) {
	cfg := testConfig()
	cf := NewComponentFactory(cfg)

	repo, err := cf.BuildRepository(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"http", "https"}, repo.Schemes())

	cfg.LocalImageRoot = t.TempDir()
	repo, err = cf.BuildRepository(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{"file", "http", "https"}, repo.Schemes())
}

func TestCreateAnalyzer(t *testing.T) {
	a, err := NewAnalyzerFactory().CreateAnalyzer()
	require.NoError(t, err)
	require.NoError(t, a.Close())
}
