package factory

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/design-inspector-go/internal/config"
	"github.com/anime-shed/design-inspector-go/internal/strategy"
)

func testConfig() *config.Config {
	return &config.Config{
		ImageFetchTimeout:    5 * time.Second,
		MaxRequestBodySize:   1 << 20,
		AnalysisMode:         config.AnalysisModeFull,
		FastModeMaxDimension: 512,
	}
}

func TestStorageFactory_CreateSources_HTTPOnly(t *testing.T) {
	sources, err := NewStorageFactory(testConfig()).CreateSources()
	require.NoError(t, err)

	assert.Contains(t, sources, "http")
	assert.Contains(t, sources, "https")
	assert.NotContains(t, sources, "azblob")
	assert.NotContains(t, sources, "s3")
}

func TestStorageFactory_CreateSources_WithAzure(t *testing.T) {
	cfg := testConfig()
	cfg.Azure = config.AzureConfig{
		AccountName: "designs",
		AccountKey:  base64.StdEncoding.EncodeToString([]byte("secret")),
	}

	sources, err := NewStorageFactory(cfg).CreateSources()
	require.NoError(t, err)
	assert.Contains(t, sources, "azblob")
}

func TestStorageFactory_CreateSources_WithS3(t *testing.T) {
	cfg := testConfig()
	cfg.S3 = config.S3Config{
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	}

	sources, err := NewStorageFactory(cfg).CreateSources()
	require.NoError(t, err)
	assert.Contains(t, sources, "s3")
	assert.NotContains(t, sources, "azblob")
}

func TestStorageFactory_CreateStorage(t *testing.T) {
	f := NewStorageFactory(testConfig())

	_, err := f.CreateStorage(AzureStorage)
	assert.True(t, errors.Is(err, ErrStorageNotConfigured))

	_, err = f.CreateStorage(S3Storage)
	assert.True(t, errors.Is(err, ErrStorageNotConfigured))

	_, err = f.CreateStorage(StorageType("ftp"))
	assert.Error(t, err)

	fetcher, err := f.CreateStorage(HTTPStorage)
	require.NoError(t, err)
	assert.NotNil(t, fetcher)
}

func TestStrategyFactory_CreateStrategy(t *testing.T) {
	f := NewStrategyFactory(256)

	full, err := f.CreateStrategy(config.AnalysisModeFull)
	require.NoError(t, err)
	assert.Equal(t, "full_resolution", full.GetStrategyName())

	fast, err := f.CreateStrategy(config.AnalysisModeFast)
	require.NoError(t, err)
	require.IsType(t, &strategy.DownsampledStrategy{}, fast)
	assert.Equal(t, 256, fast.(*strategy.DownsampledStrategy).MaxDimension)

	_, err = f.CreateStrategy("turbo")
	assert.Error(t, err)

	_, err = NewStrategyFactory(0).CreateStrategy(config.AnalysisModeFast)
	assert.Error(t, err)
}
