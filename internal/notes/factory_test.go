package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beleske/beleske/internal/config"
)

func TestResolveBaseURL(t *testing.T) {
	cfg := &config.Config{APIBaseURL: "http://configured:9000"}

	assert.Equal(t, "http://configured:9000", ResolveBaseURL(cfg))

	// env var override wins over the config file value
	t.Setenv(BaseURLEnvVar, "http://overridden:9001")
	assert.Equal(t, "http://overridden:9001", ResolveBaseURL(cfg))

	t.Setenv(BaseURLEnvVar, "")
	assert.Equal(t, "http://configured:9000", ResolveBaseURL(cfg))
}

func TestNewApi_BackendSelection(t *testing.T) {
	t.Setenv(BaseURLEnvVar, "")

	// no base address configured, notes live in the local store only
	cfg := &config.Config{DataDir: t.TempDir()}
	api, err := NewApi(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalApi{}, api)

	// with a base address the remote client fronts the local store
	cfg = &config.Config{DataDir: t.TempDir(), APIBaseURL: "http://localhost:9000"}
	api, err = NewApi(cfg)
	require.NoError(t, err)
	assert.IsType(t, &RemoteApi{}, api)
}
