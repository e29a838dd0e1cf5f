package notes

import (
	"fmt"
	"net/http"
	"os"

	"github.com/beleske/beleske/internal/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// BaseURLEnvVar overrides the configured backend address at runtime;
// when neither is set, notes live in the local store only
const BaseURLEnvVar = "BELESKE_API_URL"

// ResolveBaseURL returns the notes backend base address: the runtime
// env var override wins over the config file value
func ResolveBaseURL(cfg *config.Config) string {
	if baseURL := os.Getenv(BaseURLEnvVar); baseURL != "" {
		return baseURL
	}
	return cfg.APIBaseURL
}

// NewApi picks the active backend, once, for the process lifetime: a
// remote client with a local fallback when a base address is configured,
// the bare local store otherwise.
func NewApi(cfg *config.Config) (Api, error) {
	local, err := NewLocalApi(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("new local api: %w", err)
	}

	baseURL := ResolveBaseURL(cfg)
	if baseURL == "" {
		log.Debugln("notes api: no backend configured, using local store")
		return local, nil
	}

	log.Debugf("notes api: using backend at %s (with local fallback)", baseURL)

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return NewRemoteApi(baseURL, tracedHttpClient, local), nil
}
