package summarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.uber.org/atomic"
)

// stubSecrets is an in-memory secrets store for availability tests.
type stubSecrets struct {
	values map[string]string
}

func (s *stubSecrets) Set(name, value string) error {
	s.values[name] = value
	return nil
}

func (s *stubSecrets) Get(name string) (string, error) {
	return s.values[name], nil
}

func (s *stubSecrets) Delete(name string) error {
	delete(s.values, name)
	return nil
}

func newExternalForTest(key string, probeURL string) *ExternalEngine {
	secrets := &stubSecrets{values: map[string]string{}}
	if key != "" {
		secrets.values["anthropic_api_key"] = key
	}
	e := NewExternalEngine(ProviderAnthropic, "", 256, secrets, nopLogger{})
	if probeURL != "" {
		e.probeURL = probeURL
	}
	return e
}

func TestExternalUnavailableWithoutKey(t *testing.T) {
	var probes atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		probes.Inc()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := newExternalForTest("", srv.URL)
	assert.False(t, e.IsAvailable(context.Background()))
	// Without a key there is nothing to probe.
	assert.Equal(t, int64(0), probes.Load())
}

func TestExternalAvailableWithKeyAndReachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Probes check reachability, not auth.
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := newExternalForTest("sk-test", srv.URL)
	assert.True(t, e.IsAvailable(context.Background()))
}

func TestExternalUnavailableWhenProviderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := srv.URL
	srv.Close()

	e := newExternalForTest("sk-test", url)
	assert.False(t, e.IsAvailable(context.Background()))
}

func TestExternalProbeResultIsCached(t *testing.T) {
	var probes atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		probes.Inc()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := newExternalForTest("sk-test", srv.URL)
	assert.True(t, e.IsAvailable(context.Background()))
	assert.True(t, e.IsAvailable(context.Background()))
	assert.Equal(t, int64(1), probes.Load())
}

func TestExternalSecretNameFollowsProvider(t *testing.T) {
	secrets := &stubSecrets{values: map[string]string{}}
	e := NewExternalEngine(ProviderOpenAI, "", 256, secrets, nopLogger{})
	assert.Equal(t, "openai_api_key", e.SecretName())
}
