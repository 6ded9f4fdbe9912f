package summarize

import (
	"context"
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"net/http"
	"sync"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// chatClient is the common shape of the provider API clients.
type chatClient interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// probeTTL bounds how often availability re-checks provider
// reachability. Within the window the cached verdict is served.
const probeTTL = time.Minute

// ExternalEngine summarizes through a cloud LLM provider. The API key
// lives in the encrypted secrets store and is re-read on every call, so
// setting or deleting a key takes effect immediately.
type ExternalEngine struct {
	provider  string
	model     string
	maxTokens int
	secrets   providers.SecretsProviderInterface
	logger    providers.Logger

	probeURL    string
	probeClient *http.Client

	probeMu  sync.Mutex
	probedAt time.Time
	probeOK  bool
}

func NewExternalEngine(provider, model string, maxTokens int,
	secrets providers.SecretsProviderInterface, logger providers.Logger) *ExternalEngine {
	if provider == "" {
		provider = ProviderAnthropic
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	probeURL := anthropicBaseURL
	if provider == ProviderOpenAI {
		probeURL = openAIBaseURL
	}
	return &ExternalEngine{
		provider:    provider,
		model:       model,
		maxTokens:   maxTokens,
		secrets:     secrets,
		logger:      logger,
		probeURL:    probeURL,
		probeClient: &http.Client{Timeout: 3 * time.Second},
	}
}

func (e *ExternalEngine) Tier() Tier { return TierExternal }

// SecretName returns the secrets-store key the engine reads its API key
// from.
func (e *ExternalEngine) SecretName() string {
	return e.provider + "_api_key"
}

// IsAvailable requires both a stored API key and a reachable provider.
// Without the reachability check the engine would claim availability
// while offline and every summarization would burn a doomed call before
// falling back.
func (e *ExternalEngine) IsAvailable(ctx context.Context) bool {
	key, err := e.secrets.Get(e.SecretName())
	if err != nil {
		e.logger.Warnf(providers.TypeAi, "Unable to read API key for %s: %s", e.provider, err)
		return false
	}
	if key == "" {
		return false
	}
	return e.reachable(ctx)
}

// reachable probes the provider base URL. Any HTTP response counts as
// reachable; the probe checks connectivity, not auth. The verdict is
// cached for probeTTL so availability checks stay cheap.
func (e *ExternalEngine) reachable(ctx context.Context) bool {
	e.probeMu.Lock()
	defer e.probeMu.Unlock()

	if !e.probedAt.IsZero() && time.Since(e.probedAt) < probeTTL {
		return e.probeOK
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, e.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := e.probeClient.Do(req)
	if resp != nil {
		resp.Body.Close()
	}

	e.probedAt = time.Now()
	e.probeOK = err == nil
	if !e.probeOK {
		e.logger.Warnf(providers.TypeAi, "Provider %s unreachable: %s", e.provider, err)
	}
	return e.probeOK
}

func (e *ExternalEngine) client() (chatClient, error) {
	key, err := e.secrets.Get(e.SecretName())
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, ErrUnavailable
	}
	switch e.provider {
	case ProviderOpenAI:
		return newOpenAIClient(key, e.model), nil
	case ProviderAnthropic:
		return newAnthropicClient(key, e.model), nil
	default:
		return nil, fmt.Errorf("unknown summarization provider %q", e.provider)
	}
}

func (e *ExternalEngine) SummarizeSession(ctx context.Context, in SessionInput) (*models.SessionIntelligence, error) {
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	response, err := c.Complete(ctx, sessionSystemPrompt, buildSessionPrompt(in), e.maxTokens)
	if err != nil {
		return nil, err
	}
	structured, err := ParseStructured(response)
	if err != nil {
		return nil, err
	}
	return sessionFromStructured(structured, in, TierExternal), nil
}

func (e *ExternalEngine) SummarizePeriod(ctx context.Context, in PeriodInput) (*models.PeriodIntelligence, error) {
	c, err := e.client()
	if err != nil {
		return nil, err
	}
	response, err := c.Complete(ctx, periodSystemPrompt, buildPeriodPrompt(in), e.maxTokens)
	if err != nil {
		return nil, err
	}
	structured, err := ParseStructured(response)
	if err != nil {
		return nil, err
	}
	return periodFromStructured(structured, in, TierExternal), nil
}
