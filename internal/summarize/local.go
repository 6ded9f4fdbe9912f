package summarize

import (
	"context"
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// LocalEngine runs a GGUF model on-device through llama.cpp. The model
// loads lazily on first use and stays resident; inference is serialized
// because llama contexts are not safe for concurrent use.
type LocalEngine struct {
	modelPath  string
	libraryDir string
	maxTokens  int
	logger     providers.Logger

	mu          sync.Mutex
	model       llama.Model
	initialized bool
}

func NewLocalEngine(modelPath, libraryDir string, maxTokens int, logger providers.Logger) *LocalEngine {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &LocalEngine{
		modelPath:  modelPath,
		libraryDir: libraryDir,
		maxTokens:  maxTokens,
		logger:     logger,
	}
}

func (e *LocalEngine) Tier() Tier { return TierLocal }

func (e *LocalEngine) IsAvailable(_ context.Context) bool {
	if e.modelPath == "" || e.libraryDir == "" {
		return false
	}
	if _, err := os.Stat(e.modelPath); err != nil {
		return false
	}
	return true
}

func (e *LocalEngine) initialize() error {
	if e.initialized {
		return nil
	}
	if err := llama.Load(e.libraryDir); err != nil {
		return fmt.Errorf("unable to load llama.cpp library: %w", err)
	}
	llama.Init()

	params := llama.ModelDefaultParams()
	e.model = llama.ModelLoadFromFile(e.modelPath, params)
	e.initialized = true

	e.logger.Infof(providers.TypeAi, "Local model loaded from %s", e.modelPath)
	return nil
}

func (e *LocalEngine) SummarizeSession(ctx context.Context, in SessionInput) (*models.SessionIntelligence, error) {
	response, err := e.generate(ctx, sessionSystemPrompt, buildSessionPrompt(in))
	if err != nil {
		return nil, err
	}
	structured, err := ParseStructured(response)
	if err != nil {
		return nil, err
	}
	return sessionFromStructured(structured, in, TierLocal), nil
}

func (e *LocalEngine) SummarizePeriod(ctx context.Context, in PeriodInput) (*models.PeriodIntelligence, error) {
	response, err := e.generate(ctx, periodSystemPrompt, buildPeriodPrompt(in))
	if err != nil {
		return nil, err
	}
	structured, err := ParseStructured(response)
	if err != nil {
		return nil, err
	}
	return periodFromStructured(structured, in, TierLocal), nil
}

func (e *LocalEngine) generate(ctx context.Context, system, user string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.initialize(); err != nil {
		return "", err
	}

	ctxParams := llama.ContextDefaultParams()
	ctxParams.NCtx = 8192
	lctx := llama.InitFromModel(e.model, ctxParams)
	defer llama.Free(lctx)

	vocab := llama.ModelGetVocab(e.model)

	// Gemma-style turn template; the bundled summarizer models are
	// Gemma finetunes.
	prompt := "<start_of_turn>user\n" + system + "\n" + user + "<end_of_turn>\n<start_of_turn>model\n"
	tokens := llama.Tokenize(vocab, prompt, true, true)
	batch := llama.BatchGetOne(tokens)

	sampler := llama.SamplerChainInit(llama.SamplerChainDefaultParams())
	defer llama.SamplerFree(sampler)

	llama.SamplerChainAdd(sampler, llama.SamplerInitTopK(64))
	llama.SamplerChainAdd(sampler, llama.SamplerInitTopP(0.95, 1))
	llama.SamplerChainAdd(sampler, llama.SamplerInitTempExt(0.7, 0.0, 1.0))
	llama.SamplerChainAdd(sampler, llama.SamplerInitPenalties(64, 1.1, 0.0, 0.0))
	seed := uint32(time.Now().UnixMicro() & 0xFFFFFFFF) //nolint:gosec
	llama.SamplerChainAdd(sampler, llama.SamplerInitDist(seed))

	var output strings.Builder
	buf := make([]byte, 36)

	for pos := 0; pos < e.maxTokens; pos++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		llama.Decode(lctx, batch)
		token := llama.SamplerSample(sampler, lctx, -1)
		if llama.VocabIsEOG(vocab, token) {
			break
		}

		tokenLen := llama.TokenToPiece(vocab, token, buf, 0, true)
		if tokenLen > 0 {
			output.Write(buf[:tokenLen])
		}

		if idx := strings.Index(output.String(), "<end_of_turn>"); idx >= 0 {
			trimmed := output.String()[:idx]
			output.Reset()
			output.WriteString(trimmed)
			break
		}

		batch = llama.BatchGetOne([]llama.Token{token})
	}

	text := strings.TrimSpace(output.String())
	if text == "" {
		return "", fmt.Errorf("local model produced no output")
	}
	return text, nil
}
