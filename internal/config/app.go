package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatctx/pkg/log"
)

// AppConfig carries every tunable of the engine. The threshold and weight
// constants are empirically chosen starting points, not a contract; override
// them per deployment via environment.
type AppConfig struct {
	RuntimePath string `env:"CHATCTX_RUNTIME_PATH" envDefault:".chatctx"`

	// Detection
	FollowupThreshold float64 `env:"FOLLOWUP_THRESHOLD" envDefault:"0.45"`
	ContextThreshold  float64 `env:"CONTEXT_THRESHOLD" envDefault:"0.3"`
	ScoringWindow     int     `env:"SCORING_WINDOW" envDefault:"5"`

	// Memory
	MaxContextExchanges int     `env:"MAX_CONTEXT_EXCHANGES" envDefault:"8"`
	LinkThreshold       float64 `env:"LINK_THRESHOLD" envDefault:"0.4"`
	TokenBudget         int     `env:"TOKEN_BUDGET" envDefault:"2000"`
	SummaryMaxChars     int     `env:"SUMMARY_MAX_CHARS" envDefault:"200"`
	ResponseMaxChars    int     `env:"RESPONSE_MAX_CHARS" envDefault:"4000"`

	// Embedding provider
	OpenAIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string        `env:"OPENAI_BASE_URL"`
	EmbeddingModel string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ChatModel      string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	EmbedTimeout   time.Duration `env:"EMBED_TIMEOUT" envDefault:"5s"`

	// Persistence
	PersistSessions bool `env:"PERSIST_SESSIONS" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "chatctx.db")
}
