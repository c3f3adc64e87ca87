package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandevgo/chatctx/internal/config"
	"github.com/sandevgo/chatctx/internal/core"
	"github.com/sandevgo/chatctx/internal/providers/openai"
	"github.com/sandevgo/chatctx/internal/service/detector"
	"github.com/sandevgo/chatctx/internal/service/engine"
	"github.com/sandevgo/chatctx/internal/service/memory"
	"github.com/sandevgo/chatctx/internal/storage/sqlite"
	"github.com/sandevgo/chatctx/pkg/log"
)

var sessionFlag string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session against the context engine",
	Long:  `Reads messages from stdin, runs follow-up detection on each, and answers with retrieved context when an answer provider is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		_ = godotenv.Load()
		cfg := config.NewAppConfig(ctx)
		logger := log.FromCtx(ctx)

		sessionID := sessionFlag
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		var provider *openai.Client
		var strategy detector.Strategy = detector.NewPatternStrategy(cfg.ContextThreshold)
		if cfg.OpenAIKey != "" {
			provider = openai.NewClient(openai.Config{
				APIKey:         cfg.OpenAIKey,
				BaseURL:        cfg.OpenAIBaseURL,
				EmbeddingModel: cfg.EmbeddingModel,
				ChatModel:      cfg.ChatModel,
			})

			embedding, err := detector.NewEmbeddingStrategy(ctx, provider, detector.DefaultIntentExamples(), cfg.ContextThreshold, cfg.EmbedTimeout)
			if err != nil {
				logger.Warn().Err(err).Msg("embedding strategy unavailable, running in pattern mode")
			} else {
				strategy = embedding
			}
		}

		engineCfg := engine.Config{
			ScoringWindow: cfg.ScoringWindow,
			Aggregator:    detector.DefaultAggregatorConfig(),
			Memory:        memory.DefaultConfig(),
		}
		engineCfg.Aggregator.FollowupThreshold = cfg.FollowupThreshold
		engineCfg.Memory.MaxContextExchanges = cfg.MaxContextExchanges
		engineCfg.Memory.LinkThreshold = cfg.LinkThreshold
		engineCfg.Memory.TokenBudget = cfg.TokenBudget
		engineCfg.Memory.SummaryMaxChars = cfg.SummaryMaxChars
		engineCfg.Memory.ResponseMaxChars = cfg.ResponseMaxChars

		var opts []engine.Option
		if cfg.PersistSessions {
			db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
			if err != nil {
				logger.Warn().Err(err).Msg("session persistence unavailable")
			} else {
				defer db.Close()
				opts = append(opts, engine.WithSnapshotStore(sqlite.NewSnapshots(db)))
			}
		}

		eng := engine.New(engineCfg, strategy, opts...)
		defer eng.Flush(ctx)

		logger.Info().
			Str("session_id", sessionID).
			Str("capability", strategy.Name()).
			Msg("chat session started")
		fmt.Println("chatctx ready. Commands: /stats, /clear, /quit")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			message := strings.TrimSpace(scanner.Text())
			if message == "" {
				continue
			}

			switch message {
			case "/quit":
				return scanner.Err()
			case "/stats":
				printStats(ctx, eng, sessionID)
				continue
			case "/clear":
				if err := eng.ClearSession(ctx, sessionID); err != nil {
					logger.Error().Err(err).Msg("failed to clear session")
				} else {
					fmt.Println("session cleared")
				}
				continue
			}

			var answerer core.AnswerProvider
			if provider != nil {
				answerer = provider
			}
			if err := handleMessage(ctx, eng, answerer, sessionID, message); err != nil {
				logger.Error().Err(err).Msg("failed to handle message")
			}
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "resume an existing session id")
	rootCmd.AddCommand(chatCmd)
}

func handleMessage(ctx context.Context, eng *engine.Engine, provider core.AnswerProvider, sessionID, message string) error {
	res, err := eng.DetectFollowup(ctx, sessionID, message)
	if err != nil {
		return err
	}

	fmt.Printf("[%s | %s | confidence %.2f | followup %v]\n",
		res.Intent, res.State, res.Confidence, res.IsFollowup)

	prompt := message
	if res.IsFollowup {
		contextText, err := eng.GetContext(ctx, sessionID, message, 0)
		if err != nil {
			return err
		}
		if contextText != "" {
			prompt = contextText
		}
	}

	var answer string
	if provider != nil {
		answer, err = provider.GenerateAnswer(ctx, prompt)
		if err != nil {
			return fmt.Errorf("failed to generate answer: %w", err)
		}
		fmt.Println(answer)
	}

	_, err = eng.AddExchange(ctx, sessionID, message, answer, res.Intent, core.DefaultImportance)
	return err
}

func printStats(ctx context.Context, eng *engine.Engine, sessionID string) {
	analytics, err := eng.GetAnalytics(ctx, sessionID)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to load analytics")
		return
	}

	fmt.Printf("exchanges: %d (resident %d)\n", analytics.TotalExchanges, analytics.WorkingMemorySize)
	fmt.Printf("state: %s, capability: %s\n", analytics.State, analytics.Capability)
	fmt.Printf("compression events: %d, avg relevance: %.2f\n", analytics.CompressionEvents, analytics.AvgRelevance)
	if len(analytics.Topics) > 0 {
		fmt.Printf("topics: %s\n", strings.Join(analytics.Topics, ", "))
	}
	if len(analytics.Entities) > 0 {
		fmt.Printf("entities: %s\n", strings.Join(analytics.Entities, ", "))
	}
}
