package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	discordrouter "github.com/thelux31/hiddendevsappforwhatever/internal/adapters/discord"
	"github.com/thelux31/hiddendevsappforwhatever/internal/adapters/httpstatus"
	"github.com/thelux31/hiddendevsappforwhatever/internal/adapters/translate"
	"github.com/thelux31/hiddendevsappforwhatever/internal/app/dispatch"
	"github.com/thelux31/hiddendevsappforwhatever/internal/app/service"
	"github.com/thelux31/hiddendevsappforwhatever/internal/domain"
	"github.com/thelux31/hiddendevsappforwhatever/internal/infra/config"
	"github.com/thelux31/hiddendevsappforwhatever/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Trivia questions: Postgres when configured, built-in list otherwise
	var bank service.QuestionBank = service.NewMemoryQuestions(domain.DefaultQuestions)
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		bank = openQuestionRepo(ctx, db, cfg, logger)
	}

	s, err := discordgo.New(cfg.BotToken())
	if err != nil {
		log.Fatal(err)
	}
	// message content is needed to read trivia answers
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent
	dc := discordrouter.NewClient(s, logger)

	awaiter := dispatch.NewAwaiter()
	trOpts := []translate.Option{translate.WithBaseURL(cfg.TranslateBaseURL)}
	if cfg.TranslateRatePerSec > 0 {
		trOpts = append(trOpts, translate.WithRateLimit(cfg.TranslateRatePerSec, 1))
	}
	tr := translate.New(trOpts...)

	reg := dispatch.NewRegistry()
	reg.MustRegister(service.NewModerationService(dc).Commands()...)
	reg.MustRegister(service.NewUtilityService(dc).Commands()...)
	reg.MustRegister(service.NewTriviaService(bank, awaiter, cfg.TriviaTimeout).Commands()...)
	reg.MustRegister(service.NewTranslateService(tr, cfg.TranslateTimeout).Commands()...)
	reg.Freeze()

	disp := dispatch.New(reg, dc, dc, logger, dispatch.Options{
		AckDeadline:    cfg.AckDeadline,
		MaxInFlight:    cfg.MaxInFlight,
		UserRatePerSec: cfg.UserRatePerSec,
		UserRateBurst:  cfg.UserRateBurst,
	})

	r := discordrouter.NewRouter(ctx, s, cfg.GuildID, reg, disp, awaiter, logger)
	r.SetMaxOutage(cfg.GatewayMaxOutage)
	r.Handlers()

	if err := s.Open(); err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	logger.Info("connected", "user", s.State.User.Username, "id", s.State.User.ID)

	if err := r.Register(); err != nil {
		log.Fatalf("register commands: %v", err)
	}
	logger.Info("commands registered", "guild", cfg.GuildID, "count", len(reg.All()))

	if cfg.HTTPAddr != "" {
		ops := httpstatus.New(probe{router: r, awaiter: awaiter}, logger)
		go func() {
			if err := ops.Start(ctx, cfg.HTTPAddr); err != nil {
				logger.Error("ops http stopped", "err", err)
			}
		}()
	}

	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				logger.Debug("heartbeat", "latency", dc.Latency(), "pending_awaits", awaiter.Pending())
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-r.Lost():
		logger.Error("gateway connection lost, exiting")
		stop()
		s.Close()
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openQuestionRepo(ctx context.Context, db *sql.DB, cfg config.Config, logger *slog.Logger) *storage.QuestionRepo {
	if err := storage.Migrate(ctx, db, logger); err != nil {
		log.Fatal("migrate: ", err)
	}
	repo := storage.NewQuestionRepo(db, cfg.TriviaCategories)
	n, err := repo.Count(ctx)
	if err != nil {
		log.Fatal("count questions: ", err)
	}
	if n == 0 {
		logger.Warn("question bank is empty; /trivia will report no questions", "categories", cfg.TriviaCategories)
	}
	logger.Info("question bank ready", "questions", n)
	return repo
}

// probe feeds the ops endpoints.
type probe struct {
	router  *discordrouter.Router
	awaiter *dispatch.Awaiter
}

func (p probe) Ready() bool        { return p.router.Ready() }
func (p probe) PendingAwaits() int { return p.awaiter.Pending() }
