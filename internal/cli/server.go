package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/config"
	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/infra/memory"
	"quiz-sitting-service/internal/infra/postgres"
	rediscache "quiz-sitting-service/internal/infra/redis"
	transport "quiz-sitting-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// catalogSource is both the catalogue and the loader behind the quiz cache.
type catalogSource interface {
	app.Catalog
	LoadQuiz(ctx context.Context, slug string) (domain.Quiz, error)
}

type records struct {
	sittings app.SittingStore
	scores   app.ScoreStore
	progress app.ProgressStore
	users    app.UserStore
	recorder app.AnswerRecorder
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Session.TTL, domain.AnonymousSessionTTL)
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var (
		catalog catalogSource
		store   records
	)
	if cfg.Postgres.URL != "" {
		db, err := openBun(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := Migrate(ctx, db); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		catalog = postgres.NewCatalog(pool)
		store = postgresRecords(db)
		log.Printf("using postgres catalogue and record store")
	} else {
		data := memory.CatalogData{}
		if cfg.Catalog.Path != "" {
			if data, err = memory.LoadCatalogFile(cfg.Catalog.Path); err != nil {
				return err
			}
		}
		catalog = memory.NewCatalog(data)
		store = records{
			sittings: memory.NewSittingStore(),
			scores:   memory.NewScoreStore(),
			progress: memory.NewProgressStore(),
			users:    memory.NewUserStore(),
		}
		log.Printf("using in-memory catalogue (%d quizzes) and record store", len(data.Quizzes))
	}

	var quizRepo app.QuizRepository
	var sessions app.SessionStore
	if redisClient != nil {
		quizRepo = rediscache.NewQuizRepository(redisClient, catalog, quizTTL)
		sessions = rediscache.NewSessionStore(redisClient, sessionTTL)
	} else {
		quizRepo = memory.NewQuizRepository(catalog, quizTTL)
		sessions = memory.NewSessionStore()
	}

	board := app.NewScoreboard(catalog, store.scores, store.users, store.progress, store.sittings)
	hub := app.NewHub(board)
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)
	taker := app.NewQuizTaker(app.TakerDeps{
		Quizzes:    quizRepo,
		Catalog:    catalog,
		Sittings:   store.sittings,
		Scores:     store.scores,
		Progress:   store.progress,
		Users:      store.users,
		Sessions:   sessions,
		Listener:   hub,
		Recorder:   store.recorder,
		SessionTTL: sessionTTL,
	})

	handler := transport.NewHandler(
		app.NewCatalogService(catalog, quizRepo),
		taker,
		board,
		app.NewMarkingService(store.sittings, catalog),
		transport.NewSessions(cfg.Session.Cookie, sessionTTL),
		transport.JSONRenderer{},
	)
	router := transport.NewRouter(handler, transport.NewWSHandler(hub), transport.NewAuthenticator(cfg.Auth.JWTSecret))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func postgresRecords(db *bun.DB) records {
	s := postgres.NewStore(db)
	return records{
		sittings: s.Sittings(),
		scores:   s.Scores(),
		progress: s.Progress(),
		users:    s.Users(),
		recorder: s,
	}
}
