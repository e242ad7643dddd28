package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/cli"
	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/infra/postgres"
	infraredis "quiz-sitting-service/internal/infra/redis"
)

func TestTakeQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(pgURL)
	defer db.Close()
	if err := cli.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	categories := []domain.Category{{Name: "Geography"}}
	if err := postgres.SeedCatalog(ctx, db, categories, []domain.Quiz{sampleQuiz()}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalog := postgres.NewCatalog(pool)
	store := postgres.NewStore(db)
	quizzes := infraredis.NewQuizRepository(redisClient, catalog, 5*time.Minute)
	board := app.NewScoreboard(catalog, store.Scores(), store.Users(), store.Progress(), store.Sittings())
	taker := app.NewQuizTaker(app.TakerDeps{
		Quizzes:  quizzes,
		Catalog:  catalog,
		Sittings: store.Sittings(),
		Scores:   store.Scores(),
		Progress: store.Progress(),
		Users:    store.Users(),
		Recorder: store,
		Sessions: infraredis.NewSessionStore(redisClient, 5*time.Minute),
	})

	alice := domain.Principal{UserID: "u1", Username: "alice"}
	bob := domain.Principal{UserID: "u2", Username: "bob"}
	answer(t, taker, app.TakeRequest{Principal: alice, Slug: "round-1"}, "b", "pacific")
	res := answer(t, taker, app.TakeRequest{Principal: bob, Slug: "round-1"}, "a", "pacific")
	if res.Result == nil || res.Result.Score != 1 || res.Result.Percent != 50 {
		t.Fatalf("unexpected result for bob: %+v", res.Result)
	}

	lb, err := board.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Users) != 2 || lb.Users[0].UserID != "u1" || lb.Users[0].Total != 2 || lb.Users[1].Total != 1 {
		t.Fatalf("expected alice leading bob 2-1, got %+v", lb.Users)
	}

	final, err := board.FinalProgress(ctx, alice)
	if err != nil {
		t.Fatalf("final progress: %v", err)
	}
	if len(final.CategoryScores) != 1 || final.CategoryScores[0].Percent != 100 {
		t.Fatalf("unexpected category scores %+v", final.CategoryScores)
	}

	if n, err := redisClient.Exists(ctx, "quiz:round-1").Result(); err != nil || n != 1 {
		t.Fatalf("expected quiz cached in redis, n=%d err=%v", n, err)
	}

	anon := app.TakeRequest{SessionID: "anon-1", Slug: "round-1"}
	res = answer(t, taker, anon, "b", "atlantic")
	if res.Result == nil || res.Result.Session == nil || res.Result.Session.Score != 1 {
		t.Fatalf("unexpected anonymous result %+v", res.Result)
	}
	if n, _ := redisClient.Exists(ctx, "quiz:anon:anon-1").Result(); n != 1 {
		t.Fatalf("expected anonymous session hash in redis")
	}
	lb, err = board.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Users) != 2 {
		t.Fatalf("anonymous takes must not reach the leaderboard, got %+v", lb.Users)
	}
}

func answer(t *testing.T, taker *app.QuizTaker, req app.TakeRequest, answers ...string) app.TakeResult {
	t.Helper()
	ctx := context.Background()
	res, err := taker.Take(ctx, req, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, a := range answers {
		res, err = taker.Take(ctx, req, &domain.Submission{Answer: a})
		if err != nil {
			t.Fatalf("answer %q: %v", a, err)
		}
	}
	return res
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:       1,
		Title:    "Round 1",
		Slug:     "round-1",
		Category: "Geography",
		Round:    1,
		Questions: []domain.Question{
			{
				ID:       11,
				Kind:     domain.KindMultipleChoice,
				Content:  "Q1 What is the capital of France?",
				Category: "Geography",
				Answers: domain.AnswerSet{Choices: []domain.Choice{
					{ID: "a", Text: "London"},
					{ID: "b", Text: "Paris", Correct: true},
				}},
			},
			{
				ID:       12,
				Kind:     domain.KindEssay,
				Content:  "Q2 Which ocean is the largest?",
				Category: "Geography",
				Answers:  domain.AnswerSet{Essay: []string{"pacific"}},
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
