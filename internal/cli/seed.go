package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-sitting-service/internal/config"
	"quiz-sitting-service/internal/infra/memory"
	"quiz-sitting-service/internal/infra/postgres"
	rediscache "quiz-sitting-service/internal/infra/redis"
)

// NewSeedCmd loads a catalogue YAML file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quizzes and questions from a catalogue YAML file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalogue YAML (defaults to catalog.path)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Catalog.Path
	}
	if file == "" {
		return fmt.Errorf("no catalogue file given")
	}
	data, err := memory.LoadCatalogFile(file)
	if err != nil {
		return err
	}

	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := Migrate(ctx, db); err != nil {
		return err
	}
	if err := postgres.SeedCatalog(ctx, db, data.Categories, data.Quizzes); err != nil {
		return err
	}

	// Drop cached copies of the reseeded quizzes.
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		cache := rediscache.NewQuizRepository(client, nil, config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute))
		for _, quiz := range data.Quizzes {
			if err := cache.Invalidate(ctx, quiz.Slug); err != nil {
				log.Printf("invalidate cached quiz %s: %v", quiz.Slug, err)
			}
		}
	}
	log.Printf("seeded %d categories and %d quizzes from %s", len(data.Categories), len(data.Quizzes), file)
	return nil
}
