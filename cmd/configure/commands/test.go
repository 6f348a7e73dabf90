package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/givehope/donation-api/internal/config"
	"github.com/givehope/donation-api/internal/database"
	"github.com/givehope/donation-api/internal/queue"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test backend connectivity",
		Long:  "Verify the configured database, Redis and RabbitMQ are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer func() { _ = db.Close() }()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("database ping: %w", err)
			}
			fmt.Println("✓ Database is reachable")

			redisOpts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			redisClient := redis.NewClient(redisOpts)
			defer func() { _ = redisClient.Close() }()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			fmt.Println("✓ Redis is reachable")

			if cfg.RabbitMQURL == "" {
				fmt.Println("- RabbitMQ not configured, skipping")
			} else {
				q, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
				if err != nil {
					return fmt.Errorf("rabbitmq: %w", err)
				}
				defer func() { _ = q.Close() }()
				if err := q.HealthCheck(ctx); err != nil {
					return fmt.Errorf("rabbitmq health check: %w", err)
				}
				fmt.Println("✓ RabbitMQ is reachable")
			}

			fmt.Println("\n✓ Connectivity test passed")
			return nil
		},
	}
}
