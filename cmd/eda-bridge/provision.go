package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kubealex/kubealex.eda/pkg/controller"
	"github.com/kubealex/kubealex.eda/pkg/provision"
)

var (
	planPath  string
	redisAddr string
	redisTTL  time.Duration
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Apply a plan of controller resources",
	RunE:  runProvision,
}

func init() {
	provisionCmd.Flags().StringVar(&planPath, "plan", "", "path to the plan YAML file (required)")
	provisionCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the shared lookup cache, empty for in-memory")
	provisionCmd.Flags().DurationVar(&redisTTL, "redis-ttl", time.Hour, "TTL for Redis lookup cache entries")
	_ = provisionCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(provisionCmd)
}

func runProvision(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	plan, err := provision.LoadPlan(planPath)
	if err != nil {
		return err
	}

	var cache controller.LookupCache
	if redisAddr != "" {
		cache, err = controller.NewRedisLookupCache(ctx, &controller.RedisCacheConfig{Addr: redisAddr, TTL: redisTTL}, logger)
		if err != nil {
			return err
		}
	} else {
		cache = controller.NewMemoryLookupCache()
	}
	defer func() { _ = cache.Close() }()

	client, err := controller.NewClient(&plan.Controller, logger, controller.WithLookupCache(cache))
	if err != nil {
		return err
	}

	applier, err := provision.NewApplier(client, logger)
	if err != nil {
		return err
	}

	results, err := applier.Apply(ctx, plan)
	for _, result := range results {
		logger.Info().
			Str("kind", result.Kind).
			Str("name", result.Name).
			Int("id", result.ID).
			Bool("created", result.Created).
			Msg("Provisioned.")
	}
	return err
}
