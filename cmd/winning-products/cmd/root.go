// Package cmd implements the winning-products CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/winning-products/internal/api/client"
	"github.com/donaldgifford/winning-products/internal/config"
	"github.com/donaldgifford/winning-products/internal/engine"
	"github.com/donaldgifford/winning-products/internal/rainforest"
	"github.com/donaldgifford/winning-products/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "winning-products",
	Short: "Find winning products in Amazon search results",
	Long: "winning-products fetches one page of Amazon search results through the\n" +
		"Rainforest API, normalizes the listings and ranks them by a winning score\n" +
		"built from rating, review volume and price. It can also rank saved\n" +
		"responses offline and serve the same pipeline over HTTP.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		String("config", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().
		String("server", "", "API server URL; when set, commands go through a running server")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")
	rootCmd.PersistentFlags().
		String("log-level", "", "override logging.level from the config file")

	for _, name := range []string{"config", "server", "output", "log-level"} {
		cobra.CheckErr(viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)))
	}

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(rankCmd())
	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(quotaCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	viper.SetEnvPrefix("WP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if lvl := viper.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

func serverURL() string {
	return strings.TrimRight(viper.GetString("server"), "/")
}

func newClient() *apiclient.Client {
	return apiclient.New(serverURL())
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// newRainforestClient builds the upstream client and its rate limiter from
// the config. Without an API key every call fails with ErrMissingAPIKey
// before touching the limiter.
func newRainforestClient(cfg *config.Config) (*rainforest.HTTPClient, *rainforest.RateLimiter) {
	rl := rainforest.NewRateLimiter(
		cfg.Rainforest.RateLimit.PerSecond,
		cfg.Rainforest.RateLimit.Burst,
		cfg.Rainforest.RateLimit.DailyLimit,
	)

	rf := rainforest.NewHTTPClient(cfg.Rainforest.APIKey,
		rainforest.WithBaseURL(cfg.Rainforest.BaseURL),
		rainforest.WithDomain(cfg.Rainforest.Domain),
		rainforest.WithHTTPClient(&http.Client{Timeout: cfg.Rainforest.Timeout}),
		rainforest.WithRateLimiter(rl),
	)
	return rf, rl
}

// newEngine builds the pipeline. A nil client limits it to offline ranking.
func newEngine(cfg *config.Config, log *slog.Logger, client rainforest.Client) *engine.Engine {
	return engine.NewEngine(client,
		engine.WithLogger(log),
		engine.WithLimit(cfg.Ranking.Limit),
		engine.WithTop(cfg.Ranking.Top),
		engine.WithMode(cfg.Ranking.RankMode()),
	)
}
