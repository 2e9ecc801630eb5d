package archive

import (
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/doraboateng/archive-service/pkg/config"
	"github.com/doraboateng/archive-service/pkg/graph"
	"github.com/doraboateng/archive-service/pkg/source"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the relational data and load it into the graph",
	Long: `Fetch alphabets, expressions and languages from the relational source
and load them into the graph store. Safe to re-run: the load is idempotent.

Exits non-zero if extraction, connection or load fails; upserts committed
before a failure stand and a re-run repairs the remainder.`,
	RunE:         runSync,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("source-dsn", "", "MySQL/MariaDB data source name")
	viper.BindPFlag("source.dsn", syncCmd.Flags().Lookup("source-dsn"))
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("fetching data from source database")

	src, err := source.Open(ctx, cfg.Source.DSN, log)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := src.FetchAll(ctx)
	if err != nil {
		return err
	}

	log.Info("loading data into graph store", "addr", cfg.Graph.Addr)

	store, err := graph.OpenDgraphStore(cfg.Graph.Addr, storeOptions(cfg, log))
	if err != nil {
		return err
	}

	coordinator := graph.NewCoordinator(store,
		graph.WithLogger(log),
		graph.WithSkipTitles(cfg.Sync.SkipTitles))

	// The coordinator closes the store on every exit path.
	return coordinator.Run(ctx, data)
}

// storeOptions maps the configuration onto graph.StoreOptions.
func storeOptions(cfg *config.Config, log *slog.Logger) graph.StoreOptions {
	opts := graph.StoreOptions{
		RequestTimeout: time.Duration(cfg.Graph.RequestTimeoutSeconds) * time.Second,
		MaxRetries:     cfg.Graph.MaxRetries,
		RetryBackoff:   time.Duration(cfg.Graph.RetryBackoffMillis) * time.Millisecond,
		Logger:         log,
	}

	if cfg.CircuitBreaker.Enabled {
		cb := cfg.CircuitBreaker
		opts.Breaker = &gobreaker.Settings{
			Name:        "graph-store",
			MaxRequests: cb.MaxRequests,
			Interval:    time.Duration(cb.IntervalSeconds) * time.Second,
			Timeout:     time.Duration(cb.TimeoutSeconds) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= cb.ReadyToTripRatio
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			},
		}
	}

	return opts
}
