package archive

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doraboateng/archive-service/pkg/config"
	"github.com/doraboateng/archive-service/pkg/graph"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all data from the graph store",
	Long: `Drop every node and relation from the graph store. Administrative
escape hatch for rebuilding the archive from scratch; refuses to run
without --force.`,
	RunE:         runReset,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVar(&resetForce, "force", false, "actually drop all data")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		return fmt.Errorf("reset drops every node in the store; re-run with --force to confirm")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg.Log.Level)

	store, err := graph.OpenDgraphStore(cfg.Graph.Addr, storeOptions(cfg, log))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DropAll(cmd.Context()); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}

	log.Info("graph store reset complete")

	return nil
}
