// Command palns-demo drives the palns engine against a toy knapsack
// destroy/repair operator set, exercising every external interface the
// core exposes: a construction heuristic, a destroy/repair library, an
// iteration-count abort predicate, a progress callback, the optional
// Prometheus metrics recorder, and the optional WebSocket broadcaster.
//
// Command structure follows the teacher pack's cobra convention (see
// ChuLiYu/raft-recovery's internal/cli): a root command with a --config
// flag and a run subcommand.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-palns/palns-engine/internal/demo"
	"github.com/go-palns/palns-engine/palns"
	"github.com/go-palns/palns-engine/palnscfg"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	if err := buildCLI().Execute(); err != nil {
		log.Fatal(err)
	}
}

func buildCLI() *cobra.Command {
	root := &cobra.Command{
		Use:     "palns-demo",
		Short:   "Run the PALNS engine against a toy knapsack operator set",
		Version: "1.0.0",
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (optional, defaults applied otherwise)")
	root.AddCommand(buildRunCommand())
	return root
}

func buildRunCommand() *cobra.Command {
	var items int
	var capacity float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build a random knapsack and search it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(items, capacity)
		},
	}
	cmd.Flags().IntVar(&items, "items", 30, "number of candidate items in the knapsack")
	cmd.Flags().Float64Var(&capacity, "capacity", 100, "knapsack capacity")
	return cmd
}

func runDemo(itemCount int, capacity float64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalogRng := rand.New(rand.NewSource(cfg.Search.RandomSeed))
	catalog := demo.RandomCatalog(itemCount, catalogRng)

	destroy := []palns.DestroyFunc{
		demo.RandomRemoval(0.3),
		demo.WorstRemoval(3),
	}
	repair := []palns.RepairFunc{
		demo.GreedyRepair,
		demo.RandomRepair,
	}

	metrics := palns.NewMetrics(len(destroy) * len(repair))
	if cfg.Metrics.Enabled {
		go func() {
			log.Printf("palns-demo: metrics listening on %s/metrics", cfg.Metrics.Addr)
			if err := metrics.ListenAndServe(cfg.Metrics.Addr); err != nil {
				log.Printf("palns-demo: metrics server stopped: %v", err)
			}
		}()
	}

	var broadcaster *palns.Broadcaster
	if cfg.Broadcast.Enabled {
		broadcaster = palns.NewBroadcaster()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/ws", broadcaster)
			log.Printf("palns-demo: broadcast listening on %s/ws", cfg.Broadcast.Addr)
			if err := http.ListenAndServe(cfg.Broadcast.Addr, mux); err != nil {
				log.Printf("palns-demo: broadcast server stopped: %v", err)
			}
		}()
	}

	maxIter := int64(cfg.Runtime.MaxIterations)
	maxDuration := cfg.Runtime.MaxDuration
	start := time.Now()
	var iterations int64
	abort := func(best palns.Solution) bool {
		n := atomic.AddInt64(&iterations, 1)
		if n >= maxIter {
			return true
		}
		return maxDuration > 0 && time.Since(start) >= maxDuration
	}

	progress := func(best palns.Solution) {
		if atomic.LoadInt64(&iterations)%500 == 0 {
			log.Printf("palns-demo: iteration %d best=%v", atomic.LoadInt64(&iterations), best)
		}
	}

	opts := []palns.Option{palns.WithMetrics(metrics), palns.WithProgress(progress)}
	if broadcaster != nil {
		opts = append(opts, palns.WithBroadcaster(broadcaster))
	}

	engine, err := palns.NewEngine(cfg.ToEngineConfig(), destroy, repair, opts...)
	if err != nil {
		return fmt.Errorf("palns-demo: %w", err)
	}

	build := func(ctx context.Context) (palns.Solution, error) {
		return demo.NewKnapsack(catalog, capacity, rand.New(rand.NewSource(cfg.Search.RandomSeed+1))), nil
	}

	best, err := engine.Solve(context.Background(), build, abort)
	if err != nil {
		return fmt.Errorf("palns-demo: search failed: %w", err)
	}

	log.Printf("palns-demo: finished in %s, best=%v", time.Since(start), best)
	fmt.Println(palns.WeightLog(engine.WeightStats()))
	return nil
}

func loadConfig() (palnscfg.EngineConfig, error) {
	if configFile == "" {
		return palnscfg.Default(), nil
	}
	return palnscfg.Load(configFile)
}
