package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brandonshearin/csrgraph/bfs"
	"github.com/brandonshearin/csrgraph/compute"
	"github.com/brandonshearin/csrgraph/csr"
	"github.com/brandonshearin/csrgraph/edgelist"
	"github.com/brandonshearin/csrgraph/wcc"
)

// how many leading results the bfs/wcc commands print to stdout
const printLimit = 30

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	With().Timestamp().Logger()

var workers int

func main() {
	rootCmd := &cobra.Command{
		Use:           "csrgraph",
		Short:         "Out-of-core graph analytics over memory-mapped CSR files",
		SilenceErrors: true,
		// arguments are validated before this hook runs, so a wrong argument
		// count still prints usage while later failures do not
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SilenceUsage = true
		},
	}
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "number of compute workers (0 = number of CPUs)")
	rootCmd.AddCommand(fromTxtCommand(), bfsCommand(), wccCommand())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func fromTxtCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "from_txt <input.edges> <out_dir>",
		Short: "Convert a sorted text edge list into an on-disk CSR graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			src, err := edgelist.OpenText[uint32](args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			start := time.Now()
			g, err := csr.BuildFrom[uint32](src, args[1])
			if err != nil {
				return err
			}
			defer g.Close()

			logger.Info().
				Int("vertices", g.NumVertices()).
				Int("edges", g.NumEdges()).
				Dur("took", time.Since(start)).
				Str("dir", args[1]).
				Msg("graph converted")
			return nil
		},
	}
}

func bfsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bfs <csr_dir> <src_id> [<out_file>]",
		Short: "Run a breadth-first search and report per-vertex hop counts",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("source vertex %q is not an integer", args[1])
			}

			g, err := csr.Open[uint32](args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			c, err := bfs.Run(cmd.Context(), g, srcID, compute.Config{Workers: workers}, logRound)
			if err != nil {
				return err
			}

			printResults(c.Data())
			if len(args) == 3 {
				logger.Info().Str("path", args[2]).Msg("saving distances")
				return c.SaveData(args[2])
			}
			return nil
		},
	}
}

func wccCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "wcc <csr_dir> [<out_file>]",
		Short: "Label weakly connected components",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := csr.Open[uint32](args[0])
			if err != nil {
				return err
			}
			defer g.Close()

			c, err := wcc.Run(cmd.Context(), g, compute.Config{Workers: workers}, logRound)
			if err != nil {
				return err
			}

			printResults(c.Data())
			if len(args) == 2 {
				logger.Info().Str("path", args[1]).Msg("saving component labels")
				return c.SaveData(args[1])
			}
			return nil
		},
	}
}

func logRound(round, active int, took time.Duration) {
	logger.Info().
		Int("iteration", round).
		Int("active", active).
		Dur("took", took).
		Msg("iteration complete")
}

func printResults(data []uint32) {
	limit := len(data)
	if limit > printLimit {
		limit = printLimit
	}

	fmt.Print("[ ")
	for i := 0; i < limit; i++ {
		fmt.Printf("%d:%d, ", i, data[i])
	}
	fmt.Println("]")
}
