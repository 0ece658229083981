package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codegraph/internal/pipeline"
)

var (
	rootCmd = &cobra.Command{
		Use:   "codegraph",
		Short: "Static-analysis code graph for TypeScript/JavaScript projects",
	}
	dbPath      string
	concurrency int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "codegraph.db", "Path to the graph database (SQLite)")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "c", 4, "Parallel file parses")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statsCmd)
}

func newSync(root string) *pipeline.Sync {
	abs, err := filepath.Abs(root)
	if err != nil {
		log.Fatalf("Failed to resolve project root: %v", err)
	}
	s := pipeline.NewSync(dbPath, abs)
	s.Concurrency = concurrency
	return s
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Parse the whole project and store the graph snapshot",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		if err := newSync(root).FullScan(context.Background()); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Incrementally update the graph from git changes",
	Run: func(cmd *cobra.Command, args []string) {
		baseRef, _ := cmd.Flags().GetString("base")
		if err := newSync(".").Update(context.Background(), baseRef); err != nil {
			log.Fatalf("Update failed: %v", err)
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the stored graph's shape",
	Run: func(cmd *cobra.Command, args []string) {
		if err := newSync(".").Stats(context.Background()); err != nil {
			log.Fatalf("Stats failed: %v", err)
		}
	},
}

func init() {
	updateCmd.Flags().String("base", "HEAD", "Git ref to diff against")
}
