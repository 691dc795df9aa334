package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "burrow",
	Short: "Burrow - Partitioned in-memory data grid node",
	Long: `Burrow is a single-binary data grid node that serves partitioned
key-value records over TCP.

Operations are dispatched onto partition-affine workers so all work
for a partition runs serialized on one goroutine, with urgent system
operations overtaking ordinary traffic.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Burrow version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(nodeCmd)
	rootCmd.AddCommand(opCmd)
}
