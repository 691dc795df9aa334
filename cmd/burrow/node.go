package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/node"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage a Burrow node",
}

var nodeStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a grid node",
	Long: `Start a grid node and serve operations until interrupted.

Without --config the node runs with defaults: an in-memory store,
the transport listener on :5701, and metrics on :9090.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		n, err := node.NewNode(cfg)
		if err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}

		if err := n.Start(); err != nil {
			return fmt.Errorf("failed to start node: %w", err)
		}

		fmt.Printf("Node %s started\n", n.ID())
		fmt.Printf("  Transport: %s\n", cfg.Transport.ListenAddr)
		fmt.Printf("  Metrics:   %s\n", cfg.Metrics.ListenAddr)
		fmt.Println("Press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\nShutting down...")
		n.Stop()
		return nil
	},
}

func init() {
	nodeStartCmd.Flags().String("config", "", "Path to YAML configuration file")
	nodeCmd.AddCommand(nodeStartCmd)
}
