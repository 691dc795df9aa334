package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/transport"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	opAddr      string
	opPartition int32
	opUrgent    bool
)

var opCmd = &cobra.Command{
	Use:   "op",
	Short: "Inject operations into a running node",
	Long: `Inject fire-and-forget operations into a node's transport listener.

Injected operations carry no call id, so the node executes them
without sending a response. Useful for smoke tests and load scripts.`,
}

var opPutCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Store a value under a key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inject(&types.Operation{
			PartitionID: opPartition,
			Urgent:      opUrgent,
			Kind:        types.OpPut,
			Key:         []byte(args[0]),
			Value:       []byte(args[1]),
		})
	},
}

var opDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Remove a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inject(&types.Operation{
			PartitionID: opPartition,
			Urgent:      opUrgent,
			Kind:        types.OpDelete,
			Key:         []byte(args[0]),
		})
	},
}

var opPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send a no-op through the dispatch core",
	RunE: func(cmd *cobra.Command, args []string) error {
		return inject(&types.Operation{
			PartitionID: opPartition,
			Urgent:      opUrgent,
			Kind:        types.OpNoop,
		})
	},
}

func inject(op *types.Operation) error {
	pkt, err := transport.OperationPacket(op)
	if err != nil {
		return err
	}

	client, err := transport.Dial(opAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Send(pkt); err != nil {
		return fmt.Errorf("failed to send operation: %w", err)
	}

	fmt.Printf("Sent %s to partition %d\n", op.Kind, op.PartitionID)
	return nil
}

func init() {
	opCmd.PersistentFlags().StringVar(&opAddr, "addr", "localhost:5701", "Node transport address")
	opCmd.PersistentFlags().Int32Var(&opPartition, "partition", 0, "Target partition id")
	opCmd.PersistentFlags().BoolVar(&opUrgent, "urgent", false, "Mark the operation urgent")

	opCmd.AddCommand(opPutCmd)
	opCmd.AddCommand(opDeleteCmd)
	opCmd.AddCommand(opPingCmd)
}
