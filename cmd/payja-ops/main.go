package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "payja-ops",
		Short:         "Operational tasks for the PayJA lending service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	ops := newOperations()
	rootCmd.AddCommand(disburseCmd(ops))
	rootCmd.AddCommand(sweepOverdueCmd(ops))
	rootCmd.AddCommand(exportLedgerCmd(ops))
	rootCmd.AddCommand(syncEmployeesCmd(ops))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
