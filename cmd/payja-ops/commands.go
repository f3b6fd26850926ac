package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"payja-lending/internal/app/runtime"
	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/service/banksync"
	"payja-lending/internal/service/ledger"
	"payja-lending/internal/service/overdue"
	"payja-lending/internal/service/settlement"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type disburser interface {
	Disburse(ctx context.Context, loanID primitive.ObjectID) (*settlement.Result, error)
}

type sweeper interface {
	Sweep(ctx context.Context) (*overdue.Report, error)
}

type ledgerExporter interface {
	ExportDay(ctx context.Context, day string) (*ledger.Export, error)
}

type employeeSyncer interface {
	SyncBank(ctx context.Context, bankCode string) (*banksync.Result, error)
	SyncAll(ctx context.Context) ([]banksync.Result, error)
}

type services struct {
	Settlement disburser
	Sweep      sweeper
	Ledger     ledgerExporter
	BankSync   employeeSyncer
}

// operations opens the services a command needs and returns the matching release func.
type operations func(ctx context.Context) (*services, func(), error)

func newOperations() operations {
	return func(ctx context.Context) (*services, func(), error) {
		c, err := runtime.Build(ctx)
		if err != nil {
			return nil, nil, err
		}
		return &services{
			Settlement: c.Settlement,
			Sweep:      c.Sweep,
			Ledger:     c.Ledger,
			BankSync:   c.BankSync,
		}, func() { c.Close(ctx); logger.Sync() }, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func disburseCmd(open operations) *cobra.Command {
	var loanID string
	cmd := &cobra.Command{
		Use:   "disburse",
		Short: "Run the settlement pipeline for an approved loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := primitive.ObjectIDFromHex(loanID)
			if err != nil {
				return fmt.Errorf("invalid --loan-id %q: %w", loanID, err)
			}
			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			res, err := svc.Settlement.Disburse(cmd.Context(), id)
			if res != nil {
				if werr := writeJSON(cmd.OutOrStdout(), res); werr != nil {
					return werr
				}
			}
			if errors.Is(err, consts.ErrorWalletCreditFailed) {
				return fmt.Errorf("bank leg settled, wallet credit pending: %w", err)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&loanID, "loan-id", "", "Loan id (24 character hex)")
	_ = cmd.MarkFlagRequired("loan-id")
	return cmd
}

func sweepOverdueCmd(open operations) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark past-due installments and their loans overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			report, err := svc.Sweep.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func exportLedgerCmd(open operations) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "export-ledger",
		Short: "Export one day of settlement transactions as CSV over SFTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			export, err := svc.Ledger.ExportDay(cmd.Context(), day)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries for %s to %s\n",
				export.Entries, export.Day, export.RemotePath)
			return err
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "Calendar day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func syncEmployeesCmd(open operations) *cobra.Command {
	var bankCode string
	cmd := &cobra.Command{
		Use:   "sync-employees",
		Short: "Refresh bank employee records from partner rosters",
		Long:  "Refresh bank employee records for one partner, or for every active partner when --bank is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if bankCode != "" {
				res, err := svc.BankSync.SyncBank(cmd.Context(), bankCode)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			}
			results, err := svc.BankSync.SyncAll(cmd.Context())
			if werr := writeJSON(cmd.OutOrStdout(), results); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&bankCode, "bank", "", "Bank partner code, e.g. BCI")
	return cmd
}
