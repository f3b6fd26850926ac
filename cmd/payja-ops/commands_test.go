package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/service/banksync"
	"payja-lending/internal/service/ledger"
	"payja-lending/internal/service/overdue"
	"payja-lending/internal/service/settlement"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeServices struct {
	disbursed []primitive.ObjectID
	disburse  func(id primitive.ObjectID) (*settlement.Result, error)
	days      []string
	banks     []string
	syncAll   bool
	syncErr   error
}

func (f *fakeServices) Disburse(ctx context.Context, id primitive.ObjectID) (*settlement.Result, error) {
	f.disbursed = append(f.disbursed, id)
	return f.disburse(id)
}

func (f *fakeServices) Sweep(ctx context.Context) (*overdue.Report, error) {
	return &overdue.Report{Scanned: 4, MarkedOverdue: 3, LoansOverdue: 2}, nil
}

func (f *fakeServices) ExportDay(ctx context.Context, day string) (*ledger.Export, error) {
	f.days = append(f.days, day)
	return &ledger.Export{Day: day, Entries: 12, RemotePath: "/ledger/ledger-" + day + ".csv"}, nil
}

func (f *fakeServices) SyncBank(ctx context.Context, code string) (*banksync.Result, error) {
	f.banks = append(f.banks, code)
	return &banksync.Result{BankCode: code, Received: 2, Upserted: 2}, nil
}

func (f *fakeServices) SyncAll(ctx context.Context) ([]banksync.Result, error) {
	f.syncAll = true
	return []banksync.Result{{BankCode: "BCI", Upserted: 1}}, f.syncErr
}

func run(t *testing.T, f *fakeServices, build func(operations) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	released := false
	open := func(ctx context.Context) (*services, func(), error) {
		return &services{Settlement: f, Sweep: f, Ledger: f, BankSync: f}, func() { released = true }, nil
	}
	cmd := build(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, released, "services should be released")
	}
	return out.String(), err
}

func TestDisburseCmd(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("prints the settlement", func(t *testing.T) {
		f := &fakeServices{disburse: func(primitive.ObjectID) (*settlement.Result, error) {
			return &settlement.Result{Reference: "PJ9", Status: consts.LoanStatusActive}, nil
		}}
		out, err := run(t, f, disburseCmd, "--loan-id", id.Hex())

		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{id}, f.disbursed)
		assert.Contains(t, out, `"reference": "PJ9"`)
		assert.Contains(t, out, `"status": "ACTIVE"`)
	})

	t.Run("wallet failure still prints the partial result", func(t *testing.T) {
		f := &fakeServices{disburse: func(primitive.ObjectID) (*settlement.Result, error) {
			return &settlement.Result{Reference: "PJ9", Status: consts.LoanStatusDisbursed},
				fmt.Errorf("%w: timeout", consts.ErrorWalletCreditFailed)
		}}
		out, err := run(t, f, disburseCmd, "--loan-id", id.Hex())

		require.Error(t, err)
		assert.ErrorIs(t, err, consts.ErrorWalletCreditFailed)
		assert.Contains(t, out, `"status": "DISBURSED"`)
	})

	t.Run("invalid id", func(t *testing.T) {
		f := &fakeServices{}
		_, err := run(t, f, disburseCmd, "--loan-id", "nope")

		assert.Error(t, err)
		assert.Empty(t, f.disbursed)
	})

	t.Run("flag required", func(t *testing.T) {
		_, err := run(t, &fakeServices{}, disburseCmd)
		assert.Error(t, err)
	})
}

func TestSweepOverdueCmd(t *testing.T) {
	out, err := run(t, &fakeServices{}, sweepOverdueCmd)

	require.NoError(t, err)
	assert.JSONEq(t, `{"scanned":4,"markedOverdue":3,"loansOverdue":2}`, out)
}

func TestExportLedgerCmd(t *testing.T) {
	f := &fakeServices{}
	out, err := run(t, f, exportLedgerCmd, "--date", "2026-06-01")

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-06-01"}, f.days)
	assert.Equal(t, "exported 12 entries for 2026-06-01 to /ledger/ledger-2026-06-01.csv\n", out)
}

func TestSyncEmployeesCmd(t *testing.T) {
	t.Run("single bank", func(t *testing.T) {
		f := &fakeServices{}
		out, err := run(t, f, syncEmployeesCmd, "--bank", "BCI")

		require.NoError(t, err)
		assert.Equal(t, []string{"BCI"}, f.banks)
		assert.False(t, f.syncAll)
		assert.Contains(t, out, `"upserted": 2`)
	})

	t.Run("all banks reports partial failure", func(t *testing.T) {
		f := &fakeServices{syncErr: errors.New("BIM roster unavailable")}
		out, err := run(t, f, syncEmployeesCmd)

		assert.EqualError(t, err, "BIM roster unavailable")
		assert.True(t, f.syncAll)
		assert.Contains(t, out, `"bankCode": "BCI"`)
	})
}

func TestOpenFailureStopsCommand(t *testing.T) {
	open := func(ctx context.Context) (*services, func(), error) {
		return nil, nil, errors.New("mongo unreachable")
	}
	cmd := sweepOverdueCmd(open)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.EqualError(t, cmd.ExecuteContext(context.Background()), "mongo unreachable")
}
