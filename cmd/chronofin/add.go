package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/chronofin/chronofin/internal/cli"
	"github.com/chronofin/chronofin/internal/common"
	"github.com/chronofin/chronofin/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a transaction",
		Long: `Add a transaction to the ledger.

Expense and income amounts are positive magnitudes. Transfers create two
rows sharing a transfer id: a negative outgoing leg and a positive
incoming leg.`,
		Args: cobra.ExactArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().String("amount", "", "transaction amount (required)")
	cmd.Flags().String("type", "expense", "transaction type (expense, income, transfer)")
	cmd.Flags().String("currency", "USD", "ISO currency code")
	cmd.Flags().String("date", "", "transaction date, RFC 3339 or 2006-01-02 (default: now)")
	cmd.Flags().String("account", "", "account id")
	cmd.Flags().String("to-account", "", "destination account id (transfers only)")
	cmd.Flags().String("category", "", "category id")
	cmd.Flags().StringSlice("tags", nil, "tags")
	cmd.Flags().Bool("pending", false, "create as pending")
	cmd.Flags().Bool("manual-confirm", false, "require manual confirmation regardless of the global policy")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	amountStr, _ := cmd.Flags().GetString("amount")
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("invalid amount %q", amountStr), err)
	}

	typeStr, _ := cmd.Flags().GetString("type")
	txnType, err := model.ParseTransactionType(typeStr)
	if err != nil {
		return err
	}

	date := time.Now()
	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		date, err = parseDate(dateStr)
		if err != nil {
			return err
		}
	}

	currency, _ := cmd.Flags().GetString("currency")
	account, _ := cmd.Flags().GetString("account")
	toAccount, _ := cmd.Flags().GetString("to-account")
	category, _ := cmd.Flags().GetString("category")
	tags, _ := cmd.Flags().GetStringSlice("tags")
	pending, _ := cmd.Flags().GetBool("pending")

	var manualConfirmation *bool
	if cmd.Flags().Changed("manual-confirm") {
		v, _ := cmd.Flags().GetBool("manual-confirm")
		manualConfirmation = &v
	}

	base := model.Transaction{
		Date:                       date,
		CreatedAt:                  time.Now(),
		Name:                       name,
		AccountID:                  account,
		CategoryID:                 category,
		Currency:                   currency,
		Tags:                       tags,
		Type:                       txnType,
		Pending:                    pending,
		RequiresManualConfirmation: manualConfirmation,
	}

	var rows []model.Transaction
	if txnType == model.TypeTransfer {
		// A transfer is two legs with opposite-signed amounts.
		transferID := uuid.NewString()
		outgoing := base
		outgoing.ID = uuid.NewString()
		outgoing.Amount = amount.Abs().Neg()
		outgoing.TransferID = transferID

		incoming := base
		incoming.ID = uuid.NewString()
		incoming.Amount = amount.Abs()
		incoming.AccountID = toAccount
		incoming.TransferID = transferID

		rows = []model.Transaction{outgoing, incoming}
	} else {
		txn := base
		txn.ID = uuid.NewString()
		txn.Amount = amount.Abs()
		rows = []model.Transaction{txn}
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := store.SaveTransactions(ctx, rows); err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	for _, txn := range rows {
		fmt.Printf("%s %s  %s  %s\n",
			cli.SuccessStyle.Render("Added"),
			txn.ID,
			txn.Name,
			cli.RenderAmount(txn.Amount, txn.Currency))
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want RFC 3339 or 2006-01-02", s)
}
