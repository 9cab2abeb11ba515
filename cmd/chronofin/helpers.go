package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/chronofin/chronofin/internal/common"
	"github.com/chronofin/chronofin/internal/config"
	"github.com/chronofin/chronofin/internal/model"
	"github.com/chronofin/chronofin/internal/storage"
)

// openStorage opens the configured database and brings its schema up to
// date.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("failed to open database at %s", dbPath), err)
	}
	return store, nil
}

// displayAmount signs an amount for display: expenses negative, income
// positive, transfer legs as stored.
func displayAmount(txn model.Transaction) decimal.Decimal {
	if txn.Type == model.TypeExpense {
		return txn.Amount.Neg()
	}
	return txn.Amount
}
