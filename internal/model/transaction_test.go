package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func boolPtr(b bool) *bool { return &b }

func TestTransaction_GenerateHash(t *testing.T) {
	base := Transaction{
		ID:        "txn1",
		Date:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Name:      "STARBUCKS",
		Amount:    decimal.NewFromFloat(5.25),
		Currency:  "USD",
		AccountID: "acc1",
		Type:      TypeExpense,
	}

	tests := []struct {
		mutate   func(*Transaction)
		name     string
		wantSame bool
	}{
		{
			name:     "identical transactions have same hash",
			mutate:   func(_ *Transaction) {},
			wantSame: true,
		},
		{
			name:     "different amounts produce different hashes",
			mutate:   func(txn *Transaction) { txn.Amount = decimal.NewFromFloat(6.25) },
			wantSame: false,
		},
		{
			name:     "different dates produce different hashes",
			mutate:   func(txn *Transaction) { txn.Date = txn.Date.AddDate(0, 0, 1) },
			wantSame: false,
		},
		{
			name:     "different currencies produce different hashes",
			mutate:   func(txn *Transaction) { txn.Currency = "EUR" },
			wantSame: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.mutate(&other)
			got := base.GenerateHash() == other.GenerateHash()
			if got != tt.wantSame {
				t.Errorf("hash equality = %v, want %v", got, tt.wantSame)
			}
		})
	}
}

func TestTransaction_EffectiveRequiresConfirmation(t *testing.T) {
	tests := []struct {
		override *bool
		name     string
		global   bool
		want     bool
	}{
		{name: "inherits global true", override: nil, global: true, want: true},
		{name: "inherits global false", override: nil, global: false, want: false},
		{name: "override true wins over global false", override: boolPtr(true), global: false, want: true},
		{name: "override false wins over global true", override: boolPtr(false), global: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{RequiresManualConfirmation: tt.override}
			if got := txn.EffectiveRequiresConfirmation(tt.global); got != tt.want {
				t.Errorf("EffectiveRequiresConfirmation(%v) = %v, want %v", tt.global, got, tt.want)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseFrequency("biweekly"); err != nil {
		t.Errorf("ParseFrequency(biweekly) returned error: %v", err)
	}
	if _, err := ParseFrequency("fortnightly"); err == nil {
		t.Error("ParseFrequency(fortnightly) expected error, got nil")
	}
	if _, err := ParseGroupBy("allTime"); err != nil {
		t.Errorf("ParseGroupBy(allTime) returned error: %v", err)
	}
	if _, err := ParseTransferLayout("combine"); err != nil {
		t.Errorf("ParseTransferLayout(combine) returned error: %v", err)
	}
	if _, err := ParseTransactionType("loan"); err == nil {
		t.Error("ParseTransactionType(loan) expected error, got nil")
	}
}
