package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/internal"
)

// newLedgerFixture builds a ledger over a fresh fake store with the default
// vocabulary seeded and the clock pinned to 2025-03-15 noon UTC.
func newLedgerFixture(t *testing.T) (*LedgerService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	provider := &fakeProvider{store: store}
	categories := NewCategoryService(provider, time.Minute, nil)
	if err := categories.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("EnsureDefaults() error = %v", err)
	}

	ledger := NewLedgerService(provider, categories, time.UTC, nil)
	ledger.Clock = func() time.Time {
		return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	}
	return ledger, store
}

func TestLedgerService_AddIncome(t *testing.T) {
	ledger, store := newLedgerFixture(t)
	ctx := context.Background()

	entry, err := ledger.AddIncome(ctx, AddEntryInput{
		Date:          "2025-03-15",
		Amount:        "1.250,50",
		Category:      "Ventas",
		Description:   "ventas del día",
		PaymentMethod: models.PaymentMethodCash,
		ActorID:       "maria",
	})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("Expected stored entry to carry a backend id")
	}
	if models.FormatAmount(entry.Amount) != "1250.50" {
		t.Errorf("Amount = %s, want 1250.50", models.FormatAmount(entry.Amount))
	}
	if entry.Kind != models.EntryKindIncome {
		t.Errorf("Kind = %s, want income", entry.Kind)
	}
	if entry.ActorID != "maria" {
		t.Errorf("ActorID = %q, want maria", entry.ActorID)
	}
	if store.count(internal.TableDailyIncome) != 1 {
		t.Errorf("Expected one income row, got %d", store.count(internal.TableDailyIncome))
	}
}

func TestLedgerService_AddExpense(t *testing.T) {
	ledger, _ := newLedgerFixture(t)
	ctx := context.Background()

	entry, err := ledger.AddExpense(ctx, AddEntryInput{
		Date:          "2025-03-15",
		Amount:        8498.42,
		Category:      "Compras",
		Description:   "media res",
		PaymentMethod: models.PaymentMethodTransfer,
		Supplier:      "Frigorífico Sur",
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	// Large amounts survive the round trip intact; the historical schema
	// truncated anything above 999.99.
	if models.FormatAmount(entry.Amount) != "8498.42" {
		t.Errorf("Amount = %s, want 8498.42", models.FormatAmount(entry.Amount))
	}
	if entry.Supplier != "Frigorífico Sur" {
		t.Errorf("Supplier = %q, want Frigorífico Sur", entry.Supplier)
	}
}

func TestLedgerService_AddValidation(t *testing.T) {
	ledger, store := newLedgerFixture(t)
	ctx := context.Background()

	valid := AddEntryInput{
		Date:          "2025-03-15",
		Amount:        "100.00",
		Category:      "Ventas",
		PaymentMethod: models.PaymentMethodCash,
	}

	tests := []struct {
		name    string
		mutate  func(*AddEntryInput)
		errType error
	}{
		{
			name:    "Zero Amount",
			mutate:  func(in *AddEntryInput) { in.Amount = "0" },
			errType: models.ErrAmountNonPositive,
		},
		{
			name:    "Amount Above Ceiling",
			mutate:  func(in *AddEntryInput) { in.Amount = "100000000.00" },
			errType: models.ErrAmountOutOfRange,
		},
		{
			name:    "Malformed Amount",
			mutate:  func(in *AddEntryInput) { in.Amount = "mucho" },
			errType: models.ErrAmountMalformed,
		},
		{
			name:    "Date Two Days Ahead",
			mutate:  func(in *AddEntryInput) { in.Date = "2025-03-17" },
			errType: models.ErrDateOutOfRange,
		},
		{
			name:   "Tomorrow Is Tolerated",
			mutate: func(in *AddEntryInput) { in.Date = "2025-03-16" },
		},
		{
			name:    "Unknown Category",
			mutate:  func(in *AddEntryInput) { in.Category = "Inexistente" },
			errType: models.ErrUnknownCategory,
		},
		{
			name:    "Expense Category On Income",
			mutate:  func(in *AddEntryInput) { in.Category = "Compras" },
			errType: models.ErrCategoryKindMismatch,
		},
		{
			name:    "Invalid Payment Method",
			mutate:  func(in *AddEntryInput) { in.PaymentMethod = "Cheque" },
			errType: models.ErrInvalidPaymentMethod,
		},
		{
			name: "Category Checked Before Payment Method",
			mutate: func(in *AddEntryInput) {
				in.Category = "Inexistente"
				in.PaymentMethod = "Cheque"
			},
			errType: models.ErrUnknownCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := store.count(internal.TableDailyIncome)

			input := valid
			tt.mutate(&input)
			_, err := ledger.AddIncome(ctx, input)

			if tt.errType == nil {
				if err != nil {
					t.Errorf("AddIncome() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.errType) {
				t.Errorf("AddIncome() error = %v, want %v", err, tt.errType)
			}
			if store.count(internal.TableDailyIncome) != before {
				t.Error("Expected no write on a validation failure")
			}
		})
	}
}

func TestLedgerService_UpdateEntry(t *testing.T) {
	ledger, _ := newLedgerFixture(t)
	ctx := context.Background()

	entry, err := ledger.AddIncome(ctx, AddEntryInput{
		Date:          "2025-03-14",
		Amount:        "100.00",
		Category:      "Ventas",
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}

	newAmount := "250,75"
	newMethod := models.PaymentMethodCard
	updated, err := ledger.UpdateEntry(ctx, entry.ID, models.EntryKindIncome, models.EntryPatch{
		Amount:        newAmount,
		PaymentMethod: &newMethod,
	})
	if err != nil {
		t.Fatalf("UpdateEntry() error = %v", err)
	}
	if models.FormatAmount(updated.Amount) != "250.75" {
		t.Errorf("Amount = %s, want 250.75", models.FormatAmount(updated.Amount))
	}
	if updated.PaymentMethod != models.PaymentMethodCard {
		t.Errorf("PaymentMethod = %s, want %s", updated.PaymentMethod, models.PaymentMethodCard)
	}

	// Untouched fields survive the patch.
	stored, err := ledger.ListEntries(ctx, nil, "2025-03-14", "2025-03-14")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(stored))
	}
	if stored[0].Category != "Ventas" {
		t.Errorf("Category = %q, want Ventas", stored[0].Category)
	}
	if models.FormatAmount(stored[0].Amount) != "250.75" {
		t.Errorf("Stored amount = %s, want 250.75", models.FormatAmount(stored[0].Amount))
	}
}

func TestLedgerService_UpdateEntry_Errors(t *testing.T) {
	ledger, _ := newLedgerFixture(t)
	ctx := context.Background()

	entry, err := ledger.AddIncome(ctx, AddEntryInput{
		Date:          "2025-03-14",
		Amount:        "100.00",
		Category:      "Ventas",
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("AddIncome() error = %v", err)
	}

	badDate := "2025-03-20"
	supplier := "someone"

	tests := []struct {
		name    string
		id      string
		kind    models.EntryKind
		patch   models.EntryPatch
		errType error
	}{
		{
			name:    "Missing Entry",
			id:      "no-such-id",
			kind:    models.EntryKindIncome,
			patch:   models.EntryPatch{Amount: "1.00"},
			errType: models.ErrEntryNotFound,
		},
		{
			name:    "Invalid Kind",
			id:      entry.ID,
			kind:    "transfer",
			patch:   models.EntryPatch{Amount: "1.00"},
			errType: models.ErrInvalidEntryKind,
		},
		{
			name:    "Patched Amount Rejected",
			id:      entry.ID,
			kind:    models.EntryKindIncome,
			patch:   models.EntryPatch{Amount: "0"},
			errType: models.ErrAmountNonPositive,
		},
		{
			name:    "Patched Date Rejected",
			id:      entry.ID,
			kind:    models.EntryKindIncome,
			patch:   models.EntryPatch{Date: &badDate},
			errType: models.ErrDateOutOfRange,
		},
		{
			name:    "Supplier On Income Entry",
			id:      entry.ID,
			kind:    models.EntryKindIncome,
			patch:   models.EntryPatch{Supplier: &supplier},
			errType: models.ErrInvalidEntryKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.UpdateEntry(ctx, tt.id, tt.kind, tt.patch)
			if !errors.Is(err, tt.errType) {
				t.Errorf("UpdateEntry() error = %v, want %v", err, tt.errType)
			}
		})
	}

	// A rejected patch leaves the stored entry untouched.
	stored, err := ledger.ListEntries(ctx, nil, "2025-03-14", "2025-03-14")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(stored) != 1 || models.FormatAmount(stored[0].Amount) != "100.00" {
		t.Errorf("Expected original entry to survive rejected patches, got %+v", stored)
	}
}

func TestLedgerService_DeleteEntry(t *testing.T) {
	ledger, store := newLedgerFixture(t)
	ctx := context.Background()

	entry, err := ledger.AddExpense(ctx, AddEntryInput{
		Date:          "2025-03-15",
		Amount:        "300.00",
		Category:      "Compras",
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	if err := ledger.DeleteEntry(ctx, entry.ID, models.EntryKindExpense); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if store.count(internal.TableDailyExpenses) != 0 {
		t.Error("Expected expense row to be removed")
	}

	if err := ledger.DeleteEntry(ctx, entry.ID, models.EntryKindExpense); !errors.Is(err, models.ErrEntryNotFound) {
		t.Errorf("DeleteEntry() second call error = %v, want %v", err, models.ErrEntryNotFound)
	}
}

func TestLedgerService_ListEntries(t *testing.T) {
	ledger, _ := newLedgerFixture(t)
	ctx := context.Background()

	// Insert out of date order to prove the merge re-sorts.
	inputs := []struct {
		kind   models.EntryKind
		date   string
		amount string
	}{
		{models.EntryKindIncome, "2025-03-14", "200.00"},
		{models.EntryKindExpense, "2025-03-13", "50.00"},
		{models.EntryKindIncome, "2025-03-13", "100.00"},
		{models.EntryKindExpense, "2025-03-14", "75.00"},
	}
	for _, in := range inputs {
		input := AddEntryInput{
			Date:          in.date,
			Amount:        in.amount,
			PaymentMethod: models.PaymentMethodCash,
		}
		var err error
		if in.kind == models.EntryKindIncome {
			input.Category = "Ventas"
			_, err = ledger.AddIncome(ctx, input)
		} else {
			input.Category = "Compras"
			_, err = ledger.AddExpense(ctx, input)
		}
		if err != nil {
			t.Fatalf("add %s on %s: %v", in.kind, in.date, err)
		}
	}

	all, err := ledger.ListEntries(ctx, nil, "2025-03-13", "2025-03-14")
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListEntries() returned %d entries, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Date > all[i].Date {
			t.Errorf("Entries not ordered by date: %s before %s", all[i-1].Date, all[i].Date)
		}
		if all[i-1].Date == all[i].Date && all[i-1].CreatedAt.After(all[i].CreatedAt) {
			t.Error("Entries with equal dates not ordered by creation time")
		}
	}

	expense := models.EntryKindExpense
	onlyExpenses, err := ledger.ListEntries(ctx, &expense, "2025-03-13", "2025-03-14")
	if err != nil {
		t.Fatalf("ListEntries(expense) error = %v", err)
	}
	if len(onlyExpenses) != 2 {
		t.Errorf("ListEntries(expense) returned %d entries, want 2", len(onlyExpenses))
	}

	narrow, err := ledger.ListEntries(ctx, nil, "2025-03-14", "2025-03-14")
	if err != nil {
		t.Fatalf("ListEntries(one day) error = %v", err)
	}
	if len(narrow) != 2 {
		t.Errorf("ListEntries(one day) returned %d entries, want 2", len(narrow))
	}

	if _, err := ledger.ListEntries(ctx, nil, "13/03/2025", "2025-03-14"); !errors.Is(err, models.ErrDateMalformed) {
		t.Errorf("ListEntries(bad from) error = %v, want %v", err, models.ErrDateMalformed)
	}
}

func TestLedgerService_Today(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{store: store}
	categories := NewCategoryService(provider, time.Minute, nil)

	buenosAires, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	ledger := NewLedgerService(provider, categories, buenosAires, nil)
	// 01:30 UTC on March 16 is still March 15 in Buenos Aires (UTC-3).
	ledger.Clock = func() time.Time {
		return time.Date(2025, 3, 16, 1, 30, 0, 0, time.UTC)
	}

	today := ledger.Today()
	if got := today.Format(models.DateLayout); got != "2025-03-15" {
		t.Errorf("Today() = %s, want 2025-03-15", got)
	}
}
