package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		month string
		ok    bool
	}{
		{"2024-01-05", "2024-01-05", "2024-01", true},
		{" 2024-01-05 ", "2024-01-05", "2024-01", true},
		{"01/05/2024", "2024-01-05", "2024-01", true},
		{"1/5/2024", "2024-01-05", "2024-01", true},
		{"2024/01/05", "2024-01-05", "2024-01", true},
		{"2024-01", "", "", false},
		{"2024", "", "", false},
		{"", "", "", false},
		{"2024-13-01", "", "", false},
		{"yesterday", "", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.String() != tc.want || d.MonthKey() != tc.month {
				t.Fatalf("%q expected %s/%s, got %s/%s", tc.in, tc.want, tc.month, d.String(), d.MonthKey())
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestParseStoredDate(t *testing.T) {
	cases := []struct {
		in    string
		month string
	}{
		{"2024-03-09", "2024-03"},
		{"2024-03", "2024-03"},
		{"2024-03-xx", "2024-03"},
		{"2024-03-17 10:00", "2024-03"},
		{"1/5/2024", "2024-01"},
		{"03/09/2024", "2024-03"},
		{"3/9", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParseStoredDate(tc.in).MonthKey(); got != tc.month {
			t.Fatalf("%q expected month %q, got %q", tc.in, tc.month, got)
		}
	}
}

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", tc.in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:   12.5,
		Category: "Food",
		Date:     NewDate(2024, 1, 10),
		Type:     Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Amount: 0, Category: "c", Date: NewDate(2024, 1, 1), Type: Income}, ErrInvalidAmount},
		{Transaction{Amount: -3, Category: "c", Date: NewDate(2024, 1, 1), Type: Income}, ErrInvalidAmount},
		{Transaction{Amount: math.NaN(), Category: "c", Date: NewDate(2024, 1, 1), Type: Income}, ErrInvalidAmount},
		{Transaction{Amount: 1, Category: "  ", Date: NewDate(2024, 1, 1), Type: Income}, ErrEmptyCategory},
		{Transaction{Amount: 1, Category: strings.Repeat("x", MaxCategoryLen+1), Date: NewDate(2024, 1, 1), Type: Income}, ErrCategoryTooLong},
		{Transaction{Amount: 1, Category: "c", Type: Income}, ErrInvalidDate},
		{Transaction{Amount: 1, Category: "c", Date: NewDate(2024, 1, 1), Type: "Transfer"}, ErrInvalidType},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestValidateBudget(t *testing.T) {
	if err := ValidateBudget("Food", 0); err != nil {
		t.Fatalf("expected zero limit to be ok, got %v", err)
	}
	if err := ValidateBudget("", 10); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if err := ValidateBudget(strings.Repeat("x", MaxCategoryLen), 10); err != nil {
		t.Fatalf("expected category at the limit to be ok, got %v", err)
	}
	if err := ValidateBudget(strings.Repeat("x", MaxCategoryLen+1), 10); !errors.Is(err, ErrCategoryTooLong) {
		t.Fatalf("expected ErrCategoryTooLong, got %v", err)
	}
	if err := ValidateBudget("Food", -1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := ValidateUsername(" "); !errors.Is(err, ErrEmptyUsername) {
		t.Fatalf("expected ErrEmptyUsername, got %v", err)
	}
}

func TestTransactionDateText(t *testing.T) {
	cases := []struct {
		stored string
		date   Date
		want   string
	}{
		{"", NewDate(2024, 1, 5), "2024-01-05"},
		{"2024-03-17 10:00", NewDate(2024, 3, 17), "2024-03-17 10:00"},
		{"1/5/2024", NewDate(2024, 1, 5), "1/5/2024"},
		{"2023-11", NewDate(2023, 11, 1), "2023-11"},
		{"2024-03-17 10:00", NewDate(2024, 3, 18), "2024-03-18"},
	}
	for _, tc := range cases {
		tx := Transaction{Date: tc.date, StoredDate: tc.stored}
		if got := tx.DateText(); got != tc.want {
			t.Fatalf("stored %q date %s: got %q, want %q", tc.stored, tc.date, got, tc.want)
		}
	}
}
