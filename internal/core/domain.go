package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

// MaxCategoryLen bounds transaction and budget categories alike, so every
// budget can be matched by some transaction.
const MaxCategoryLen = 200

// Sentinels returned alongside ErrNotFound by the account lookups, so callers
// that only look at the value keep working.
const (
	UnknownUserID   int64 = -1
	UnknownUsername       = "Unknown"
)

type (
	TransactionType string

	User struct {
		ID       int64
		Username string
		Password string // stored verbatim
	}

	Transaction struct {
		ID       int64
		UserID   int64
		Amount   float64
		Category string // shown as "description"
		Date     Date
		Type     TransactionType

		// StoredDate is the date column as read, empty for new rows.
		StoredDate string
	}

	Budget struct {
		ID       int64
		UserID   int64
		Category string
		Amount   float64
	}
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmptyUsername      = errors.New("empty username")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = fmt.Errorf("category longer than %d characters", MaxCategoryLen)
	ErrInvalidType        = errors.New("invalid transaction type")
)

// ParseTransactionType accepts "income"/"expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}
	return nil
}

func (t Transaction) Validate() error {
	if !validAmount(t.Amount) || t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if err := validateCategory(t.Category); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// DateText is the value written to the date column. Text read from storage
// is kept while it still maps to Date, so rows in older formats survive edits
// that leave the date alone.
func (t Transaction) DateText() string {
	if t.StoredDate != "" && ParseStoredDate(t.StoredDate).Equal(t.Date.Time) {
		return t.StoredDate
	}
	return t.Date.String()
}

// ValidateBudget checks a budget limit. The category is used verbatim as the
// key.
func ValidateBudget(category string, amount float64) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if !validAmount(amount) || amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func validateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	if len(category) > MaxCategoryLen {
		return ErrCategoryTooLong
	}
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
