package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Credit  TransactionType = "credit"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	// Date carries calendar-day semantics; time-of-day is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Title       string          `json:"title"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"`
		Type        TransactionType `json:"type"`
		Date        Date            `json:"date"`
		Description string          `json:"description,omitempty"`
	}

	User struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Email        string `json:"email"`
		PasswordHash string `json:"-"`
		AvatarSet    bool   `json:"avatarSet"`
		Avatar       string `json:"avatar,omitempty"`
	}

	// Budget is a per-category monthly spending ceiling. Advisory only.
	Budget struct {
		UserID   string `json:"userId"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}
)

var (
	// ErrInvalidInput is the root of all field validation errors, so
	// callers can classify them with a single errors.Is check.
	ErrInvalidInput = errors.New("invalid input")

	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidBudget      = errors.New("budget amount must be positive")
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyEmail         = errors.New("empty email")
	ErrEmptyPassword      = errors.New("empty password")
	ErrInvalidType        = errors.New("transaction type must be credit or expense")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrInvalidDate        = errors.New("invalid date")
)

// NewDate creates a Date for year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON emits the calendar day as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON parses "2006-01-02" (UTC midnight).
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	d.Time = t
	return nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Credit, Expense:
		return nil
	}
	return ErrInvalidType
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if len(strings.TrimSpace(tx.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(tx.Title) > 200 {
		return fmt.Errorf("%w: title too long (max 200 characters)", ErrInvalidInput)
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if !ValidCategory(tx.Category) {
		return ErrUnknownCategory
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if len(tx.Description) > 500 {
		return fmt.Errorf("%w: description too long (max 500 characters)", ErrInvalidInput)
	}
	if strings.TrimSpace(tx.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	if !ValidCategory(b.Category) {
		return ErrUnknownCategory
	}
	if b.Amount.Cents <= 0 {
		return ErrInvalidBudget
	}
	return nil
}
