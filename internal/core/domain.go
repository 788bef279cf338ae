package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SavingsCategoryID is the reserved id of the protected savings category.
// It always exists after load and can never be deleted.
const SavingsCategoryID = "savings"

const (
	Artur   Member = "Artur"
	Marlena Member = "Marlena"
)

type (
	// Member identifies which of the two household members recorded a
	// transaction.
	Member string

	// Category is a spending envelope with a monthly limit in whole
	// currency units.
	Category struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Limit    int64  `json:"limit"`
		Icon     string `json:"icon"`
		IsSystem bool   `json:"isSystem,omitempty"`
	}

	// SavingsGoal is kept for persisted-document compatibility. Current
	// logic does not read it.
	SavingsGoal struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		TargetAmount int64  `json:"targetAmount"`
		ActualAmount int64  `json:"actualAmount"`
	}

	// MonthConfig holds the declared income for one calendar month.
	MonthConfig struct {
		ID           string        `json:"id"` // "YYYY-MM"
		TotalIncome  int64         `json:"totalIncome"`
		SavingsGoals []SavingsGoal `json:"savingsGoals"`
	}

	// Transaction is a dated, signed entry. Positive amounts are expenses,
	// negative amounts income or refunds. ID and Timestamp never change
	// after creation.
	Transaction struct {
		ID         string `json:"id"`
		Amount     int64  `json:"amount"`
		CategoryID string `json:"categoryId"`
		Date       string `json:"date"` // "YYYY-MM-DD"
		Note       string `json:"note,omitempty"`
		CreatedBy  Member `json:"createdBy"`
		Timestamp  int64  `json:"timestamp"` // unix millis at creation
	}

	// MerchantMapping associates a lowercased substring of merchant text
	// with a category for auto-categorization of imported transactions.
	MerchantMapping struct {
		Pattern      string `json:"pattern"`
		CategoryID   string `json:"categoryId"`
		MerchantName string `json:"merchantName"`
	}

	// Document is the single shared household aggregate as persisted.
	// The current month id is derived from the wall clock and never stored.
	Document struct {
		Configs          map[string]MonthConfig `json:"configs"`
		Categories       []Category             `json:"categories"`
		Transactions     []Transaction          `json:"transactions"`
		MerchantMappings []MerchantMapping      `json:"merchantMappings"`
	}
)

var (
	ErrInvalidMonthID = errors.New("invalid month id, want YYYY-MM")
	ErrInvalidDate    = errors.New("invalid date, want YYYY-MM-DD")
	ErrEmptyName      = errors.New("empty name")
	ErrInvalidMember  = errors.New("invalid member")
	ErrEmptyCategory  = errors.New("empty category id")
	ErrEmptyPattern   = errors.New("empty pattern")
)

// Valid reports whether m is one of the two household members.
func (m Member) Valid() bool {
	return m == Artur || m == Marlena
}

// CurrentMonthID formats now as a "YYYY-MM" month id.
func CurrentMonthID(now time.Time) string {
	return fmt.Sprintf("%04d-%02d", now.Year(), int(now.Month()))
}

// ValidMonthID reports whether id has the "YYYY-MM" shape with a real month.
func ValidMonthID(id string) bool {
	t, err := time.Parse("2006-01", id)
	return err == nil && CurrentMonthID(t) == id
}

// ValidDate reports whether date has the "YYYY-MM-DD" shape.
func ValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// InMonth reports whether the transaction date falls in the given month.
// Matching is a string prefix check on "YYYY-MM", same as the dashboard.
func (t Transaction) InMonth(monthID string) bool {
	return strings.HasPrefix(t.Date, monthID)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c MonthConfig) Validate() error {
	if !ValidMonthID(c.ID) {
		return ErrInvalidMonthID
	}
	return nil
}

func (t Transaction) Validate() error {
	if !ValidDate(t.Date) {
		return ErrInvalidDate
	}
	if t.CategoryID == "" {
		return ErrEmptyCategory
	}
	if !t.CreatedBy.Valid() {
		return ErrInvalidMember
	}
	return nil
}

func (m MerchantMapping) Validate() error {
	if strings.TrimSpace(m.Pattern) == "" {
		return ErrEmptyPattern
	}
	if m.CategoryID == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Clone returns a deep copy of the document so callers can hand snapshots
// to the persister without racing later mutations.
func (d Document) Clone() Document {
	out := Document{
		Configs:          make(map[string]MonthConfig, len(d.Configs)),
		Categories:       make([]Category, len(d.Categories)),
		Transactions:     make([]Transaction, len(d.Transactions)),
		MerchantMappings: make([]MerchantMapping, len(d.MerchantMappings)),
	}
	for id, cfg := range d.Configs {
		goals := make([]SavingsGoal, len(cfg.SavingsGoals))
		copy(goals, cfg.SavingsGoals)
		cfg.SavingsGoals = goals
		out.Configs[id] = cfg
	}
	copy(out.Categories, d.Categories)
	copy(out.Transactions, d.Transactions)
	copy(out.MerchantMappings, d.MerchantMappings)
	return out
}
