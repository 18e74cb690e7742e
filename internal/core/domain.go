package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Education     Category = "Education"
	FoodAndDining Category = "Food & Dining"
	Transport     Category = "Transportation"
	Travel        Category = "Travel"
	Healthcare    Category = "Healthcare"
	Entertainment Category = "Entertainment"
	Housing       Category = "Housing"
	Shopping      Category = "Shopping"
	Others        Category = "Others"
)

// DateLayout is the canonical on-disk and display form of a Date.
const DateLayout = "02-01-2006"

// dateInputLayout also accepts single digit days and months.
const dateInputLayout = "2-1-2006"

// MinYear is the earliest year a Date may carry. It keeps parsed dates away
// from the zero time, which marks an unset Date.
const MinYear = 1900

type (
	Category string

	Date struct {
		time.Time
	}

	// LineItem is one recorded expense within a day and category.
	LineItem struct {
		Description string
		Amount      decimal.Decimal
	}

	// Entry is a validated expense waiting to be recorded for a date.
	Entry struct {
		Category    Category
		Description string
		Amount      decimal.Decimal
	}

	// Expense is a flattened ledger row.
	Expense struct {
		Date        Date
		Category    Category
		Description string
		Amount      decimal.Decimal
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
)

var categories = []Category{
	Education, FoodAndDining, Transport, Travel, Healthcare,
	Entertainment, Housing, Shopping, Others,
}

// Categories returns the fixed category list in menu order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// CategoryByIndex maps a 1-based menu index to its category.
func CategoryByIndex(i int) (Category, error) {
	if i < 1 || i > len(categories) {
		return "", fmt.Errorf("%w: index %d out of range 1-%d", ErrInvalidCategory, i, len(categories))
	}
	return categories[i-1], nil
}

// ParseCategory accepts the exact category label.
func ParseCategory(name string) (Category, error) {
	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, name)
}

func (c Category) Validate() error {
	_, err := ParseCategory(string(c))
	return err
}

func (c Category) String() string {
	return string(c)
}

// ParseDate parses a dd-mm-yyyy calendar date. Impossible dates such as
// 31-02-2024 and years before MinYear are rejected. Any date it returns
// passes Validate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(dateInputLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	d := Date{Time: t}
	if err := d.Validate(); err != nil {
		return Date{}, fmt.Errorf("%w: %q", err, s)
	}
	return d, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date as dd-mm-yyyy.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	if d.Year() < MinYear {
		return fmt.Errorf("%w: year %d is before %d", ErrInvalidDate, d.Year(), MinYear)
	}
	return nil
}

func (e Entry) Validate() error {
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if e.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, e.Amount)
	}
	return nil
}

// Item returns the line item recorded for the entry.
func (e Entry) Item() LineItem {
	return LineItem{Description: e.Description, Amount: e.Amount}
}
