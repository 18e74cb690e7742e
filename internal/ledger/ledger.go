// Package ledger holds the in-memory expense ledger: dates mapped to day
// records, each day mapping categories to an ordered list of line items.
//
// Dates and categories keep their insertion order, which is also the order
// every query reports them in. A Ledger is not safe for concurrent use.
package ledger

import (
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// Ledger is the full set of recorded expenses, keyed by date.
type Ledger struct {
	days  map[string]*DayRecord
	order []string
}

// DayRecord holds all expenses recorded for one date, keyed by category.
type DayRecord struct {
	date  core.Date
	order []core.Category
	items map[core.Category][]core.LineItem
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{days: make(map[string]*DayRecord)}
}

// Len returns the number of dates in the ledger.
func (l *Ledger) Len() int {
	return len(l.order)
}

func (l *Ledger) IsEmpty() bool {
	return l.Len() == 0
}

// Dates returns the recorded dates in insertion order.
func (l *Ledger) Dates() []core.Date {
	out := make([]core.Date, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.days[key].date)
	}
	return out
}

// Day returns the record for date, if any.
func (l *Ledger) Day(date core.Date) (*DayRecord, bool) {
	d, ok := l.days[date.String()]
	return d, ok
}

// AddDay creates an empty record for date unless one exists, and returns it.
func (l *Ledger) AddDay(date core.Date) *DayRecord {
	key := date.String()
	if d, ok := l.days[key]; ok {
		return d
	}
	d := &DayRecord{date: date, items: make(map[core.Category][]core.LineItem)}
	l.days[key] = d
	l.order = append(l.order, key)
	return d
}

// RecordEntries appends each entry's description and amount to the item list
// of its category under date, creating the date and the category when absent.
// Existing items are never replaced or deduplicated. All entries are validated
// first; on error the ledger is left untouched.
//
// Recording zero entries still creates the date.
func (l *Ledger) RecordEntries(date core.Date, entries []core.Entry) error {
	if err := date.Validate(); err != nil {
		return err
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	day := l.AddDay(date)
	for _, e := range entries {
		day.Append(e.Category, e.Item())
	}
	return nil
}

// CategoryTotalsPerDate yields, for every date in insertion order, the total
// of each category present that day in insertion order.
func (l *Ledger) CategoryTotalsPerDate() iter.Seq2[core.Date, []core.CategoryAmount] {
	return func(yield func(core.Date, []core.CategoryAmount) bool) {
		for _, key := range l.order {
			day := l.days[key]
			if !yield(day.date, day.CategoryTotals()) {
				return
			}
		}
	}
}

// TotalForDate sums every amount recorded under date. The boolean is false
// when the date has no record at all, which is different from a zero total.
func (l *Ledger) TotalForDate(date core.Date) (decimal.Decimal, bool) {
	day, ok := l.Day(date)
	if !ok {
		return decimal.Zero, false
	}
	return day.Total(), true
}

// AllEntries yields every line item flattened with its date and category.
func (l *Ledger) AllEntries() iter.Seq[core.Expense] {
	return func(yield func(core.Expense) bool) {
		for _, key := range l.order {
			day := l.days[key]
			for _, c := range day.order {
				for _, it := range day.items[c] {
					e := core.Expense{
						Date:        day.date,
						Category:    c,
						Description: it.Description,
						Amount:      it.Amount,
					}
					if !yield(e) {
						return
					}
				}
			}
		}
	}
}

// CategoryTotalsAcrossAllDates sums each category over every date. A category
// appears only if at least one item was recorded under it.
func (l *Ledger) CategoryTotalsAcrossAllDates() map[core.Category]decimal.Decimal {
	totals := make(map[core.Category]decimal.Decimal)
	for _, key := range l.order {
		day := l.days[key]
		for _, c := range day.order {
			items := day.items[c]
			if len(items) == 0 {
				continue
			}
			totals[c] = totals[c].Add(core.SumItems(items))
		}
	}
	return totals
}

// Date returns the day's date.
func (d *DayRecord) Date() core.Date {
	return d.date
}

// Categories returns the categories of the day in insertion order.
func (d *DayRecord) Categories() []core.Category {
	return append([]core.Category(nil), d.order...)
}

// Items returns a copy of the items recorded under c.
func (d *DayRecord) Items(c core.Category) []core.LineItem {
	return append([]core.LineItem(nil), d.items[c]...)
}

// HasCategory reports whether c has an item list on this day, even an empty one.
func (d *DayRecord) HasCategory(c core.Category) bool {
	_, ok := d.items[c]
	return ok
}

// Append adds items to the end of c's list, creating the list if needed.
// Calling it without items only creates the list.
func (d *DayRecord) Append(c core.Category, items ...core.LineItem) {
	if _, ok := d.items[c]; !ok {
		d.order = append(d.order, c)
		d.items[c] = make([]core.LineItem, 0, len(items))
	}
	d.items[c] = append(d.items[c], items...)
}

// CategoryTotals returns the total of every category of the day.
func (d *DayRecord) CategoryTotals() []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(d.order))
	for _, c := range d.order {
		out = append(out, core.CategoryAmount{Category: c, Amount: core.SumItems(d.items[c])})
	}
	return out
}

// Total sums all amounts of the day.
func (d *DayRecord) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range d.order {
		total = total.Add(core.SumItems(d.items[c]))
	}
	return total
}

// ItemCount returns the number of line items recorded on the day.
func (d *DayRecord) ItemCount() int {
	n := 0
	for _, c := range d.order {
		n += len(d.items[c])
	}
	return n
}
