package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/storage"
)

const (
	menu = "\nExpense Tracker Menu:\n" +
		"1. Add Expense\n" +
		"2. View Category-Wise Expenses\n" +
		"3. View Total Expense of a Day\n" +
		"4. Display All Expenses\n" +
		"5. Plot Expenses by Category\n" +
		"6. Save and Exit\n"

	promptChoice      = "Enter your choice (1-6): "
	promptDate        = "Enter the date (dd-mm-yyyy): "
	promptAddItems    = "Do you want to add items (Y/N): "
	promptCategory    = "Enter the Expense Category: "
	promptDescription = "Enter the Description: "
	promptAmount      = "Enter the Amount Spent: "
	promptTotalDate   = "\nEnter the date that you want to view total amount spent: "

	MsgNoRecord     = "No expense record found!!"
	MsgLoaded       = "Status: Data is Loaded successfully!!"
	MsgInvalidEntry = "\nStatus: Invalid Choice Or Wrong Data Entered!!"
	MsgNoExpenses   = "No expenses recorded yet."
	MsgSaved        = "Expenses saved successfully!"
	MsgSaveFailed   = "Error saving expenses to file."
	MsgInvalidMenu  = "Invalid choice, please try again."
	MsgUnsaved      = "Warning: exiting without saving, recently added expenses are lost."
)

var separator = strings.Repeat("-", 54)

var choiceOps = map[string]string{
	"1": log.OpRecord,
	"2": log.OpRead,
	"3": log.OpRead,
	"4": log.OpList,
	"5": log.OpRender,
	"6": log.OpSave,
}

// LoadMessage returns the line shown after the ledger file has been read.
func LoadMessage(status storage.LoadStatus) string {
	if status == storage.StatusLoaded {
		return MsgLoaded
	}
	return MsgNoRecord
}

// Options configures how a session presents results.
type Options struct {
	// Unit prefixes every displayed amount.
	Unit string
	// ChartOutput is the image path reported after plotting. Empty for
	// charts drawn in the terminal.
	ChartOutput string
}

// Session runs the numbered menu until the user saves and exits, input ends
// or the context is cancelled.
type Session struct {
	svc    *services.ExpenseService
	prompt *Prompter
	out    io.Writer
	opts   Options
}

func NewSession(svc *services.ExpenseService, in io.Reader, out io.Writer, opts Options) *Session {
	return &Session{
		svc:    svc,
		prompt: NewPrompter(in, out),
		out:    out,
		opts:   opts,
	}
}

// Close releases the input reader.
func (s *Session) Close() {
	s.prompt.Close()
}

// Run returns nil after a successful save and exit or at end of input, and
// ctx.Err() when cancelled. Unsaved changes are reported in both early exits.
func (s *Session) Run(ctx context.Context) error {
	logger := log.ComponentFromContext(ctx, log.ComponentConsole)

	for {
		fmt.Fprint(s.out, menu)
		choice, err := s.prompt.Line(ctx, promptChoice)
		if err != nil {
			return s.stop(ctx, err)
		}
		choice = strings.TrimSpace(choice)
		logger.DebugContext(ctx, "Menu choice",
			log.FieldChoice, choice,
			log.FieldOperation, choiceOps[choice])

		var done bool
		switch choice {
		case "1":
			err = s.addExpense(ctx)
		case "2":
			s.showCategoryTotals()
		case "3":
			err = s.showTotalForDate(ctx)
		case "4":
			s.showAllEntries()
		case "5":
			s.plot(ctx)
		case "6":
			done = s.save(ctx)
		default:
			fmt.Fprintln(s.out, MsgInvalidMenu)
		}
		if err != nil {
			return s.stop(ctx, err)
		}
		if done {
			return nil
		}
	}
}

func (s *Session) stop(ctx context.Context, err error) error {
	if s.svc.Discard(ctx) {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, MsgUnsaved)
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Session) addExpense(ctx context.Context) error {
	date, err := s.prompt.Date(ctx, promptDate)
	if err != nil {
		return err
	}

	var entries []core.Entry
	for {
		more, err := s.prompt.YesNo(ctx, promptAddItems)
		if err != nil {
			s.keepPartial(ctx, date, entries)
			return err
		}
		if !more {
			break
		}

		e, ok, err := s.readEntry(ctx)
		if err != nil {
			s.keepPartial(ctx, date, entries)
			return err
		}
		if !ok {
			fmt.Fprintln(s.out, MsgInvalidEntry)
			continue
		}
		entries = append(entries, e)
		fmt.Fprintf(s.out, "Status: The Expense on %s is added successfully!\n", date)
	}

	if err := s.svc.RecordEntries(ctx, date, entries); err != nil {
		fmt.Fprintln(s.out, MsgInvalidEntry)
	}
	return nil
}

// keepPartial records entries confirmed before input ended, so that they
// are reported as unsaved rather than silently dropped.
func (s *Session) keepPartial(ctx context.Context, date core.Date, entries []core.Entry) {
	if len(entries) == 0 {
		return
	}
	_ = s.svc.RecordEntries(ctx, date, entries)
}

// readEntry asks for category, description and amount. ok is false when the
// category or the amount is not acceptable.
func (s *Session) readEntry(ctx context.Context) (core.Entry, bool, error) {
	fmt.Fprintln(s.out, "\nThe Categories of Expenses:")
	for i, c := range core.Categories() {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, c)
	}
	fmt.Fprintln(s.out)

	line, err := s.prompt.Line(ctx, promptCategory)
	if err != nil {
		return core.Entry{}, false, err
	}
	idx, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return core.Entry{}, false, nil
	}
	category, err := core.CategoryByIndex(idx)
	if err != nil {
		return core.Entry{}, false, nil
	}

	desc, err := s.prompt.Line(ctx, promptDescription)
	if err != nil {
		return core.Entry{}, false, err
	}
	line, err = s.prompt.Line(ctx, promptAmount)
	if err != nil {
		return core.Entry{}, false, err
	}
	amount, err := core.ParseAmount(line)
	if err != nil {
		return core.Entry{}, false, nil
	}

	return core.Entry{
		Category:    category,
		Description: strings.TrimSpace(desc),
		Amount:      amount,
	}, true, nil
}

func (s *Session) showCategoryTotals() {
	if s.svc.IsEmpty() {
		fmt.Fprintln(s.out, MsgNoExpenses)
		return
	}
	for date, totals := range s.svc.CategoryTotalsPerDate() {
		s.dateHeader(date)
		for _, t := range totals {
			fmt.Fprintf(s.out, "Total Amount Spent on %s: %s\n", t.Category, s.amount(t.Amount))
		}
	}
}

func (s *Session) showTotalForDate(ctx context.Context) error {
	date, err := s.prompt.Date(ctx, promptTotalDate)
	if err != nil {
		return err
	}
	total, ok := s.svc.TotalForDate(date)
	if !ok {
		fmt.Fprintf(s.out, "No Expenses found for the date: %s !!\n", date)
		return nil
	}
	fmt.Fprintf(s.out, "\nTotal Amount Spent on %s: %s\n", date, s.amount(total))
	return nil
}

// showAllEntries lists every item, opening a date block or a category line
// whenever the value changes. Dates without items are not listed.
func (s *Session) showAllEntries() {
	var (
		date    core.Date
		cat     core.Category
		started bool
	)
	for e := range s.svc.AllEntries() {
		if !started || !e.Date.Equal(date.Time) {
			if started {
				fmt.Fprintln(s.out, separator)
			}
			s.dateHeader(e.Date)
			date, cat, started = e.Date, "", true
		}
		if e.Category != cat {
			fmt.Fprintf(s.out, "%s:\n", e.Category)
			cat = e.Category
		}
		fmt.Fprintf(s.out, "  - %s: %s\n", e.Description, s.amount(e.Amount))
	}
	if !started {
		fmt.Fprintln(s.out, MsgNoExpenses)
		return
	}
	fmt.Fprintln(s.out, separator)
}

func (s *Session) plot(ctx context.Context) {
	err := s.svc.PlotByCategory(ctx)
	switch {
	case errors.Is(err, services.ErrNoExpenses):
		fmt.Fprintln(s.out, MsgNoExpenses)
	case err != nil:
		fmt.Fprintf(s.out, "Error plotting expenses: %v\n", err)
	case s.opts.ChartOutput != "":
		fmt.Fprintf(s.out, "Chart saved to %s\n", s.opts.ChartOutput)
	}
}

func (s *Session) save(ctx context.Context) bool {
	if err := s.svc.Save(ctx); err != nil {
		fmt.Fprintln(s.out, MsgSaveFailed)
		return false
	}
	fmt.Fprintln(s.out, MsgSaved)
	return true
}

func (s *Session) dateHeader(date core.Date) {
	fmt.Fprintf(s.out, "%s\nDate: %s\n%s\n", separator, date, separator)
}

func (s *Session) amount(d decimal.Decimal) string {
	return core.FormatAmount(s.opts.Unit, d)
}
