package console

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/chart"
	"expenses/internal/core"
	"expenses/internal/services"
	"expenses/internal/storage"
)

type harness struct {
	path string
	out  *bytes.Buffer
	svc  *services.ExpenseService
}

func newHarness(t *testing.T, existing string) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expense.json")
	if existing != "" {
		require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))
	}
	out := &bytes.Buffer{}
	svc := services.NewExpenseService(storage.NewFileStore(path), chart.NewTextRenderer(out, "Rs.", 10))
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	return &harness{path: path, out: out, svc: svc}
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func (h *harness) run(t *testing.T, input ...string) error {
	t.Helper()
	s := NewSession(h.svc, strings.NewReader(strings.Join(input, "\n")+"\n"), h.out, Options{Unit: "Rs."})
	defer s.Close()
	return s.Run(context.Background())
}

func TestSession_AddAndSave(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t,
		"1", "1-1-2024",
		"y", "2", "Lunch", "12.5",
		"Y", "3", "Bus", "2",
		"n",
		"6",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "Expense Tracker Menu:")
	assert.Contains(t, out, "The Categories of Expenses:\n1. Education\n2. Food & Dining\n")
	assert.Equal(t, 2, strings.Count(out, "Status: The Expense on 01-01-2024 is added successfully!"))
	assert.Contains(t, out, MsgSaved)

	data, err := os.ReadFile(h.path)
	require.NoError(t, err)
	assert.Equal(t, `{
    "01-01-2024": {
        "Food & Dining": [
            "Lunch",
            12.5
        ],
        "Transportation": [
            "Bus",
            2
        ]
    }
}`, string(data))
}

func TestSession_InvalidInputReprompts(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t,
		"9",
		"1", "31-02-2024", "2024-01-01", "01-01-2024",
		"maybe",
		"y", "abc",
		"y", "10",
		"y", "1", "Books", "ten",
		"y", "1", "Books", "-5",
		"y", "1", "Books", "30",
		"n",
		"3", "01-01-2024",
		"6",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, MsgInvalidMenu)
	assert.Equal(t, 2, strings.Count(out, MsgInvalidDate))
	assert.Contains(t, out, "Invalid input, please enter 'Y' or 'N'.")
	assert.Equal(t, 4, strings.Count(out, "Status: Invalid Choice Or Wrong Data Entered!!"))
	assert.Contains(t, out, "Total Amount Spent on 01-01-2024: Rs. 30.00")
}

func TestSession_Reports(t *testing.T) {
	h := newHarness(t, `{
    "01-01-2024": {
        "Food & Dining": ["Lunch", 12.5, "Dinner", 1200],
        "Transportation": ["Bus", 2]
    },
    "02-01-2024": {}
}`)

	err := h.run(t, "2", "3", "1-1-2024", "3", "31-12-1999", "3", "02-01-2024", "4", "5", "6")
	require.NoError(t, err)

	out := h.out.String()
	header := separator + "\nDate: 01-01-2024\n" + separator + "\n"
	assert.Contains(t, out, header+
		"Total Amount Spent on Food & Dining: Rs. 1,212.50\n"+
		"Total Amount Spent on Transportation: Rs. 2.00\n")
	assert.Contains(t, out, "Total Amount Spent on 01-01-2024: Rs. 1,214.50")
	assert.Contains(t, out, "No Expenses found for the date: 31-12-1999 !!")
	assert.Contains(t, out, "Total Amount Spent on 02-01-2024: Rs. 0.00")
	assert.Contains(t, out, header+
		"Food & Dining:\n"+
		"  - Lunch: Rs. 12.50\n"+
		"  - Dinner: Rs. 1,200.00\n"+
		"Transportation:\n"+
		"  - Bus: Rs. 2.00\n"+
		separator+"\n")
	assert.Contains(t, out, chart.Title)
	assert.Contains(t, out, "Food & Dining  | ██████████ Rs. 1,212.50")
}

func TestSession_DateBeforeMinYearIsReprompted(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t,
		"1", "01-01-0001", "01-01-2024",
		"y", "1", "Fees", "10",
		"n",
		"3", "01-01-2024",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Equal(t, 1, strings.Count(out, MsgInvalidDate))
	assert.NotContains(t, out, "Status: Invalid Choice Or Wrong Data Entered!!")
	assert.Contains(t, out, "Status: The Expense on 01-01-2024 is added successfully!")
	assert.Contains(t, out, "Total Amount Spent on 01-01-2024: Rs. 10.00")
}

func TestSession_AmountWithThousandsSeparatorIsRejected(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t,
		"1", "01-01-2024",
		"y", "7", "Rent", "1,000",
		"y", "7", "Rent", "1000",
		"n",
		"3", "01-01-2024",
	)
	require.NoError(t, err)

	out := h.out.String()
	assert.Equal(t, 1, strings.Count(out, "Status: Invalid Choice Or Wrong Data Entered!!"))
	assert.Equal(t, 1, strings.Count(out, "Status: The Expense on 01-01-2024 is added successfully!"))
	assert.Contains(t, out, "Total Amount Spent on 01-01-2024: Rs. 1,000.00")
}

func TestSession_ListingGroupsEntries(t *testing.T) {
	h := newHarness(t, `{
    "05-01-2024": {},
    "01-01-2024": {
        "Travel": ["Train", 40],
        "Others": ["Gift", 5, "Card", 1.5]
    },
    "03-01-2024": {
        "Travel": ["Taxi", 12]
    }
}`)

	require.NoError(t, h.run(t, "4"))

	out := h.out.String()
	want := separator + "\nDate: 01-01-2024\n" + separator + "\n" +
		"Travel:\n" +
		"  - Train: Rs. 40.00\n" +
		"Others:\n" +
		"  - Gift: Rs. 5.00\n" +
		"  - Card: Rs. 1.50\n" +
		separator + "\n" +
		separator + "\nDate: 03-01-2024\n" + separator + "\n" +
		"Travel:\n" +
		"  - Taxi: Rs. 12.00\n" +
		separator + "\n"
	assert.Contains(t, out, want)
	assert.NotContains(t, out, "Date: 05-01-2024")
}

func TestSession_ListingWithOnlyEmptyDates(t *testing.T) {
	h := newHarness(t, `{"05-01-2024": {}}`)

	require.NoError(t, h.run(t, "4"))

	assert.Contains(t, h.out.String(), MsgNoExpenses)
	assert.NotContains(t, h.out.String(), "Date: 05-01-2024")
}

func TestSession_EmptyLedger(t *testing.T) {
	h := newHarness(t, "")

	require.NoError(t, h.run(t, "2", "4", "5"))

	assert.Equal(t, 3, strings.Count(h.out.String(), MsgNoExpenses))
	assert.NotContains(t, h.out.String(), MsgUnsaved)
	_, err := os.Stat(h.path)
	assert.True(t, os.IsNotExist(err), "nothing is written without saving")
}

func TestSession_EndOfInputWarnsAboutUnsavedChanges(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t, "1", "01-01-2024", "y", "8", "Shoes", "40")
	require.NoError(t, err)

	assert.Contains(t, h.out.String(), MsgUnsaved)
	assert.True(t, h.svc.HasUnsavedChanges())
	total, ok := h.svc.TotalForDate(mustDate(t, "01-01-2024"))
	require.True(t, ok)
	assert.Equal(t, "40", total.String())
}

func TestSession_SaveFailureStaysInMenu(t *testing.T) {
	dir := t.TempDir()
	out := &bytes.Buffer{}
	svc := services.NewExpenseService(storage.NewFileStore(filepath.Join(dir, "missing", "expense.json")), nil)

	s := NewSession(svc, strings.NewReader("1\n01-01-2024\ny\n1\nFees\n100\nn\n6\n4\n"), out, Options{Unit: "Rs."})
	defer s.Close()
	require.NoError(t, s.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, MsgSaveFailed)
	assert.NotContains(t, text, MsgSaved)
	assert.Contains(t, text, "  - Fees: Rs. 100.00")
	assert.Contains(t, text, MsgUnsaved)
}

func TestSession_ImageChartReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	out := &bytes.Buffer{}
	svc := services.NewExpenseService(storage.NewFileStore(filepath.Join(t.TempDir(), "expense.json")),
		chart.NewImageRenderer(path, "Rs."))

	s := NewSession(svc, strings.NewReader("1\n01-01-2024\ny\n4\nFlight\n250\nn\n5\n"), out, Options{Unit: "Rs.", ChartOutput: path})
	defer s.Close()
	require.NoError(t, s.Run(context.Background()))

	assert.Contains(t, out.String(), "Chart saved to "+path)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSession_CancelledContext(t *testing.T) {
	h := newHarness(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// reader never yields a line, so only cancellation can end the prompt
	pr, pw := io.Pipe()
	defer pw.Close()
	s := NewSession(h.svc, pr, h.out, Options{Unit: "Rs."})
	defer s.Close()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMessage(t *testing.T) {
	assert.Equal(t, "Status: Data is Loaded successfully!!", LoadMessage(storage.StatusLoaded))
	assert.Equal(t, "No expense record found!!", LoadMessage(storage.StatusNoRecord))
}
