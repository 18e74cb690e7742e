package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
	"expenses/internal/ledger"
	"expenses/internal/log"
)

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func sampleLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l := ledger.New()
	require.NoError(t, l.RecordEntries(mustDate(t, "02-01-2024"), []core.Entry{
		{Category: core.FoodAndDining, Description: "Lunch", Amount: decimal.RequireFromString("12.5")},
		{Category: core.Transport, Description: "Bus", Amount: decimal.RequireFromString("2")},
		{Category: core.FoodAndDining, Description: "Coffee \"large\"", Amount: decimal.RequireFromString("3.75")},
	}))
	require.NoError(t, l.RecordEntries(mustDate(t, "01-01-2024"), []core.Entry{
		{Category: core.Housing, Description: "Rent <March>", Amount: decimal.RequireFromString("1200")},
	}))
	require.NoError(t, l.RecordEntries(mustDate(t, "03-01-2024"), nil))
	return l
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expense.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func snapshot(l *ledger.Ledger) []string {
	var out []string
	for _, d := range l.Dates() {
		day, _ := l.Day(d)
		out = append(out, "date "+d.String())
		for _, c := range day.Categories() {
			out = append(out, "  cat "+string(c))
			for _, it := range day.Items(c) {
				out = append(out, "    "+it.Description+"="+it.Amount.String())
			}
		}
	}
	return out
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expense.json")
	store := NewFileStore(path)

	original := sampleLedger(t)
	require.NoError(t, store.Save(ctx, original))

	loaded, status, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, status)
	assert.Equal(t, snapshot(original), snapshot(loaded))

	total, ok := loaded.TotalForDate(mustDate(t, "03-01-2024"))
	require.True(t, ok)
	assert.True(t, total.IsZero())
}

func TestSaveWritesIndentedLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expense.json")
	l := ledger.New()
	require.NoError(t, l.RecordEntries(mustDate(t, "01-01-2024"), []core.Entry{
		{Category: core.FoodAndDining, Description: "Lunch", Amount: decimal.RequireFromString("12.5")},
	}))
	require.NoError(t, l.RecordEntries(mustDate(t, "02-01-2024"), nil))
	require.NoError(t, NewFileStore(path).Save(ctx, l))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
    "01-01-2024": {
        "Food & Dining": [
            "Lunch",
            12.5
        ]
    },
    "02-01-2024": {}
}`
	assert.Equal(t, want, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLoadFloatAmountsAndShortDates(t *testing.T) {
	path := writeFile(t, `{
    "15-08-2023": {
        "Food & Dining": [
            "Pizza",
            250.0,
            "Juice",
            40.5
        ],
        "Travel": [
            "Train",
            1200.0
        ]
    },
    "1-9-2023": {
        "Food & Dining": [
            "Pizza",
            100.0
        ]
    }
}`)
	l, status, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusLoaded, status)
	assert.Equal(t, []string{
		"date 15-08-2023",
		"  cat Food & Dining",
		"    Pizza=250",
		"    Juice=40.5",
		"  cat Travel",
		"    Train=1200",
		"date 01-09-2023",
		"  cat Food & Dining",
		"    Pizza=100",
	}, snapshot(l))

	totals := l.CategoryTotalsAcrossAllDates()
	assert.Equal(t, "390.5", totals[core.FoodAndDining].String())
}

func TestLoadMissingOrEmpty(t *testing.T) {
	cases := map[string]func(t *testing.T) string{
		"missing": func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "nope.json")
		},
		"empty": func(t *testing.T) string {
			return writeFile(t, "")
		},
		"whitespace": func(t *testing.T) string {
			return writeFile(t, " \n\t\n")
		},
	}
	for name, mk := range cases {
		t.Run(name, func(t *testing.T) {
			l, status, err := NewFileStore(mk(t)).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, StatusNoRecord, status)
			require.NotNil(t, l)
			assert.True(t, l.IsEmpty())
		})
	}
}

func TestLoadCorrupt(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"invalid json", `{"01-01-2024": `},
		{"root is array", `[]`},
		{"root is string", `"hello"`},
		{"bad date key", `{"2024-01-01": {}}`},
		{"impossible date", `{"31-02-2024": {}}`},
		{"duplicate date", `{"01-01-2024": {}, "1-1-2024": {}}`},
		{"day is list", `{"01-01-2024": []}`},
		{"unknown category", `{"01-01-2024": {"Groceries": ["Milk", 1]}}`},
		{"duplicate category", `{"01-01-2024": {"Travel": ["a", 1], "Travel": ["b", 2]}}`},
		{"odd length", `{"01-01-2024": {"Travel": ["Train", 10, "Taxi"]}}`},
		{"amount is string", `{"01-01-2024": {"Travel": ["Train", "10"]}}`},
		{"description is number", `{"01-01-2024": {"Travel": [10, 10]}}`},
		{"negative amount", `{"01-01-2024": {"Travel": ["Refund", -5]}}`},
		{"null amount", `{"01-01-2024": {"Travel": ["Train", null]}}`},
		{"trailing data", `{} {}`},
		{"category is object", `{"01-01-2024": {"Travel": {"a": 1}}}`},
		{"year before 1900", `{"01-01-0001": {}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.content)
			l, _, err := NewFileStore(path).Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, l)
			assert.ErrorIs(t, err, ErrCorruptLedger)

			var ce *CorruptError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, path, ce.Path)
			assert.NotEmpty(t, ce.Reason)
			assert.Contains(t, err.Error(), path)
		})
	}
}

func TestLoadNonFiniteAmount(t *testing.T) {
	for _, lit := range []string{"NaN", "Infinity", "-Infinity"} {
		t.Run(lit, func(t *testing.T) {
			path := writeFile(t, `{
    "01-01-2024": {
        "Others": [
            "odd",
            `+lit+`
        ]
    }
}`)
			_, _, err := NewFileStore(path).Load(context.Background())
			require.ErrorIs(t, err, ErrCorruptLedger)

			var ce *CorruptError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "non-finite amount "+lit+" is not supported", ce.Reason)
		})
	}
}

func TestLoadAndSaveLogFields(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})
	ctx := log.WithContext(context.Background(), logger)
	path := filepath.Join(t.TempDir(), "expense.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(ctx, sampleLedger(t)))
	assert.Contains(t, buf.String(), "component=storage")
	assert.Contains(t, buf.String(), "items=4")

	require.NoError(t, os.WriteFile(path, []byte(`{"01-01-2024": {"Travel": ["Train"]}}`), 0o644))
	buf.Reset()
	_, _, err := store.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "operation=parse")
	assert.Contains(t, buf.String(), "duration_ms=")
	assert.Contains(t, buf.String(), "error_type=corrupt_data_error")
}

func TestLoadDirectoryIsNotCorruption(t *testing.T) {
	dir := t.TempDir()
	_, _, err := NewFileStore(dir).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorruptLedger)
}

func TestSaveFailureKeepsPreviousFile(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "expense.json")
		err := NewFileStore(path).Save(ctx, sampleLedger(t))
		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("target is a directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "expense.json")
		require.NoError(t, os.Mkdir(target, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

		err := NewFileStore(target).Save(ctx, sampleLedger(t))
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, "temp file must be cleaned up")
		assert.Equal(t, "expense.json", entries[0].Name())
	})
}

func TestSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, `{"01-01-2020": {"Others": ["old", 1]}}`)
	store := NewFileStore(path)

	l := ledger.New()
	require.NoError(t, l.RecordEntries(mustDate(t, "05-05-2025"), []core.Entry{
		{Category: core.Others, Description: "new", Amount: decimal.RequireFromString("2")},
	}))
	require.NoError(t, store.Save(ctx, l))

	loaded, _, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"date 05-05-2025", "  cat Others", "    new=2"}, snapshot(loaded))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewFileStore(filepath.Join(t.TempDir(), "expense.json"))

	_, _, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, ledger.New()), context.Canceled)
}

func TestLoadStatusString(t *testing.T) {
	assert.Equal(t, "loaded", StatusLoaded.String())
	assert.Equal(t, "no_record", StatusNoRecord.String())
}
