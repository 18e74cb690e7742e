package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

const indent = "    "

// ErrCorruptLedger is matched by every error caused by unreadable ledger content.
var ErrCorruptLedger = errors.New("corrupt ledger file")

// CorruptError describes where and why ledger content could not be decoded.
type CorruptError struct {
	Path   string
	Offset int64
	Reason string
	Err    error
}

func (e *CorruptError) Error() string {
	msg := fmt.Sprintf("corrupt ledger file %s at byte %d: %s", e.Path, e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorruptLedger
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// encodeLedger writes the ledger as a JSON object of
// date → category → [description, amount, description, amount, ...],
// indented by four spaces. Keys follow ledger insertion order.
func encodeLedger(w io.Writer, l *ledger.Ledger) error {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, d := range l.Dates() {
		day, _ := l.Day(d)
		if i > 0 {
			compact.WriteByte(',')
		}
		compact.Write(quote(d.String()))
		compact.WriteString(":{")
		for j, c := range day.Categories() {
			if j > 0 {
				compact.WriteByte(',')
			}
			compact.Write(quote(string(c)))
			compact.WriteString(":[")
			for k, it := range day.Items(c) {
				if k > 0 {
					compact.WriteByte(',')
				}
				compact.Write(quote(it.Description))
				compact.WriteByte(',')
				compact.WriteString(it.Amount.String())
			}
			compact.WriteByte(']')
		}
		compact.WriteByte('}')
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", indent); err != nil {
		return fmt.Errorf("indent ledger json: %w", err)
	}
	_, err := w.Write(out.Bytes())
	return err
}

// quote returns s as a JSON string without HTML escaping, so "Food & Dining"
// stays readable on disk.
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// decodeLedger parses the on-disk layout back into a ledger, keeping key
// order. The input must be exactly one JSON object.
func decodeLedger(r io.Reader) (*ledger.Ledger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	p := &parser{dec: dec, data: data}

	l := ledger.New()
	if err := p.delim('{'); err != nil {
		return nil, err
	}
	for dec.More() {
		key, err := p.str("date key")
		if err != nil {
			return nil, err
		}
		date, err := core.ParseDate(key)
		if err != nil {
			return nil, p.corrupt(fmt.Sprintf("invalid date key %q", key), err)
		}
		if _, dup := l.Day(date); dup {
			return nil, p.corrupt(fmt.Sprintf("duplicate date %s", date), nil)
		}
		if err := p.day(l.AddDay(date)); err != nil {
			return nil, err
		}
	}
	if err := p.delim('}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, p.corrupt("unexpected data after ledger object", nil)
	}
	return l, nil
}

type parser struct {
	dec  *json.Decoder
	data []byte
}

// nonFinite are the literals some JSON writers emit for NaN and infinite
// floats. They are not valid JSON numbers.
var nonFinite = []string{"-Infinity", "Infinity", "NaN"}

func (p *parser) day(day *ledger.DayRecord) error {
	if err := p.delim('{'); err != nil {
		return err
	}
	for p.dec.More() {
		name, err := p.str("category")
		if err != nil {
			return err
		}
		cat, err := core.ParseCategory(name)
		if err != nil {
			return p.corrupt(fmt.Sprintf("unknown category %q on %s", name, day.Date()), err)
		}
		if day.HasCategory(cat) {
			return p.corrupt(fmt.Sprintf("duplicate category %q on %s", name, day.Date()), nil)
		}
		items, err := p.items()
		if err != nil {
			return err
		}
		day.Append(cat, items...)
	}
	return p.delim('}')
}

func (p *parser) items() ([]core.LineItem, error) {
	if err := p.delim('['); err != nil {
		return nil, err
	}
	var items []core.LineItem
	for p.dec.More() {
		desc, err := p.str("description")
		if err != nil {
			return nil, err
		}
		if !p.dec.More() {
			return nil, p.corrupt(fmt.Sprintf("description %q has no amount", desc), nil)
		}
		amount, err := p.amount()
		if err != nil {
			return nil, err
		}
		items = append(items, core.LineItem{Description: desc, Amount: amount})
	}
	if err := p.delim(']'); err != nil {
		return nil, err
	}
	return items, nil
}

func (p *parser) amount() (decimal.Decimal, error) {
	tok, err := p.token()
	if err != nil {
		return decimal.Zero, err
	}
	n, ok := tok.(json.Number)
	if !ok {
		return decimal.Zero, p.corrupt(fmt.Sprintf("amount must be a number, got %s", describe(tok)), nil)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, p.corrupt(fmt.Sprintf("invalid amount %s", n), err)
	}
	if d.IsNegative() {
		return decimal.Zero, p.corrupt(fmt.Sprintf("negative amount %s", n), nil)
	}
	return d, nil
}

func (p *parser) str(what string) (string, error) {
	tok, err := p.token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", p.corrupt(fmt.Sprintf("%s must be a string, got %s", what, describe(tok)), nil)
	}
	return s, nil
}

func (p *parser) delim(want json.Delim) error {
	tok, err := p.token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return p.corrupt(fmt.Sprintf("expected %q, got %s", want, describe(tok)), nil)
	}
	return nil
}

func (p *parser) token() (json.Token, error) {
	tok, err := p.dec.Token()
	if err == io.EOF {
		return nil, p.corrupt("unexpected end of file", nil)
	}
	if err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			if lit, ok := p.nonFiniteAt(se.Offset); ok {
				return nil, p.corrupt(fmt.Sprintf("non-finite amount %s is not supported", lit), err)
			}
		}
		return nil, p.corrupt("invalid json", err)
	}
	return tok, nil
}

// nonFiniteAt reports whether a NaN or Infinity literal starts at or just
// before offset.
func (p *parser) nonFiniteAt(offset int64) (string, bool) {
	for start := offset - 2; start <= offset; start++ {
		if start < 0 || start >= int64(len(p.data)) {
			continue
		}
		for _, lit := range nonFinite {
			if bytes.HasPrefix(p.data[start:], []byte(lit)) {
				return lit, true
			}
		}
	}
	return "", false
}

func (p *parser) corrupt(reason string, err error) error {
	return &CorruptError{Offset: p.dec.InputOffset(), Reason: reason, Err: err}
}

func describe(tok json.Token) string {
	switch v := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		return fmt.Sprintf("%q", v)
	case string:
		return fmt.Sprintf("string %q", v)
	case json.Number:
		return "number " + v.String()
	case bool:
		return fmt.Sprintf("bool %t", v)
	default:
		return fmt.Sprintf("%T", v)
	}
}
