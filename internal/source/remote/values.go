package remote

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Number accepts a JSON number, a quoted number or null. Storefront APIs
// disagree on which one they send for prices and counts.
type Number struct {
	value decimal.Decimal
	set   bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			*n = Number{}
			return nil
		}
		raw = strings.TrimSpace(unquoted)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{value: d, set: true}
	return nil
}

// ID accepts either a JSON string or a JSON number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	*id = ID(string(b))
	return nil
}

// Timestamp accepts RFC 3339, a zone-less ISO timestamp (read as UTC) or a
// bare date. Anything else is left unset.
type Timestamp struct {
	value time.Time
	set   bool
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = Timestamp{}
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{value: parsed.UTC(), set: true}
			return nil
		}
	}
	*t = Timestamp{}
	return nil
}

// DefaultPolicy resolves fields a platform payload omits or garbles.
type DefaultPolicy struct {
	Number decimal.Decimal
	Text   string
	Time   time.Time
}

// Defaults is the policy every platform mapping uses: missing numbers are
// zero, missing strings are empty, missing timestamps are zero time.
var Defaults = DefaultPolicy{
	Number: decimal.Zero,
	Text:   "",
	Time:   time.Time{},
}

func (p DefaultPolicy) Decimal(n Number) decimal.Decimal {
	if !n.set {
		return p.Number
	}
	return n.value
}

// Money is Decimal clamped at zero.
func (p DefaultPolicy) Money(n Number) decimal.Decimal {
	d := p.Decimal(n)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Count is the non-negative integer part of n.
func (p DefaultPolicy) Count(n Number) int64 {
	v := p.Decimal(n).IntPart()
	if v < 0 {
		return 0
	}
	return v
}

func (p DefaultPolicy) String(s *string) string {
	if s == nil {
		return p.Text
	}
	return strings.TrimSpace(*s)
}

func (p DefaultPolicy) Timestamp(t Timestamp) time.Time {
	if !t.set {
		return p.Time
	}
	return t.value
}

// FirstSet returns the first number that was present in the payload.
func FirstSet(values ...Number) Number {
	for _, v := range values {
		if v.set {
			return v
		}
	}
	return Number{}
}

func joinName(first, last *string) string {
	return strings.TrimSpace(Defaults.String(first) + " " + Defaults.String(last))
}
