package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in paise.  DECIMAL(10,2) columns round-trip exactly.
type Money int64

// Rupees converts a whole-rupee amount.
func Rupees(r int64) Money { return Money(r * 100) }

// ParseMoney reads a decimal string such as "500.00" as returned by the
// MySQL driver for DECIMAL columns.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Money(math.Round(f * 100)), nil
}

// Decimal renders the amount as a plain two-decimal string suitable for a
// DECIMAL parameter.
func (m Money) Decimal() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

var printer = message.NewPrinter(language.English)

// String renders the amount with digit grouping, e.g. ₹1,234.50.
func (m Money) String() string {
	return printer.Sprintf("₹%.2f", float64(m)/100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(json.Number(m.Decimal()))
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
