// converters.go
/*
fixmsg — FIX protocol message toolkit
Copyright (C) 2025 Edgewater Markets

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/
package values

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted on the wire. Encoding always emits the
// millisecond form.
const (
	layoutTimestamp       = "20060102-15:04:05"
	layoutTimestampMillis = "20060102-15:04:05.000"
	layoutDateOnly        = "20060102"
)

// Int converts integer-valued fields (INT, LENGTH, SEQNUM, NUMINGROUP,
// DAYOFMONTH).
type Int struct{}

func (Int) Decode(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", raw)
	}

	return n, nil
}

func (Int) Encode(v any) (string, error) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	default:
		return "", fmt.Errorf("int converter: unsupported type %T", v)
	}
}

// Decimal converts price and quantity fields (QTY, PRICE, AMT, FLOAT,
// PRICEOFFSET, PERCENTAGE) to decimal.Decimal, avoiding binary-float noise
// when asserting prices in tests.
type Decimal struct{}

func (Decimal) Decode(raw string) (any, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("not a decimal: %q", raw)
	}

	return d, nil
}

func (Decimal) Encode(v any) (string, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return "", fmt.Errorf("decimal converter: unsupported type %T", v)
	}

	return d.String(), nil
}

// Bool converts the FIX BOOLEAN representation, "Y" or "N".
type Bool struct{}

func (Bool) Decode(raw string) (any, error) {
	switch raw {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	default:
		return nil, fmt.Errorf("not a FIX boolean: %q", raw)
	}
}

func (Bool) Encode(v any) (string, error) {
	b, ok := v.(bool)
	if !ok {
		return "", fmt.Errorf("bool converter: unsupported type %T", v)
	}
	if b {
		return "Y", nil
	}

	return "N", nil
}

// UTCTimestamp converts UTCTIMESTAMP fields, accepting both the plain and
// millisecond layouts on decode.
type UTCTimestamp struct{}

func (UTCTimestamp) Decode(raw string) (any, error) {
	for _, layout := range []string{layoutTimestampMillis, layoutTimestamp} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return nil, fmt.Errorf("not a UTC timestamp: %q", raw)
}

func (UTCTimestamp) Encode(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", fmt.Errorf("timestamp converter: unsupported type %T", v)
	}

	return t.UTC().Format(layoutTimestampMillis), nil
}

// UTCDateOnly converts UTCDATEONLY fields.
type UTCDateOnly struct{}

func (UTCDateOnly) Decode(raw string) (any, error) {
	t, err := time.Parse(layoutDateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("not a UTC date: %q", raw)
	}

	return t, nil
}

func (UTCDateOnly) Encode(v any) (string, error) {
	t, ok := v.(time.Time)
	if !ok {
		return "", fmt.Errorf("date converter: unsupported type %T", v)
	}

	return t.UTC().Format(layoutDateOnly), nil
}

// ByType returns the converter conventionally used for a QuickFIX field type
// name. String-like types (STRING, CHAR, EXCHANGE, ...) have no converter:
// their raw value is already the useful representation.
func ByType(fixType string) (Converter, bool) {
	switch strings.ToUpper(fixType) {
	case "INT", "LENGTH", "NUMINGROUP", "SEQNUM", "DAYOFMONTH":
		return Int{}, true
	case "FLOAT", "QTY", "PRICE", "PRICEOFFSET", "AMT", "PERCENTAGE":
		return Decimal{}, true
	case "BOOLEAN":
		return Bool{}, true
	case "UTCTIMESTAMP":
		return UTCTimestamp{}, true
	case "UTCDATEONLY":
		return UTCDateOnly{}, true
	default:
		return nil, false
	}
}
