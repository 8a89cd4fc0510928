package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/alias"
	"github.com/tijnara/VERTEX-ER-asset-and-equipments/internal/model"
)

var (
	errNotIntegral = errors.New("not a whole number")
	errNotPositive = errors.New("id must be positive")
	errNotNumeric  = errors.New("not a number")
	errBadDate     = errors.New("unrecognised date")
	errBadBool     = errors.New("not a boolean")
	errComposite   = errors.New("nested value where a scalar is expected")
)

// number matches json.Number from encoding/json and goccy/go-json.
type number interface {
	String() string
	Int64() (int64, error)
}

// dateLayouts are tried in order after the ISO forms.
var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339Nano,
	model.TimestampLayout,
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
}

func coerce(t alias.Type, v any, scale int64) (any, error) {
	switch t {
	case alias.String:
		return toString(v)
	case alias.ID:
		n, err := toInt(v, scale)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, errNotPositive
		}
		return n, nil
	case alias.Int:
		return toInt(v, scale)
	case alias.Decimal:
		d, err := toDecimal(v)
		if err != nil {
			return nil, err
		}
		if scale > 1 {
			d = d.Mul(decimal.NewFromInt(scale))
		}
		return d, nil
	case alias.Date:
		return toDate(v)
	case alias.Bool:
		return toBool(v)
	}
	return nil, fmt.Errorf("unknown field type %v", t)
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case number:
		return x.String(), nil
	case map[string]any, []any:
		return "", errComposite
	}
	return strings.TrimSpace(fmt.Sprint(v)), nil
}

func toInt(v any, scale int64) (int64, error) {
	if scale < 1 {
		scale = 1
	}
	var f float64
	switch x := v.(type) {
	case int:
		return int64(x) * scale, nil
	case int32:
		return int64(x) * scale, nil
	case int64:
		return x * scale, nil
	case float32:
		f = float64(x)
	case float64:
		f = x
	case number:
		if n, err := x.Int64(); err == nil {
			return n * scale, nil
		}
		return floatString(x.String(), scale)
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n * scale, nil
		}
		return floatString(s, scale)
	default:
		return 0, errNotNumeric
	}
	return integral(f * float64(scale))
}

func floatString(s string, scale int64) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotNumeric
	}
	return integral(f * float64(scale))
}

func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errNotIntegral
	}
	return int64(f), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.NewReplacer(",", "", "₱", "", "$", "", " ", "").Replace(strings.TrimSpace(x))
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, errNotNumeric
		}
		return d, nil
	}
	return decimal.Decimal{}, errNotNumeric
}

// ParseDate reads the accepted date spellings and returns the calendar day.
func ParseDate(s string) (model.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.NewDate(t), nil
		}
	}
	return model.Date{}, fmt.Errorf("%w: %q", errBadDate, s)
}

func toDate(v any) (model.Date, error) {
	switch x := v.(type) {
	case model.Date:
		return x, nil
	case time.Time:
		return model.NewDate(x), nil
	case string:
		return ParseDate(x)
	}
	return model.Date{}, errBadDate
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case int:
		return x != 0, nil
	case int64:
		return x != 0, nil
	case number:
		return x.String() != "0", nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "y", "active":
			return true, nil
		case "false", "0", "no", "n", "inactive":
			return false, nil
		}
	}
	return false, errBadBool
}

func equal(a, b any) bool {
	switch x := a.(type) {
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case model.Date:
		y, ok := b.(model.Date)
		return ok && x.Equal(y)
	}
	return a == b
}
