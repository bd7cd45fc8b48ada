package airtable

import (
	"strconv"
	"strings"
)

// Formula is a filterByFormula expression built structurally instead of by
// string interpolation. String literals are fully escaped, so identifier
// values (quotes included) can never break out of the expression.
type Formula struct {
	expr string
}

// String returns the rendered formula expression.
func (f Formula) String() string {
	return f.expr
}

// IsZero reports whether the formula is empty.
func (f Formula) IsZero() bool {
	return f.expr == ""
}

// Eq builds a {Field} = value comparison.
func Eq(field string, value any) Formula {
	return Formula{expr: fieldRef(field) + " = " + literal(value)}
}

// And combines formulas with AND().
func And(fs ...Formula) Formula {
	return combine("AND", fs)
}

// Or combines formulas with OR().
func Or(fs ...Formula) Formula {
	return combine("OR", fs)
}

// Not negates a formula with NOT().
func Not(f Formula) Formula {
	return Formula{expr: "NOT(" + f.expr + ")"}
}

func combine(op string, fs []Formula) Formula {
	if len(fs) == 1 {
		return fs[0]
	}
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.expr
	}
	return Formula{expr: op + "(" + strings.Join(parts, ", ") + ")"}
}

// fieldRef renders a {Field} reference. Closing braces cannot appear in
// Airtable field names and are stripped so a name can never terminate the
// reference early.
func fieldRef(name string) string {
	name = strings.ReplaceAll(name, "}", "")
	return "{" + name + "}"
}

// literal renders a formula literal. Strings escape backslashes and single
// quotes; numbers and booleans use the formula syntax directly.
func literal(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.ReplaceAll(t, `\`, `\\`)
		s = strings.ReplaceAll(s, `'`, `\'`)
		return "'" + s + "'"
	case bool:
		if t {
			return "TRUE()"
		}
		return "FALSE()"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "''"
	}
}
