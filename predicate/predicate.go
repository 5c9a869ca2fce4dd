/*
Package predicate evaluates the conditions that guard tree nodes.

A Predicate compares one field of an input record to a value using an
operator. A Set is a conjunction of predicates and AlwaysTrue entries.
Both are immutable once built and safe for concurrent use.
*/
package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antoniomachine/bigml/field"
)

/*
Operator is the comparison a Predicate applies
*/
type Operator string

// Supported operators
const (
	LessThan       Operator = "<"
	LessOrEqual    Operator = "<="
	Equal          Operator = "="
	NotEqual       Operator = "!="
	GreaterOrEqual Operator = ">="
	GreaterThan    Operator = ">"
	In             Operator = "in"
)

// missingSuffix marks operators that are also satisfied by absent values
const missingSuffix = "*"

/*
ParseOperator takes an operator as written in model documents and
returns the Operator and whether it carries the missing suffix, which
makes the predicate true for records lacking the field. "/=" is accepted
as an alias of "!=".
*/
func ParseOperator(s string) (Operator, bool, error) {
	missing := strings.HasSuffix(s, missingSuffix)
	s = strings.TrimSuffix(s, missingSuffix)
	switch op := Operator(s); op {
	case LessThan, LessOrEqual, Equal, NotEqual, GreaterOrEqual, GreaterThan, In:
		return op, missing, nil
	case "/=":
		return NotEqual, missing, nil
	}
	return "", false, fmt.Errorf("unknown operator %q", s)
}

/*
Entry is an element of a Set: either a *Predicate or AlwaysTrue.
*/
type Entry interface {
	isEntry()
}

/*
AlwaysTrue is the literal true entry. It is satisfied by every record
and is not rendered in rules.
*/
type AlwaysTrue struct{}

func (AlwaysTrue) isEntry() {}

func (AlwaysTrue) String() string {
	return "true"
}

/*
Predicate is a condition on a single field of an input record.
*/
type Predicate struct {
	Operator Operator
	// Field is the id of the evaluated field
	Field string
	// Value is the threshold, category or list (for In) to compare
	// with. A nil Value with Equal or NotEqual tests for absence or
	// presence of the field.
	Value interface{}
	// Term is set for term predicates on text and items fields, in
	// which case Value is the number of occurrences compared against.
	Term string
	// Missing makes the predicate true when the field is absent.
	Missing bool
}

func (*Predicate) isEntry() {}

/*
Apply takes an input record keyed by field id and the fields of the
model and returns whether the record satisfies the predicate.

Records lacking the field (or holding nil for it) only satisfy
predicates with the Missing flag or the absence test "= nil"; any other
predicate evaluates to false for them, term predicates included.
*/
func (p *Predicate) Apply(record map[string]interface{}, fields field.Fields) bool {
	v, ok := record[p.Field]
	if !ok || v == nil {
		return p.Missing || (p.Operator == Equal && p.Value == nil)
	}
	if p.Value == nil {
		return p.Operator == NotEqual
	}
	if p.Term != "" {
		f, ok := fields[p.Field]
		if !ok {
			return false
		}
		count, ok := termCount(v, p.Term, f)
		if !ok {
			return false
		}
		return compare(p.Operator, float64(count), p.Value)
	}
	if p.Operator == In {
		return contains(p.Value, v)
	}
	return compare(p.Operator, v, p.Value)
}

/*
Rule takes the fields of the model and a label kind (field.LabelName or
field.LabelID) and returns a human readable description of the predicate.
*/
func (p *Predicate) Rule(fields field.Fields, label string) string {
	name := fields.Label(p.Field, label)
	var orMissing string
	if p.Missing {
		orMissing = " or missing"
	}
	if p.Term != "" {
		return p.termRule(name, fields[p.Field]) + orMissing
	}
	if p.Value == nil {
		if p.Operator == Equal {
			return fmt.Sprintf("%s is missing", name)
		}
		return fmt.Sprintf("%s is not missing", name)
	}
	return fmt.Sprintf("%s %s %s%s", name, p.Operator, formatValue(p.Value), orMissing)
}

func (p *Predicate) String() string {
	return p.Rule(nil, field.LabelID)
}

// relations holds the occurrence suffixes of term rules
var relations = map[Operator]string{
	LessOrEqual:    "no more than %s %s",
	GreaterOrEqual: "at least %s %s",
	GreaterThan:    "more than %s %s",
	LessThan:       "less than %s %s",
	Equal:          "exactly %s %s",
	NotEqual:       "other than %s %s",
}

func (p *Predicate) termRule(name string, f *field.Field) string {
	fullTerm := isFullTerm(p.Term, f)
	count, _ := numeric(p.Value)
	var relation, suffix string
	if (p.Operator == LessThan && count <= 1) || (p.Operator == LessOrEqual && count == 0) {
		relation = "does not contain"
		if fullTerm {
			relation = "is not equal to"
		}
	} else {
		relation = "contains"
		if fullTerm {
			relation = "is equal to"
		} else if p.Operator != GreaterThan || count != 0 {
			if format, ok := relations[p.Operator]; ok {
				times := "times"
				if count == 1 {
					times = "time"
				}
				suffix = " " + fmt.Sprintf(format, formatValue(p.Value), times)
			}
		}
	}
	return fmt.Sprintf("%s %s %s%s", name, relation, p.Term, suffix)
}

func compare(op Operator, a, b interface{}) bool {
	if x, ok := numeric(a); ok {
		y, ok := numeric(b)
		if !ok {
			return false
		}
		switch op {
		case LessThan:
			return x < y
		case LessOrEqual:
			return x <= y
		case Equal:
			return x == y
		case NotEqual:
			return x != y
		case GreaterOrEqual:
			return x >= y
		case GreaterThan:
			return x > y
		}
		return false
	}
	if x, ok := a.(string); ok {
		y, ok := b.(string)
		if !ok {
			return false
		}
		switch op {
		case LessThan:
			return x < y
		case LessOrEqual:
			return x <= y
		case Equal:
			return x == y
		case NotEqual:
			return x != y
		case GreaterOrEqual:
			return x >= y
		case GreaterThan:
			return x > y
		}
		return false
	}
	x, ok := a.(bool)
	if !ok {
		return false
	}
	y, ok := b.(bool)
	if !ok {
		return false
	}
	switch op {
	case Equal:
		return x == y
	case NotEqual:
		return x != y
	}
	return false
}

func contains(list interface{}, v interface{}) bool {
	values, ok := list.([]interface{})
	if !ok {
		return compare(Equal, v, list)
	}
	for _, item := range values {
		if compare(Equal, v, item) {
			return true
		}
	}
	return false
}

// numeric only accepts actual numbers; strings are never coerced here.
func numeric(v interface{}) (float64, bool) {
	switch v.(type) {
	case float64, float32, int, int32, int64, uint, uint64:
		f, err := field.ToFloat(v)
		return f, err == nil
	}
	return 0, false
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}
