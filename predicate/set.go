package predicate

import (
	"strings"

	"github.com/antoniomachine/bigml/field"
)

/*
Set is an ordered conjunction of entries guarding a tree node.
*/
type Set []Entry

/*
Apply takes an input record and the fields of the model and returns true
if the record satisfies every predicate in the set. AlwaysTrue entries
are satisfied by any record, so an empty set or one holding only
AlwaysTrue entries is satisfied by every record.
*/
func (s Set) Apply(record map[string]interface{}, fields field.Fields) bool {
	for _, e := range s {
		p, ok := e.(*Predicate)
		if !ok {
			continue
		}
		if !p.Apply(record, fields) {
			return false
		}
	}
	return true
}

/*
Rule renders every predicate of the set with the given label kind and
joins them with " and ". AlwaysTrue entries are left out, so a set
holding only them renders as the empty string.
*/
func (s Set) Rule(fields field.Fields, label string) string {
	var parts []string
	for _, p := range s.Predicates() {
		parts = append(parts, p.Rule(fields, label))
	}
	return strings.Join(parts, " and ")
}

// Predicates returns the predicate entries of the set, in order.
func (s Set) Predicates() []*Predicate {
	var result []*Predicate
	for _, e := range s {
		if p, ok := e.(*Predicate); ok {
			result = append(result, p)
		}
	}
	return result
}

// Unconditional reports whether the set holds no predicate at all.
func (s Set) Unconditional() bool {
	return len(s.Predicates()) == 0
}

func (s Set) String() string {
	if s.Unconditional() {
		return "true"
	}
	return s.Rule(nil, field.LabelID)
}
