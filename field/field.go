/*
Package field describes the fields a model document declares: their ids,
names and optypes, together with the text and item analysis options that
term predicates need to evaluate.
*/
package field

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

/*
Optype is the declared type of a field's values
*/
type Optype string

const (
	// Numeric fields hold float64 values
	Numeric Optype = "numeric"
	// Categorical fields hold one string out of a finite set
	Categorical Optype = "categorical"
	// Text fields hold free text evaluated by term
	Text Optype = "text"
	// Items fields hold a list of items joined by a separator
	Items Optype = "items"
	// Datetime fields are only kept as strings
	Datetime Optype = "datetime"
)

// Token modes for text analysis
const (
	TokensOnly    = "tokens_only"
	FullTermsOnly = "full_terms_only"
	AllTokens     = "all"
)

// TermAnalysis holds the options used to tokenize a text field.
type TermAnalysis struct {
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
	TokenMode     string `json:"token_mode" yaml:"token_mode"`
}

// ItemAnalysis holds the options used to split an items field.
type ItemAnalysis struct {
	Separator       string `json:"separator" yaml:"separator"`
	SeparatorRegexp string `json:"separator_regexp" yaml:"separator_regexp"`
}

// Summary keeps the parts of a field summary evaluation depends on.
type Summary struct {
	// Categories lists the category names of a categorical field in
	// the order the model uses them.
	Categories []string `json:"-" yaml:"categories"`
	// TermForms maps a term to the alternative forms that also count
	// as an occurrence of it.
	TermForms map[string][]string `json:"term_forms" yaml:"term_forms"`
}

/*
Field is a column declared by a model document.
*/
type Field struct {
	ID           string        `json:"-" yaml:"-"`
	Name         string        `json:"name" yaml:"name"`
	Optype       Optype        `json:"optype" yaml:"optype"`
	Column       int           `json:"column_number" yaml:"column_number"`
	TermAnalysis *TermAnalysis `json:"term_analysis,omitempty" yaml:"term_analysis,omitempty"`
	ItemAnalysis *ItemAnalysis `json:"item_analysis,omitempty" yaml:"item_analysis,omitempty"`
	Summary      *Summary      `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func (f *Field) String() string {
	return f.Name
}

// TokenMode returns the token mode for the field, defaulting to
// TokensOnly when none was declared.
func (f *Field) TokenMode() string {
	if f.TermAnalysis == nil || f.TermAnalysis.TokenMode == "" {
		return TokensOnly
	}
	return f.TermAnalysis.TokenMode
}

// TermForms returns the term followed by its alternative forms.
func (f *Field) TermForms(term string) []string {
	forms := []string{term}
	if f.Summary != nil {
		forms = append(forms, f.Summary.TermForms[term]...)
	}
	return forms
}

// Categories returns the categories of a categorical field, or nil.
func (f *Field) Categories() []string {
	if f.Summary == nil {
		return nil
	}
	return f.Summary.Categories
}

/*
Fields is the field dictionary of a model, keyed by field id. It is
shared read-only by every node of a tree.
*/
type Fields map[string]*Field

// Label values accepted by Fields.Label
const (
	LabelName = "name"
	LabelID   = "id"
)

/*
Label takes a field id and a label kind and returns the text used to
refer to the field in rules: its name for LabelName and its id for LabelID.
Unknown ids are returned as they are.
*/
func (fs Fields) Label(id, label string) string {
	f, ok := fs[id]
	if !ok || label == LabelID {
		return id
	}
	return f.Name
}

// ByColumn orders fields by their column number, then by id.
func ByColumn(a, b *Field) bool {
	if a.Column != b.Column {
		return a.Column < b.Column
	}
	return a.ID < b.ID
}

/*
Sorted returns the fields ordered with the given less function. A nil
function orders them ByColumn.
*/
func (fs Fields) Sorted(less func(a, b *Field) bool) []*Field {
	if less == nil {
		less = ByColumn
	}
	result := make([]*Field, 0, len(fs))
	for _, f := range fs {
		result = append(result, f)
	}
	sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	return result
}

// IDFor returns the id of the field with the given id or name.
func (fs Fields) IDFor(key string) (string, bool) {
	if _, ok := fs[key]; ok {
		return key, true
	}
	for id, f := range fs {
		if f.Name == key {
			return id, true
		}
	}
	return "", false
}

/*
Normalize takes an input record keyed by field ids or names and returns
a new record keyed by field ids. Fields the dictionary does not declare
and nil values are dropped, and string values for numeric fields are
parsed as numbers. An error is returned if a numeric field gets a value
that cannot be read as a number.
*/
func (fs Fields) Normalize(record map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(record))
	for k, v := range record {
		if v == nil {
			continue
		}
		id, ok := fs.IDFor(k)
		if !ok {
			continue
		}
		if fs[id].Optype == Numeric {
			n, err := ToFloat(v)
			if err != nil {
				return nil, fmt.Errorf("normalizing field %s: %v", k, err)
			}
			result[id] = n
			continue
		}
		result[id] = v
	}
	return result, nil
}

/*
ToFloat converts numeric Go values and numeric strings to float64.
*/
func ToFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected a number, got %T value", v)
}
