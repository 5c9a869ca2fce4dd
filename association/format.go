package association

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

/*
Format is an export format for rules
*/
type Format string

// Supported formats
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// FormatError represents an error related with rule formats
type FormatError string

func (fe FormatError) Error() string {
	return string(fe)
}

// ErrUnsupportedFormat is returned when exporting to an unknown format.
const ErrUnsupportedFormat = FormatError("unsupported rule export format")

// CSVHeader names the columns of ToCSV rows.
var CSVHeader = []string{
	"Rule ID", "Antecedent", "Consequent",
	"Antecedent Coverage %", "Antecedent Coverage",
	"Support %", "Support",
	"Confidence", "Leverage", "Lift", "p-value",
	"Consequent Coverage %", "Consequent Coverage",
}

/*
ToCSV returns the values of the rule in CSV column order: id, lhs, rhs,
lhs cover (2 columns), support (2 columns), confidence, leverage, lift,
p-value and rhs cover (2 columns). Slots of absent or short cover and
support pairs hold nil so every column keeps its position.
*/
func ToCSV(r *Rule) []interface{} {
	row := []interface{}{r.ID, r.LHS, r.RHS}
	row = append(row, pair(r.LHSCover)...)
	row = append(row, pair(r.Support)...)
	row = append(row, r.Confidence, r.Leverage, r.Lift, r.PValue)
	row = append(row, pair(r.RHSCover)...)
	return row
}

func pair(values []float64) []interface{} {
	result := []interface{}{nil, nil}
	for i := 0; i < len(values) && i < 2; i++ {
		result[i] = values[i]
	}
	return result
}

/*
ToJSON returns every field of the rule keyed by name. Absent covers and
support are nil.
*/
func ToJSON(r *Rule) map[string]interface{} {
	return map[string]interface{}{
		"id":         r.ID,
		"lhs":        r.LHS,
		"rhs":        r.RHS,
		"lhs_cover":  nilIfEmpty(r.LHSCover),
		"rhs_cover":  nilIfEmpty(r.RHSCover),
		"support":    nilIfEmpty(r.Support),
		"confidence": r.Confidence,
		"leverage":   r.Leverage,
		"lift":       r.Lift,
		"p_value":    r.PValue,
	}
}

func nilIfEmpty(values []float64) interface{} {
	if len(values) == 0 {
		return nil
	}
	return values
}

/*
Export takes a rule and a format and returns the ToCSV row or the ToJSON
object for it. Any other format fails with ErrUnsupportedFormat.
*/
func Export(r *Rule, f Format) (interface{}, error) {
	switch f {
	case FormatCSV:
		return ToCSV(r), nil
	case FormatJSON:
		return ToJSON(r), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

/*
Write takes an io.Writer, a list of rules and a format and writes the
rules onto the writer: as CSV with a header row, or as a JSON array.
*/
func Write(w io.Writer, rules []*Rule, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, rules)
	case FormatJSON:
		return WriteJSON(w, rules)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// WriteCSV writes a header row and a ToCSV row per rule.
func WriteCSV(w io.Writer, rules []*Rule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing rules header: %v", err)
	}
	for _, r := range rules {
		row := ToCSV(r)
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = csvValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing rule %s: %v", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the rules as a JSON array of ToJSON objects.
func WriteJSON(w io.Writer, rules []*Rule) error {
	objects := make([]map[string]interface{}, len(rules))
	for i, r := range rules {
		objects[i] = ToJSON(r)
	}
	if err := json.NewEncoder(w).Encode(objects); err != nil {
		return fmt.Errorf("writing rules as JSON: %v", err)
	}
	return nil
}

func csvValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []int:
		parts := make([]string, len(x))
		for i, idx := range x {
			parts[i] = strconv.Itoa(idx)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%v", v)
}
