package predicate

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/antoniomachine/bigml/field"
)

// separators caches compiled item separator expressions by source.
var separators sync.Map

// termCount returns the occurrences of term in the value of a text or
// items field, and false if the field cannot hold terms.
func termCount(v interface{}, term string, f *field.Field) (int, bool) {
	text, ok := v.(string)
	if !ok {
		return 0, false
	}
	switch f.Optype {
	case field.Text:
		return termMatches(text, f.TermForms(term), f), true
	case field.Items:
		return itemMatches(text, term, f.ItemAnalysis), true
	}
	return 0, false
}

func isFullTerm(term string, f *field.Field) bool {
	if f == nil || f.Optype != field.Text {
		return false
	}
	switch f.TokenMode() {
	case field.FullTermsOnly:
		return true
	case field.AllTokens:
		return hasInnerBoundary(term)
	}
	return false
}

func termMatches(text string, forms []string, f *field.Field) int {
	caseSensitive := f.TermAnalysis != nil && f.TermAnalysis.CaseSensitive
	if f.TokenMode() == field.FullTermsOnly {
		return fullTermMatch(text, forms[0], caseSensitive)
	}
	return tokenMatches(text, forms, caseSensitive)
}

func fullTermMatch(text, term string, caseSensitive bool) int {
	if caseSensitive {
		if text == term {
			return 1
		}
		return 0
	}
	if strings.EqualFold(text, term) {
		return 1
	}
	return 0
}

// isWordRune reports whether r belongs in a token. Underscores and
// punctuation separate tokens.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// hasInnerBoundary reports whether term switches between word and
// non-word runes somewhere other than at its ends.
func hasInnerBoundary(term string) bool {
	runes := []rune(term)
	for k := 1; k < len(runes); k++ {
		if isWordRune(runes[k-1]) != isWordRune(runes[k]) {
			return true
		}
	}
	return false
}

// tokenMatches counts the non-overlapping occurrences of any of the
// forms as a whole token. Forms are tried in order at every token start.
func tokenMatches(text string, forms []string, caseSensitive bool) int {
	if !caseSensitive {
		text = strings.ToLower(text)
		lowered := make([]string, len(forms))
		for i, form := range forms {
			lowered[i] = strings.ToLower(form)
		}
		forms = lowered
	}
	var count int
	prev := utf8.RuneError
	for i := 0; i < len(text); {
		if i == 0 || !isWordRune(prev) {
			if n := matchForm(text, i, forms); n > 0 {
				count++
				prev, _ = utf8.DecodeLastRuneInString(text[:i+n])
				i += n
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		prev = r
		i += size
	}
	return count
}

// matchForm returns the length of the first form found at text[i:] that
// ends on a token boundary, or 0.
func matchForm(text string, i int, forms []string) int {
	for _, form := range forms {
		if form == "" || !strings.HasPrefix(text[i:], form) {
			continue
		}
		end := i + len(form)
		if end == len(text) {
			return len(form)
		}
		if next, _ := utf8.DecodeRuneInString(text[end:]); !isWordRune(next) {
			return len(form)
		}
	}
	return 0
}

func separatorPattern(expr string) (*regexp.Regexp, error) {
	if re, ok := separators.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	separators.Store(expr, re)
	return re, nil
}

func itemMatches(text, item string, ia *field.ItemAnalysis) int {
	separator := " "
	var expr string
	if ia != nil {
		if ia.Separator != "" {
			separator = ia.Separator
		}
		expr = ia.SeparatorRegexp
	}
	if expr == "" {
		expr = regexp.QuoteMeta(separator)
	}
	re, err := separatorPattern(expr)
	if err != nil {
		return 0
	}
	var count int
	for _, candidate := range re.Split(text, -1) {
		if candidate == item {
			count++
		}
	}
	return count
}
