package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	digitGroups  = regexp.MustCompile(`\d+`)
	termSplitter = regexp.MustCompile(`[\s,;]+`)
)

// ExtractIDs turns free text into the list of digit groups it contains:
// "12, 45 67" gives [12 45 67]. When the text holds non-numeric terms, a note
// suggests a name search instead.
func ExtractIDs(value any) (any, []string) {
	var text []string
	for _, v := range values(value) {
		text = append(text, stringOf(v))
	}
	joined := strings.Join(text, " ")

	var ids []any
	for _, group := range digitGroups.FindAllString(joined, -1) {
		if id, err := strconv.ParseInt(group, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	var words []string
	for _, term := range SplitTerms(joined) {
		if strings.IndexFunc(term, unicode.IsLetter) >= 0 {
			words = append(words, term)
		}
	}
	if len(words) == 0 {
		return ids, nil
	}

	if len(ids) == 0 {
		return nil, []string{fmt.Sprintf("%q does not contain any identifier, use a name search to look for text", joined)}
	}
	return ids, []string{fmt.Sprintf("only identifiers were searched in %q, ignored terms: %s", joined, strings.Join(words, ", "))}
}

// FormatEANOrVisa strips the separators users paste in EAN and visa numbers.
func FormatEANOrVisa(value any) (any, []string) {
	var out []any
	for _, v := range values(value) {
		s := strings.NewReplacer("-", "", " ", "", ".", "").Replace(stringOf(v))
		if s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out, nil
}

// SplitTerms splits free text on blanks, commas and semicolons.
func SplitTerms(text string) []string {
	var terms []string
	for _, term := range termSplitter.Split(text, -1) {
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Negate inverts a boolean value, for fields whose checkbox means the opposite
// of their column test.
func Negate(value any) (any, []string) {
	b, ok := ParseBool(value)
	if !ok {
		return nil, nil
	}
	return !b, nil
}
