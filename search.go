package tabulate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

//term is a single parsed search term. Terms that were double quoted in the raw string
//match exactly instead of by wildcard.
type term struct {
	text  string
	exact bool
}

//parseTerms splits a raw search string into terms, CSV style: commas separate terms,
//double quotes group a term (keeping any commas inside it) and mark it for exact
//matching, and a doubled quote inside a quoted term is a literal quote. Blank terms and
//wildcard-only terms are dropped. If quoting is unbalanced the whole string degrades to
//a plain comma split.
func parseTerms(raw string) []term {
	parsed, ok := scanTerms(raw)
	if !ok {
		parsed = parsed[:0]
		for _, part := range strings.Split(raw, ",") {
			parsed = append(parsed, term{text: part})
		}
	}

	var out []term
	for _, t := range parsed {
		t.text = strings.TrimSpace(t.text)
		if t.text == "" {
			continue
		}
		if !t.exact && strings.Trim(t.text, "*%") == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

//scanTerms walks the raw string tracking double quote state. ok is false when quoting is
//unbalanced.
func scanTerms(raw string) (terms []term, ok bool) {
	var (
		sb      strings.Builder
		inQuote bool
		quoted  bool
	)

	flush := func() {
		terms = append(terms, term{text: sb.String(), exact: quoted})
		sb.Reset()
		quoted = false
	}

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && inQuote:
			if i+1 < len(runes) && runes[i+1] == '"' {
				sb.WriteRune('"')
				i++
				continue
			}
			inQuote = false
		case r == '"':
			inQuote = true
			quoted = true
		case r == ',' && !inQuote:
			flush()
		default:
			sb.WriteRune(r)
		}
	}
	if inQuote {
		return nil, false
	}
	flush()
	return terms, true
}

//likePredicate returns a single-placeholder condition matching expr against a term,
//honoring the term's search mode and the dialect's case sensitivity rules. MySQL LIKE
//and = are already case insensitive under the default collations and need a BINARY cast
//to become sensitive; Postgres is the other way around and needs ILIKE or LOWER() to
//become insensitive.
func likePredicate(dialect, expr string, t term, caseSensitive bool) (string, interface{}) {
	if t.exact {
		switch {
		case caseSensitive && dialect == "mysql":
			return fmt.Sprintf("BINARY %s = ?", expr), t.text
		case caseSensitive:
			return fmt.Sprintf("%s = ?", expr), t.text
		case dialect == "mysql":
			return fmt.Sprintf("%s = ?", expr), t.text
		default:
			return fmt.Sprintf("LOWER(%s) = LOWER(?)", expr), t.text
		}
	}

	pattern := wildcardPattern(t.text)
	switch {
	case caseSensitive && dialect == "mysql":
		return fmt.Sprintf("BINARY %s LIKE ?", expr), pattern
	case caseSensitive:
		return fmt.Sprintf("%s LIKE ?", expr), pattern
	case dialect == "postgres":
		return fmt.Sprintf("%s ILIKE ?", expr), pattern
	case dialect == "mysql":
		return fmt.Sprintf("%s LIKE ?", expr), pattern
	default:
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", expr), pattern
	}
}

//wildcardPattern converts a term into a LIKE pattern. A literal * or % in the term is a
//user supplied wildcard mask; a term without one matches anywhere in the value.
func wildcardPattern(text string) string {
	if strings.ContainsAny(text, "*%") {
		return strings.ReplaceAll(text, "*", "%")
	}
	return "%" + text + "%"
}

//applySearch binds the raw search string onto the query. Each term becomes one OR group
//across every searchable column and the groups are ANDed together, so every term has to
//match somewhere.
func (t *Table) applySearch(b *binding, raw string) error {
	terms := parseTerms(raw)
	if len(terms) == 0 {
		return nil
	}

	var searchable []Column
	for _, c := range t.columns {
		if c.Searchable {
			searchable = append(searchable, c)
		}
	}
	if len(searchable) == 0 {
		return nil
	}

	for _, tm := range terms {
		var (
			parts []string
			args  []interface{}
		)
		for _, c := range searchable {
			expr, err := b.column(c.Field)
			if err != nil {
				return fmt.Errorf("search column %s: %w", c.Field, err)
			}
			cond, arg := likePredicate(b.dialect, expr, tm, t.caseSensitive)
			parts = append(parts, cond)
			args = append(args, arg)
		}
		b.query = b.query.Where("("+strings.Join(parts, " OR ")+")", args...)
		b.logger.Debug("applied search term", zap.String("term", tm.text), zap.Bool("exact", tm.exact))
	}
	return nil
}
