package tabulate

import (
	"net/url"
	"regexp"
	"strings"
)

//Column defines how a single UI column binds to the underlying model. Field is either a
//database column on the base table, or a dotted "relation.column" path naming a gorm
//relationship struct field on the model plus a database column on the related model.
type Column struct {
	Field string
	Label string

	//Searchable columns participate in the OR group built for each search term
	Searchable bool
	//Sortable columns may be ordered by from request state
	Sortable bool
	//Hidden columns still bind constraints but are excluded from rendered rows
	Hidden bool

	//Link is a per-cell navigation pattern, see expandLink
	Link string
}

//splitField splits a dotted "relation.column" path. For plain column names nested is
//false and relation is empty. Only one level of traversal is supported, so anything
//past a second dot stays in column and will fail relation resolution loudly.
func splitField(field string) (relation, column string, nested bool) {
	i := strings.Index(field, ".")
	if i < 0 {
		return "", field, false
	}
	return field[:i], field[i+1:], true
}

var patternLinkToken = regexp.MustCompile(`\{[^{}]+\}`)

//expandLink substitutes {column} placeholders in a link pattern with the row's database
//values. Unknown placeholders expand to nothing. Values are escaped for the position they
//land in: path escaping before any "?", query escaping after, so keys with spaces or
//separators survive the round trip either way.
func expandLink(pattern string, values map[string]string) string {
	if pattern == "" {
		return ""
	}
	query := strings.Index(pattern, "?")
	var out strings.Builder
	last := 0
	for _, loc := range patternLinkToken.FindAllStringIndex(pattern, -1) {
		out.WriteString(pattern[last:loc[0]])
		name := pattern[loc[0]+1 : loc[1]-1]
		if query >= 0 && loc[0] > query {
			out.WriteString(url.QueryEscape(values[name]))
		} else {
			out.WriteString(url.PathEscape(values[name]))
		}
		last = loc[1]
	}
	out.WriteString(pattern[last:])
	return out.String()
}
