package tabulate

import (
	"fmt"
	"strings"
)

//SortSpec is one ORDER BY entry in the form the UI submits it.
type SortSpec struct {
	Field string
	Desc  bool
}

//parseSort turns "field:dir" entries into SortSpecs. Each entry may itself hold several
//comma separated specs. Direction defaults to ascending; entries with an unknown
//direction are dropped.
func parseSort(entries []string) []SortSpec {
	var out []SortSpec
	for _, entry := range entries {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			field, dir := part, "asc"
			if i := strings.LastIndex(part, ":"); i >= 0 {
				field, dir = strings.TrimSpace(part[:i]), strings.ToLower(strings.TrimSpace(part[i+1:]))
			}
			if field == "" {
				continue
			}

			switch dir {
			case "asc":
				out = append(out, SortSpec{Field: field})
			case "desc":
				out = append(out, SortSpec{Field: field, Desc: true})
			}
		}
	}
	return out
}

//applySort binds the request's sort order, falling back to the table default when the
//state carries none. Request sorts only apply to columns marked Sortable; the default
//sort is developer supplied and bypasses that gate. Relation columns order through the
//same shared join search and filters use.
func (t *Table) applySort(b *binding, specs []SortSpec) error {
	fromState := len(specs) > 0
	if !fromState {
		specs = t.defaultSort
	}

	for _, s := range specs {
		field := s.Field
		if fromState {
			col, ok := t.columnByField(s.Field)
			if !ok || !col.Sortable {
				//ignore sorts the UI is not allowed to ask for
				continue
			}
			field = col.Field
		}

		expr, err := b.column(field)
		if err != nil {
			return fmt.Errorf("sort column %s: %w", field, err)
		}

		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		if _, _, nested := splitField(field); nested {
			//relation sorts run under GROUP BY on the base primary key, so the joined
			//column has to be aggregated; MIN and MAX keep the direction meaningful for
			//to-many relations
			agg := "MIN"
			if s.Desc {
				agg = "MAX"
			}
			expr = fmt.Sprintf("%s(%s)", agg, expr)
		}
		b.query = b.query.Order(expr + " " + dir)
	}
	return nil
}
