package tabulate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

//Filter constrains the query from the values a UI control submitted for one column.
//Implementations must treat unparseable values as "no constraint" rather than erroring,
//since they come straight from the request.
type Filter interface {
	apply(b *binding, field string, values []string) error
}

//TextFilter matches the column against each submitted value with the same dialect aware
//LIKE selection search uses. Multiple values all have to match.
type TextFilter struct {
	CaseSensitive bool
}

func (f TextFilter) apply(b *binding, field string, values []string) error {
	expr, err := b.column(field)
	if err != nil {
		return err
	}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || strings.Trim(v, "*%") == "" {
			continue
		}
		cond, arg := likePredicate(b.dialect, expr, term{text: v}, f.CaseSensitive)
		b.query = b.query.Where(cond, arg)
	}
	return nil
}

//SelectFilter constrains the column to the submitted values with IN. When Options is
//set it acts as an allow list and values outside it are silently dropped, so a tampered
//request cannot widen the filter.
type SelectFilter struct {
	Options []string
}

func (f SelectFilter) apply(b *binding, field string, values []string) error {
	expr, err := b.column(field)
	if err != nil {
		return err
	}

	allowed := values
	if len(f.Options) > 0 {
		allowed = nil
		for _, v := range values {
			for _, opt := range f.Options {
				if v == opt {
					allowed = append(allowed, v)
					break
				}
			}
		}
	}
	if len(allowed) == 0 {
		return nil
	}

	b.query = b.query.Where(fmt.Sprintf("%s IN (?)", expr), allowed)
	return nil
}

//BoolFilter constrains the column to a boolean submitted as 1/0, true/false or yes/no.
//Anything else skips the filter.
type BoolFilter struct{}

func (f BoolFilter) apply(b *binding, field string, values []string) error {
	if len(values) == 0 {
		return nil
	}

	var want bool
	switch strings.ToLower(strings.TrimSpace(values[0])) {
	case "1", "true", "yes":
		want = true
	case "0", "false", "no":
		want = false
	default:
		return nil
	}

	expr, err := b.column(field)
	if err != nil {
		return err
	}
	b.query = b.query.Where(fmt.Sprintf("%s = ?", expr), want)
	return nil
}

//DateRangeFilter applies a day range submitted as "from|to", either side optional. The
//to day is included by constraining with < to+24h instead of <=, which works no matter
//what time precision the column stores. Invalid dates skip their side of the range.
type DateRangeFilter struct {
	//Layout overrides the expected date format, 2006-01-02 by default
	Layout string
}

func (f DateRangeFilter) apply(b *binding, field string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	layout := f.Layout
	if layout == "" {
		layout = "2006-01-02"
	}

	from, to := splitRange(values[0])

	expr, err := b.column(field)
	if err != nil {
		return err
	}

	if from != "" {
		if v, err := time.Parse(layout, from); err == nil {
			b.query = b.query.Where(fmt.Sprintf("%s >= ?", expr), v)
		}
	}
	if to != "" {
		if v, err := time.Parse(layout, to); err == nil {
			b.query = b.query.Where(fmt.Sprintf("%s < ?", expr), v.Add(24*time.Hour))
		}
	}
	return nil
}

//NumberRangeFilter applies numeric bounds submitted as "min|max", either side optional.
type NumberRangeFilter struct{}

func (f NumberRangeFilter) apply(b *binding, field string, values []string) error {
	if len(values) == 0 {
		return nil
	}

	min, max := splitRange(values[0])

	expr, err := b.column(field)
	if err != nil {
		return err
	}

	if min != "" {
		if v, err := strconv.ParseFloat(min, 64); err == nil {
			b.query = b.query.Where(fmt.Sprintf("%s >= ?", expr), v)
		}
	}
	if max != "" {
		if v, err := strconv.ParseFloat(max, 64); err == nil {
			b.query = b.query.Where(fmt.Sprintf("%s <= ?", expr), v)
		}
	}
	return nil
}

//splitRange splits a "low|high" range value, tolerating a missing separator or side.
func splitRange(value string) (low, high string) {
	parts := strings.SplitN(value, "|", 2)
	low = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		high = strings.TrimSpace(parts[1])
	}
	return low, high
}

//applyFilters binds every registered filter that has values in the request state.
//Registered filters run in field order so generated SQL is deterministic; state keys
//with no registered filter are ignored.
func (t *Table) applyFilters(b *binding, state State) error {
	fields := make([]string, 0, len(t.filters))
	for field := range t.filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		values, ok := state.Filters[field]
		if !ok {
			continue
		}
		if err := t.filters[field].apply(b, field, values); err != nil {
			return fmt.Errorf("filter %s: %w", field, err)
		}
		b.logger.Debug("applied filter", zap.String("column", field), zap.Strings("values", values))
	}
	return nil
}
