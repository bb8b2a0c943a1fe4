package tabulate

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/jinzhu/gorm"
)

//Result is one page of bound results plus everything the view needs to render it.
type Result struct {
	Columns []Column
	Rows    []Row

	//Total is -1 and LastPage 0 under simple pagination
	Total    int
	Page     int
	PerPage  int
	LastPage int
	HasMore  bool

	Search  string
	Filters map[string][]string
	Sort    []SortSpec
	Actions []Action
}

//Row is one rendered table row. Cells align with Result.Columns.
type Row struct {
	Key   string
	Link  string
	Cells []Cell
}

//Cell is a single rendered value, optionally wrapped in a navigation link.
type Cell struct {
	Value interface{}
	Link  string
}

//go:embed ui/table.html.tmpl
var defaultTemplateHTML string

var defaultTemplate = template.Must(template.New("table").Parse(defaultTemplateHTML))

//Render writes the result as an HTML fragment using the embedded default template.
func (r *Result) Render(w io.Writer) error {
	return r.RenderTemplate(w, defaultTemplate)
}

//RenderTemplate writes the result through a caller supplied template, for applications
//that override the default markup.
func (r *Result) RenderTemplate(w io.Writer, tpl *template.Template) error {
	if err := tpl.Execute(w, r); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

//SortDir reports the current direction for a column, "asc", "desc" or empty.
func (r *Result) SortDir(field string) string {
	for _, s := range r.Sort {
		if strings.EqualFold(s.Field, field) {
			if s.Desc {
				return "desc"
			}
			return "asc"
		}
	}
	return ""
}

//NextSort returns the sort parameter a column header link should submit, toggling the
//column's current direction.
func (r *Result) NextSort(field string) string {
	if r.SortDir(field) == "asc" {
		return field + ":desc"
	}
	return field + ":asc"
}

//query collects the request parameters every navigation link carries so clicking a
//header or pager link keeps the current search, filters and page size.
func (r *Result) query(keepSort bool) url.Values {
	q := url.Values{}
	if r.Search != "" {
		q.Set("q", r.Search)
	}
	for field, values := range r.Filters {
		for _, v := range values {
			q.Add("filter["+field+"]", v)
		}
	}
	if r.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(r.PerPage))
	}
	if keepSort {
		for _, s := range r.Sort {
			dir := ":asc"
			if s.Desc {
				dir = ":desc"
			}
			q.Add("sort", s.Field+dir)
		}
	}
	return q
}

//SortLink builds a column header link that toggles the column's sort direction while
//keeping the rest of the request state. Re-sorting goes back to the first page.
func (r *Result) SortLink(field string) string {
	q := r.query(false)
	q.Set("sort", r.NextSort(field))
	return "?" + q.Encode()
}

//PageLink builds a pager link for the given page, keeping the full request state.
func (r *Result) PageLink(page int) string {
	q := r.query(true)
	q.Set("page", strconv.Itoa(page))
	return "?" + q.Encode()
}

//Pages returns a window of up to seven page numbers around the current page for the
//pager. Empty under simple pagination.
func (r *Result) Pages() []int {
	if r.LastPage < 1 {
		return nil
	}

	const window = 7
	first := r.Page - window/2
	if first > r.LastPage-window+1 {
		first = r.LastPage - window + 1
	}
	if first < 1 {
		first = 1
	}

	var pages []int
	for p := first; p <= r.LastPage && len(pages) < window; p++ {
		pages = append(pages, p)
	}
	return pages
}

func (r *Result) PrevPage() int {
	if r.Page <= 1 {
		return 1
	}
	return r.Page - 1
}

func (r *Result) NextPage() int {
	return r.Page + 1
}

//buildRows turns the fetched model slice into rendered rows: one cell per visible
//column, the stringified primary key, and the expanded row link. Relation column values
//come off the preloaded structs, so a visible relation column needs its relation in
//With to render anything.
func (t *Table) buildRows(b *binding, slice reflect.Value) ([]Row, error) {
	columns := t.visibleColumns()
	relatedMS := make(map[string]*gorm.ModelStruct)

	rows := make([]Row, 0, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		item := reflect.Indirect(slice.Index(i))
		if !item.IsValid() || item.Kind() != reflect.Struct {
			return nil, fmt.Errorf("row %d is not a struct", i)
		}

		linkValues := make(map[string]string, len(b.ms.StructFields))
		for _, f := range b.ms.StructFields {
			if !f.IsNormal {
				continue
			}
			if v, ok := fieldValue(item, f.Name); ok {
				linkValues[f.DBName] = fmt.Sprintf("%v", v)
			}
		}

		row := Row{
			Link:  expandLink(t.rowLink, linkValues),
			Cells: make([]Cell, 0, len(columns)),
		}
		if len(b.ms.PrimaryFields) > 0 {
			row.Key = linkValues[b.ms.PrimaryFields[0].DBName]
		}

		for _, c := range columns {
			relation, column, nested := splitField(c.Field)

			var value interface{}
			if nested {
				value = t.relatedValue(b, relatedMS, item, relation, column)
			} else if f := fieldByDBName(b.ms, column); f != nil {
				value, _ = fieldValue(item, f.Name)
			}

			row.Cells = append(row.Cells, Cell{
				Value: value,
				Link:  expandLink(c.Link, linkValues),
			})
		}

		rows = append(rows, row)
	}
	return rows, nil
}

//relatedValue reads a relation column off the preloaded struct. To-many relations
//render their values joined with a comma. Missing or unloaded relations render empty.
func (t *Table) relatedValue(b *binding, cache map[string]*gorm.ModelStruct, item reflect.Value, relation, column string) interface{} {
	field, err := b.relationship(relation)
	if err != nil {
		return nil
	}

	ms, ok := cache[field.Name]
	if !ok {
		ms = b.query.NewScope(reflect.New(baseType(field.Struct.Type)).Interface()).GetModelStruct()
		cache[field.Name] = ms
	}
	related := fieldByDBName(ms, column)
	if related == nil {
		return nil
	}

	val := item.FieldByName(field.Name)
	if !val.IsValid() {
		return nil
	}

	if val.Kind() == reflect.Slice {
		var parts []string
		for i := 0; i < val.Len(); i++ {
			el := reflect.Indirect(val.Index(i))
			if v, ok := fieldValue(el, related.Name); ok {
				parts = append(parts, fmt.Sprintf("%v", v))
			}
		}
		return strings.Join(parts, ", ")
	}

	el := reflect.Indirect(val)
	if !el.IsValid() {
		//nil pointer, relation not loaded or absent
		return nil
	}
	if v, ok := fieldValue(el, related.Name); ok {
		return v
	}
	return nil
}

//fieldValue reads a struct field by name, unwrapping pointers. ok is false for missing
//fields and nil pointers.
func fieldValue(item reflect.Value, name string) (interface{}, bool) {
	v := item.FieldByName(name)
	if !v.IsValid() {
		return nil, false
	}
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}

func fieldByDBName(ms *gorm.ModelStruct, column string) *gorm.StructField {
	for _, f := range ms.StructFields {
		if f.IsNormal && f.DBName == column {
			return f
		}
	}
	return nil
}
