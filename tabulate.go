package tabulate

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jinzhu/gorm"
	"go.uber.org/zap"
)

//Table binds UI table state onto gorm queries for one model. Configure it once with the
//chainable methods, then call Run per request. A Table holds no per-request state and is
//safe to share once configured.
type Table struct {
	db    *gorm.DB
	model interface{}

	columns          []Column
	filters          map[string]Filter
	actions          map[string]Action
	scopes           []func(*gorm.DB) *gorm.DB
	eager            []string
	defaultSort      []SortSpec
	perPage          int
	perPageOptions   []int
	paginationMethod string
	caseSensitive    bool
	rowLink          string
	logger           *zap.Logger
}

//New creates a table over the given model. The model value is used the way gorm uses
//it, for its type information only.
func New(db *gorm.DB, model interface{}) *Table {
	return &Table{
		db:      db,
		model:   model,
		filters: make(map[string]Filter),
		actions: make(map[string]Action),
		logger:  zap.NewNop(),
	}
}

//Columns sets the UI columns, replacing any set before.
func (t *Table) Columns(columns ...Column) *Table {
	t.columns = columns
	return t
}

//Filter registers a filter for a column field. The field may be a dotted
//"relation.column" path.
func (t *Table) Filter(field string, f Filter) *Table {
	t.filters[field] = f
	return t
}

//Action registers a bulk action, replacing any action with the same name.
func (t *Table) Action(a Action) *Table {
	t.actions[a.Name] = a
	return t
}

//Scope adds a permanent query scope applied before any request constraints. Use it for
//soft delete guards or tenant restriction; bulk actions run inside it too.
func (t *Table) Scope(fn func(*gorm.DB) *gorm.DB) *Table {
	t.scopes = append(t.scopes, fn)
	return t
}

//With sets the relations to eager load on every page of results. Nested dotted paths
//pass through to gorm's Preload untouched. Eager loading never drives constraints, that
//is what the relation joins are for.
func (t *Table) With(relations ...string) *Table {
	t.eager = relations
	return t
}

//DefaultSort appends a sort applied when the request state carries none.
func (t *Table) DefaultSort(field string, desc bool) *Table {
	t.defaultSort = append(t.defaultSort, SortSpec{Field: field, Desc: desc})
	return t
}

//PerPage sets the page size used when the request does not ask for one.
func (t *Table) PerPage(n int) *Table {
	t.perPage = n
	return t
}

//PerPageOptions restricts requestable page sizes; requested values snap to the nearest
//option.
func (t *Table) PerPageOptions(options ...int) *Table {
	t.perPageOptions = options
	return t
}

//PaginateBy selects the pagination method by name, PaginateStandard or PaginateSimple.
//Unknown names surface as ErrUnknownPaginator from Run.
func (t *Table) PaginateBy(method string) *Table {
	t.paginationMethod = method
	return t
}

//CaseSensitive makes search matching case sensitive.
func (t *Table) CaseSensitive() *Table {
	t.caseSensitive = true
	return t
}

//RowLink sets the row level navigation link pattern. {column} placeholders expand from
//the row's database values, for example "/users/{user_id}".
func (t *Table) RowLink(pattern string) *Table {
	t.rowLink = pattern
	return t
}

//WithLogger attaches a logger; applied clauses are logged at debug level.
func (t *Table) WithLogger(logger *zap.Logger) *Table {
	t.logger = logger
	return t
}

func (t *Table) columnByField(field string) (Column, bool) {
	for _, c := range t.columns {
		if strings.EqualFold(c.Field, field) {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) visibleColumns() []Column {
	out := make([]Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

func (t *Table) newBinding() *binding {
	scope := t.db.NewScope(t.model)
	return &binding{
		query:   t.db.Model(t.model),
		table:   scope.TableName(),
		dialect: t.db.Dialect().GetName(),
		ms:      scope.GetModelStruct(),
		logger:  t.logger,
		joined:  make(map[string]string),
	}
}

//Run binds the request state onto a fresh query, executes it and fills out, which must
//be a pointer to a slice of the table's model (structs or pointers). The returned
//Result carries the rendered rows and pagination metadata.
//
//Constraints apply in a fixed order: permanent scopes, filters, search, count (for
//standard pagination), sort, page window, eager loads, find.
func (t *Table) Run(ctx context.Context, state State, out interface{}) (*Result, error) {
	outVal := reflect.ValueOf(out)
	if outVal.Kind() != reflect.Ptr || outVal.IsNil() || outVal.Elem().Kind() != reflect.Slice {
		return nil, fmt.Errorf("out must be a non nil pointer to a slice, got %T", out)
	}

	b := t.newBinding()
	for _, scope := range t.scopes {
		b.query = scope(b.query)
	}

	if err := t.applyFilters(b, state); err != nil {
		return nil, err
	}
	if err := t.applySearch(b, state.Search); err != nil {
		return nil, err
	}

	page := t.pageRequest(state)
	res := &Result{
		Columns: t.visibleColumns(),
		Page:    page.page,
		PerPage: page.perPage,
		Search:  state.Search,
		Filters: state.Filters,
		Sort:    parseSort(state.Sort),
		Actions: t.actionList(),
	}

	method := t.paginationMethod
	if method == "" {
		method = PaginateStandard
	}
	switch method {
	case PaginateStandard:
		total, err := b.count()
		if err != nil {
			return nil, err
		}
		res.Total = total
		res.LastPage = (total + page.perPage - 1) / page.perPage
		if res.LastPage < 1 {
			res.LastPage = 1
		}
	case PaginateSimple:
		res.Total = -1
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPaginator, t.paginationMethod)
	}

	if err := t.applySort(b, res.Sort); err != nil {
		return nil, err
	}

	if len(b.joined) > 0 {
		//collapse join fan-out so to-many relations cannot duplicate rows, and project
		//the base table only so joined columns cannot shadow its fields during scanning
		pk, err := b.primaryKey()
		if err != nil {
			return nil, err
		}
		b.query = b.query.Select(b.quote(b.table) + ".*").Group(pk)
	}

	limit := page.perPage
	if method == PaginateSimple {
		//fetch one extra row to learn whether a next page exists
		limit++
	}
	b.query = b.query.Offset((page.page - 1) * page.perPage).Limit(limit)

	for _, relation := range t.eager {
		b.query = b.query.Preload(relation)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.query.Find(out).Error; err != nil {
		return nil, fmt.Errorf("find rows: %w", err)
	}

	slice := outVal.Elem()
	switch method {
	case PaginateSimple:
		if slice.Len() > page.perPage {
			res.HasMore = true
			slice.Set(slice.Slice(0, page.perPage))
		}
	case PaginateStandard:
		res.HasMore = page.page < res.LastPage
	}

	rows, err := t.buildRows(b, slice)
	if err != nil {
		return nil, err
	}
	res.Rows = rows

	return res, nil
}
