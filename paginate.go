package tabulate

import "errors"

//Pagination method names dispatched by Run.
const (
	//PaginateStandard counts matching rows and fetches one page, exposing Total and
	//LastPage. This is the default.
	PaginateStandard = "standard"
	//PaginateSimple skips the COUNT and fetches one extra row to detect whether a next
	//page exists. Total and LastPage are not available.
	PaginateSimple = "simple"
)

//ErrUnknownPaginator is returned by Run when the table was configured with a pagination
//method name it does not know.
var ErrUnknownPaginator = errors.New("unknown pagination method")

const defaultPerPage = 15

//pageRequest is the normalized page window for one request.
type pageRequest struct {
	page    int
	perPage int
}

//pageRequest coerces the state's paging values: pages are 1-based, a missing per-page
//falls back to the table default, and when the table declares PerPageOptions the value
//snaps to the nearest allowed one so the UI cannot request arbitrary page sizes.
func (t *Table) pageRequest(state State) pageRequest {
	page := state.Page
	if page < 1 {
		page = 1
	}

	perPage := state.PerPage
	if perPage <= 0 {
		perPage = t.perPage
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if len(t.perPageOptions) > 0 {
		perPage = nearestOption(perPage, t.perPageOptions)
	}

	return pageRequest{page: page, perPage: perPage}
}

func nearestOption(want int, options []int) int {
	best := options[0]
	for _, opt := range options[1:] {
		if abs(opt-want) < abs(best-want) {
			best = opt
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
