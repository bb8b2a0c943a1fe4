package tabulate

import (
	"net/http"
	"strconv"
	"strings"
)

//State is the UI facing request state Run binds onto the query.
type State struct {
	Search  string
	Filters map[string][]string
	//Sort entries are "field" or "field:dir" with dir asc or desc
	Sort    []string
	Page    int
	PerPage int
}

//StateFromRequest parses table state out of the request query string. Recognized
//parameters: q, filter[column] (repeatable), sort (repeatable), page and per_page.
//Anything unparseable becomes the zero value and gets normalized during Run.
func StateFromRequest(r *http.Request) State {
	q := r.URL.Query()

	state := State{
		Search:  q.Get("q"),
		Filters: make(map[string][]string),
		Sort:    q["sort"],
	}
	state.Page, _ = strconv.Atoi(q.Get("page"))
	state.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		field := key[len("filter[") : len(key)-1]
		if field != "" {
			state.Filters[field] = values
		}
	}

	return state
}
