/*
Package tabulate binds UI table state onto gorm queries and renders the results server-side.

A Table is configured once with a model, its UI columns, filters, bulk actions and eager loads.
Each request's State (search string, per-column filters, sort order, page) is then bound onto a
fresh gorm query by Run, which returns a Result carrying the page of rows plus the pagination
metadata the view needs.

Search and filter constraints work across direct columns and one level of related-table columns
using dotted "relation.column" paths. Related columns are reached through a single shared LEFT
JOIN per relation, emitted once no matter how many of search, filters and sort touch it, and
never through eager loading. Sorting by a related column therefore does not duplicate preload
queries. LIKE operator selection is dialect aware: Postgres gets ILIKE for case-insensitive
matching, MySQL gets BINARY casts for case-sensitive matching, and anything else falls back to
LOWER() comparisons.
*/
package tabulate
