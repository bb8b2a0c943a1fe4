package tabulate_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jinzhu/gorm"

	"github.com/coursehero/tabulate"
)

//A table is configured once per model with its UI columns, filters and actions, then
//bound per request. StateFromRequest picks the search, filter, sort and paging
//parameters out of the query string, and Run applies them onto a fresh gorm query.
func ExampleTable() {
	var db *gorm.DB
	var r *http.Request

	//example structs
	type Role struct {
		RoleID uint `gorm:"primary_key"`
		Name   string
	}

	type User struct {
		UserID uint `gorm:"primary_key"`
		RoleID uint
		Name   string
		Email  string

		Role Role `gorm:"foreignkey:RoleID;association_foreignkey:RoleID"`
	}

	table := tabulate.New(db, &User{}).
		Columns(
			tabulate.Column{Field: "name", Label: "Name", Searchable: true, Sortable: true},
			tabulate.Column{Field: "email", Label: "Email", Searchable: true},
			tabulate.Column{Field: "role.name", Label: "Role", Sortable: true},
		).
		Filter("role.name", tabulate.SelectFilter{Options: []string{"Admin", "Editor"}}).
		Filter("created_at", tabulate.DateRangeFilter{}).
		With("Role").
		RowLink("/users/{user_id}").
		DefaultSort("name", false).
		PerPage(25)

	var users []User
	res, err := table.Run(context.Background(), tabulate.StateFromRequest(r), &users)
	if err != nil {
		fmt.Printf("err = %v\n", err)
	}

	//res carries the page plus everything the view needs
	fmt.Printf("page %d of %d, %d rows total\n", res.Page, res.LastPage, res.Total)
	for _, row := range res.Rows {
		fmt.Printf("row %s links to %s\n", row.Key, row.Link)
	}
}

//Bulk actions dispatch by name over the selected row keys. The handler query is already
//restricted to the table's scopes and the selection.
func ExampleTable_ApplyAction() {
	var db *gorm.DB

	type User struct {
		UserID uint `gorm:"primary_key"`
		Name   string
		Active bool
	}

	table := tabulate.New(db, &User{}).
		Action(tabulate.Action{
			Name:  "deactivate",
			Label: "Deactivate selected",
			Handler: func(q *gorm.DB, keys []string) error {
				return q.Update("active", false).Error
			},
		})

	if err := table.ApplyAction("deactivate", []string{"3", "7"}); err != nil {
		fmt.Printf("err = %v\n", err)
	}
}
