// Package viewmodel holds the screen state behind the roster surfaces: the
// selectable student list and the add/edit forms. Views render it and feed
// user actions back in; persistence goes through the student service.
package viewmodel

// Route names a roster screen.
type Route string

const (
	RouteList   Route = "list"
	RouteCreate Route = "create"
	RouteEdit   Route = "edit"
)

// Navigation tells the caller which screen to show next.
type Navigation struct {
	Route Route  `json:"route"`
	ID    string `json:"id,omitempty"`
}

// BackToList is emitted after a successful save or a cancel.
func BackToList() Navigation {
	return Navigation{Route: RouteList}
}
