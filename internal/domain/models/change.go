package models

// Change describes one field that moved between two consecutive rows.
type Change struct {
	Field       string      `json:"field"`
	From        interface{} `json:"from,omitempty"`
	To          interface{} `json:"to,omitempty"`
	Description string      `json:"description"`
}

// NoChange is the sentinel returned when nothing crossed a threshold.
var NoChange = Change{Field: "none", Description: "no changes"}

// IsNoChange reports whether changes is exactly the sentinel.
func IsNoChange(changes []Change) bool {
	return len(changes) == 1 && changes[0].Field == NoChange.Field
}
