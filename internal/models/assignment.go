package models

import "time"

type Assignment struct {
	Title string    `json:"title"`
	Due   time.Time `json:"due"`
	Link  string    `json:"link"`
}

// HasLink returns true if the assignment points somewhere
func (a *Assignment) HasLink() bool {
	return a.Link != ""
}
