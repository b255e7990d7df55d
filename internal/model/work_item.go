package model

import "time"

// WorkItem is one portfolio piece shown in the work gallery.
type WorkItem struct {
	ID        int64     `json:"id,omitempty" yaml:"-"`
	Position  int       `json:"position,omitempty" yaml:"-"`
	Title     string    `json:"title,omitempty" yaml:"title"`
	ImageURL  string    `json:"imageUrl" yaml:"imageUrl"`
	URL       string    `json:"url" yaml:"url"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"-"`
}
