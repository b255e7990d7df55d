// Package works loads the portfolio work items that feed the gallery.
package works

import (
	"context"
	"strings"

	"portfolio/internal/model"
)

// Source supplies the ordered list of work items.
type Source interface {
	Load(ctx context.Context) ([]model.WorkItem, error)
	Name() string
}

// DefaultWorkItems is the local list used when no works file exists.
func DefaultWorkItems() []model.WorkItem {
	return []model.WorkItem{
		{Title: "Studio Identity", ImageURL: "/static/images/work/identity.jpg", URL: "/work/identity"},
		{Title: "Editorial Platform", ImageURL: "/static/images/work/editorial.jpg", URL: "/work/editorial"},
		{Title: "Museum Wayfinding", ImageURL: "/static/images/work/wayfinding.jpg", URL: "/work/wayfinding"},
		{Title: "Festival Campaign", ImageURL: "/static/images/work/festival.jpg", URL: "/work/festival"},
		{Title: "Product Launch", ImageURL: "/static/images/work/launch.jpg", URL: "/work/launch"},
		{Title: "Type Specimen", ImageURL: "/static/images/work/specimen.jpg", URL: "/work/specimen"},
	}
}

// clean trims fields and drops items without an image, keeping order.
func clean(items []model.WorkItem) []model.WorkItem {
	out := make([]model.WorkItem, 0, len(items))
	for _, it := range items {
		it.ImageURL = strings.TrimSpace(it.ImageURL)
		it.URL = strings.TrimSpace(it.URL)
		it.Title = strings.TrimSpace(it.Title)
		if it.ImageURL == "" {
			continue
		}
		it.Position = len(out)
		out = append(out, it)
	}
	return out
}
