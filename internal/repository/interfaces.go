package repository

import "portfolio/internal/model"

// WorkItemRepository stores the last successfully loaded work-item list.
type WorkItemRepository interface {
	// ReplaceAll swaps the stored list for items, keeping their order.
	ReplaceAll(items []model.WorkItem) error

	// GetAll returns the stored list in its original order.
	GetAll() ([]model.WorkItem, error)
	Count() (int, error)
}
