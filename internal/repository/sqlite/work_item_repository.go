package sqlite

import (
	"fmt"
	"time"

	"portfolio/internal/model"
)

// WorkItemRepository implements repository.WorkItemRepository for SQLite.
type WorkItemRepository struct {
	db *DB
}

// NewWorkItemRepository creates a new SQLite work-item repository.
func NewWorkItemRepository(db *DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// ReplaceAll deletes the stored list and inserts items in one transaction.
func (r *WorkItemRepository) ReplaceAll(items []model.WorkItem) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM work_items`); err != nil {
		return fmt.Errorf("failed to clear work items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO work_items (position, title, image_url, url, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, it := range items {
		if _, err := stmt.Exec(i, it.Title, it.ImageURL, it.URL, now); err != nil {
			return fmt.Errorf("failed to insert work item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAll returns the stored items ordered by position.
func (r *WorkItemRepository) GetAll() ([]model.WorkItem, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, position, title, image_url, url, updated_at
		FROM work_items ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer rows.Close()

	var items []model.WorkItem
	for rows.Next() {
		var it model.WorkItem
		if err := rows.Scan(&it.ID, &it.Position, &it.Title, &it.ImageURL, &it.URL, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read work items: %w", err)
	}

	return items, nil
}

// Count returns the number of stored items.
func (r *WorkItemRepository) Count() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM work_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count work items: %w", err)
	}
	return count, nil
}
