package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchhive/models"
)

var (
	ErrListNotFound     = errors.New("list not found")
	ErrListItemNotFound = errors.New("list item not found")
)

// ListsRepository persists custom lists, their items and collaborators.
type ListsRepository struct {
	db *sql.DB
}

func NewListsRepository(db *sql.DB) *ListsRepository {
	return &ListsRepository{db: db}
}

// Create inserts a new list.
func (r *ListsRepository) Create(list models.CustomList) error {
	if _, err := r.db.Exec(
		`INSERT INTO custom_lists (id, owner_id, name, description, share_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		list.ID, list.OwnerID, list.Name, list.Description, list.ShareToken, list.CreatedAt.UTC(), list.UpdatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

// Get returns a list by id.
func (r *ListsRepository) Get(listID string) (models.CustomList, error) {
	return r.getList(`SELECT id, owner_id, name, description, share_token, created_at, updated_at FROM custom_lists WHERE id = ?`, listID)
}

// GetByShareToken returns a list by its share token.
func (r *ListsRepository) GetByShareToken(token string) (models.CustomList, error) {
	return r.getList(`SELECT id, owner_id, name, description, share_token, created_at, updated_at FROM custom_lists WHERE share_token = ?`, token)
}

func (r *ListsRepository) getList(query string, arg any) (models.CustomList, error) {
	var l models.CustomList
	err := r.db.QueryRow(query, arg).Scan(&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.ShareToken, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CustomList{}, ErrListNotFound
	}
	if err != nil {
		return models.CustomList{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// ListForUser returns the lists the user owns plus the lists shared with
// them as a collaborator, newest first.
func (r *ListsRepository) ListForUser(userID string) ([]models.CustomList, error) {
	rows, err := r.db.Query(
		`SELECT id, owner_id, name, description, share_token, created_at, updated_at FROM custom_lists
		 WHERE owner_id = ?
		    OR id IN (SELECT list_id FROM list_collaborators WHERE user_id = ?)
		 ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var out []models.CustomList
	for rows.Next() {
		var l models.CustomList
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Description, &l.ShareToken, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update renames a list.
func (r *ListsRepository) Update(listID, name, description string, now time.Time) error {
	res, err := r.db.Exec(
		`UPDATE custom_lists SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		name, description, now.UTC(), listID,
	)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrListNotFound
	}
	return nil
}

// Delete removes a list; items and collaborator grants cascade.
func (r *ListsRepository) Delete(listID string) error {
	res, err := r.db.Exec(`DELETE FROM custom_lists WHERE id = ?`, listID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrListNotFound
	}
	return nil
}

// AddItem inserts an item, refreshing the cached title and poster when
// the content is already on the list.
func (r *ListsRepository) AddItem(listID string, item models.ListItemUpsert, addedBy string, now time.Time) error {
	if _, err := r.db.Exec(
		`INSERT INTO list_items (list_id, content_id, media_type, title, poster_url, added_by, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (list_id, media_type, content_id)
		 DO UPDATE SET title = excluded.title, poster_url = excluded.poster_url`,
		listID, item.ContentID, item.MediaType, item.Title, item.PosterURL, addedBy, now.UTC(),
	); err != nil {
		return fmt.Errorf("add list item: %w", err)
	}
	return nil
}

// RemoveItem deletes an item from a list.
func (r *ListsRepository) RemoveItem(listID string, contentID int64, mediaType string) error {
	res, err := r.db.Exec(
		`DELETE FROM list_items WHERE list_id = ? AND content_id = ? AND media_type = ?`,
		listID, contentID, mediaType,
	)
	if err != nil {
		return fmt.Errorf("remove list item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrListItemNotFound
	}
	return nil
}

// Items returns a list's items in insertion order.
func (r *ListsRepository) Items(listID string) ([]models.ListItem, error) {
	rows, err := r.db.Query(
		`SELECT id, list_id, content_id, media_type, title, poster_url, added_by, added_at
		 FROM list_items WHERE list_id = ? ORDER BY added_at, id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []models.ListItem
	for rows.Next() {
		var it models.ListItem
		if err := rows.Scan(&it.ID, &it.ListID, &it.ContentID, &it.MediaType, &it.Title, &it.PosterURL, &it.AddedBy, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// AddCollaborator grants a user write access to a list. Granting twice
// is a no-op.
func (r *ListsRepository) AddCollaborator(listID, userID string, now time.Time) error {
	if _, err := r.db.Exec(
		`INSERT INTO list_collaborators (list_id, user_id, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (list_id, user_id) DO NOTHING`,
		listID, userID, now.UTC(),
	); err != nil {
		return fmt.Errorf("add collaborator: %w", err)
	}
	return nil
}

// RemoveCollaborator revokes a user's access to a list.
func (r *ListsRepository) RemoveCollaborator(listID, userID string) error {
	if _, err := r.db.Exec(
		`DELETE FROM list_collaborators WHERE list_id = ? AND user_id = ?`,
		listID, userID,
	); err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}
	return nil
}

// Collaborators returns the user ids with write access to a list.
func (r *ListsRepository) Collaborators(listID string) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT user_id FROM list_collaborators WHERE list_id = ? ORDER BY added_at`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// IsCollaborator reports whether the user has been granted access.
func (r *ListsRepository) IsCollaborator(listID, userID string) (bool, error) {
	var n int
	if err := r.db.QueryRow(
		`SELECT COUNT(1) FROM list_collaborators WHERE list_id = ? AND user_id = ?`,
		listID, userID,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("check collaborator: %w", err)
	}
	return n > 0, nil
}
