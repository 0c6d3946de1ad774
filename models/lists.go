package models

import "time"

// CustomList is a user-curated, shareable list of titles.
type CustomList struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ShareToken  string    `json:"shareToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListItem is one title on a custom list. AddedBy records which user
// (owner or collaborator) put it there.
type ListItem struct {
	ID        int64     `json:"-"`
	ListID    string    `json:"listId"`
	ContentID int64     `json:"contentId"`
	MediaType string    `json:"mediaType"`
	Title     string    `json:"title,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	AddedBy   string    `json:"addedBy"`
	AddedAt   time.Time `json:"addedAt"`
}

// ListCollaborator grants another user write access to a list's items.
type ListCollaborator struct {
	ListID  string    `json:"listId"`
	UserID  string    `json:"userId"`
	AddedAt time.Time `json:"addedAt"`
}

// ListUpsert is the request body for creating or renaming a list.
type ListUpsert struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListItemUpsert is the request body for adding an item to a list.
type ListItemUpsert struct {
	ContentID int64  `json:"contentId"`
	MediaType string `json:"mediaType"`
	Title     string `json:"title,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}

// ListView is a list plus its items and collaborators.
type ListView struct {
	CustomList
	Items         []ListItem `json:"items"`
	Collaborators []string   `json:"collaborators,omitempty"`
}
