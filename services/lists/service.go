// Package lists manages user-curated shareable lists. Owners control the
// list itself and its collaborator set; collaborators may add and remove
// items. Share tokens give read-only access without authentication.
package lists

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"watchhive/internal/database"
	"watchhive/models"
)

var (
	ErrNameRequired     = errors.New("list name is required")
	ErrInvalidMediaType = errors.New("invalid media type")
	// ErrForbidden means the caller is neither the owner nor, where item
	// edits are concerned, a collaborator.
	ErrForbidden = errors.New("not allowed on this list")
)

// Service exposes custom-list operations.
type Service struct {
	repo *database.ListsRepository
	now  func() time.Time
}

func NewService(repo *database.ListsRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create makes a new list owned by the caller, with a fresh share token.
func (s *Service) Create(ownerID string, req models.ListUpsert) (models.CustomList, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.CustomList{}, ErrNameRequired
	}

	now := s.now()
	list := models.CustomList{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		ShareToken:  uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(list); err != nil {
		return models.CustomList{}, err
	}
	return list, nil
}

// Rename updates a list's name and description. Owner only.
func (s *Service) Rename(callerID, listID string, req models.ListUpsert) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrNameRequired
	}
	list, err := s.repo.Get(listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return ErrForbidden
	}
	return s.repo.Update(listID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), s.now())
}

// Delete removes a list and everything under it. Owner only.
func (s *Service) Delete(callerID, listID string) error {
	list, err := s.repo.Get(listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return ErrForbidden
	}
	return s.repo.Delete(listID)
}

// AddItem puts a title on the list. Owner or collaborator.
func (s *Service) AddItem(callerID, listID string, req models.ListItemUpsert) error {
	if !models.ValidMediaType(req.MediaType) {
		return fmt.Errorf("%w: %q", ErrInvalidMediaType, req.MediaType)
	}
	if err := s.requireEditor(callerID, listID); err != nil {
		return err
	}
	return s.repo.AddItem(listID, req, callerID, s.now())
}

// RemoveItem takes a title off the list. Owner or collaborator.
func (s *Service) RemoveItem(callerID, listID string, contentID int64, mediaType string) error {
	if err := s.requireEditor(callerID, listID); err != nil {
		return err
	}
	return s.repo.RemoveItem(listID, contentID, mediaType)
}

// AddCollaborator grants another user write access. Owner only.
func (s *Service) AddCollaborator(callerID, listID, collaboratorID string) error {
	list, err := s.repo.Get(listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return ErrForbidden
	}
	if collaboratorID == list.OwnerID {
		// The owner already has full access.
		return nil
	}
	return s.repo.AddCollaborator(listID, collaboratorID, s.now())
}

// RemoveCollaborator revokes write access. Owner only.
func (s *Service) RemoveCollaborator(callerID, listID, collaboratorID string) error {
	list, err := s.repo.Get(listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return ErrForbidden
	}
	return s.repo.RemoveCollaborator(listID, collaboratorID)
}

// Get returns the full list view for an owner or collaborator.
func (s *Service) Get(callerID, listID string) (models.ListView, error) {
	list, err := s.repo.Get(listID)
	if err != nil {
		return models.ListView{}, err
	}
	if list.OwnerID != callerID {
		ok, err := s.repo.IsCollaborator(listID, callerID)
		if err != nil {
			return models.ListView{}, err
		}
		if !ok {
			return models.ListView{}, ErrForbidden
		}
	}
	return s.buildView(list)
}

// GetShared resolves a share token to a read-only list view. The share
// token is stripped from the response so it cannot leak further.
func (s *Service) GetShared(token string) (models.ListView, error) {
	list, err := s.repo.GetByShareToken(token)
	if err != nil {
		return models.ListView{}, err
	}
	view, err := s.buildView(list)
	if err != nil {
		return models.ListView{}, err
	}
	view.ShareToken = ""
	view.Collaborators = nil
	return view, nil
}

// ListForUser returns every list the user owns or collaborates on.
func (s *Service) ListForUser(userID string) ([]models.CustomList, error) {
	return s.repo.ListForUser(userID)
}

func (s *Service) requireEditor(callerID, listID string) error {
	list, err := s.repo.Get(listID)
	if err != nil {
		return err
	}
	if list.OwnerID == callerID {
		return nil
	}
	ok, err := s.repo.IsCollaborator(listID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *Service) buildView(list models.CustomList) (models.ListView, error) {
	items, err := s.repo.Items(list.ID)
	if err != nil {
		return models.ListView{}, err
	}
	collaborators, err := s.repo.Collaborators(list.ID)
	if err != nil {
		return models.ListView{}, err
	}
	return models.ListView{CustomList: list, Items: items, Collaborators: collaborators}, nil
}
