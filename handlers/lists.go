package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"watchhive/internal/database"
	"watchhive/models"
	"watchhive/services/lists"
)

type listsService interface {
	Create(ownerID string, req models.ListUpsert) (models.CustomList, error)
	Rename(callerID, listID string, req models.ListUpsert) error
	Delete(callerID, listID string) error
	AddItem(callerID, listID string, req models.ListItemUpsert) error
	RemoveItem(callerID, listID string, contentID int64, mediaType string) error
	AddCollaborator(callerID, listID, collaboratorID string) error
	RemoveCollaborator(callerID, listID, collaboratorID string) error
	Get(callerID, listID string) (models.ListView, error)
	GetShared(token string) (models.ListView, error)
	ListForUser(userID string) ([]models.CustomList, error)
}

var _ listsService = (*lists.Service)(nil)

type ListsHandler struct {
	Service listsService
}

func NewListsHandler(service listsService) *ListsHandler {
	return &ListsHandler{Service: service}
}

func (h *ListsHandler) writeListsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lists.ErrNameRequired), errors.Is(err, lists.ErrInvalidMediaType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, lists.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, database.ErrListNotFound), errors.Is(err, database.ErrListItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		writeServerError(w, "lists", err)
	}
}

func (h *ListsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	all, err := h.Service.ListForUser(userID)
	if err != nil {
		writeServerError(w, "lists", err)
		return
	}
	if all == nil {
		all = []models.CustomList{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *ListsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.ListUpsert
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.Service.Create(userID, req)
	if err != nil {
		h.writeListsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.Service.Get(userID, mux.Vars(r)["listID"])
	if err != nil {
		h.writeListsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ListsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.ListUpsert
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Service.Rename(userID, mux.Vars(r)["listID"], req); err != nil {
		h.writeListsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(userID, mux.Vars(r)["listID"]); err != nil {
		h.writeListsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.ListItemUpsert
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Service.AddItem(userID, mux.Vars(r)["listID"], req); err != nil {
		h.writeListsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, mediaType, ok := contentPath(w, r)
	if !ok {
		return
	}

	if err := h.Service.RemoveItem(userID, mux.Vars(r)["listID"], contentID, mediaType); err != nil {
		h.writeListsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.Service.AddCollaborator(userID, vars["listID"], vars["collabID"]); err != nil {
		h.writeListsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListsHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.Service.RemoveCollaborator(userID, vars["listID"], vars["collabID"]); err != nil {
		h.writeListsError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetShared is the unauthenticated share-token route.
func (h *ListsHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.GetShared(mux.Vars(r)["token"])
	if err != nil {
		if errors.Is(err, database.ErrListNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeServerError(w, "lists", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
