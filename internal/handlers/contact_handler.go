package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/Adilet2201/giftcircle/pkg/logger"
	"github.com/Adilet2201/giftcircle/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactHandler manages HTTP endpoints for contacts, gift ideas and
// contact-friend linking.
type ContactHandler struct {
	Service *services.ContactService
}

// NewContactHandler initializes a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{Service: service}
}

func callerID(r *http.Request) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, apperrors.Unauthorized("Not authorized, no token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperrors.Unauthorized("Not authorized, token failed")
	}
	return id, nil
}

func pathID(r *http.Request, name, notFoundMsg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, apperrors.NotFound(notFoundMsg)
	}
	return id, nil
}

// AddContactHandler creates a contact for the caller.
func (h *ContactHandler) AddContactHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var contact models.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	created, err := h.Service.AddContact(r.Context(), owner, &contact)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetContactsHandler lists the caller's contacts.
func (h *ContactHandler) GetContactsHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	contacts, err := h.Service.GetContacts(r.Context(), owner)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contacts)
}

// GetContactHandler fetches one contact by id.
func (h *ContactHandler) GetContactHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "id", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}

	contact, err := h.Service.GetContact(r.Context(), owner, contactID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// UpdateContactHandler replaces the editable fields of a contact.
func (h *ContactHandler) UpdateContactHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "id", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var contact models.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateContact(r.Context(), owner, contactID, &contact)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DeleteContactHandler removes a contact.
func (h *ContactHandler) DeleteContactHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "id", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Service.DeleteContact(r.Context(), owner, contactID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Contact removed")
}

// AddGiftIdeaHandler appends a gift idea to a contact.
func (h *ContactHandler) AddGiftIdeaHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "id", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	idea, err := h.Service.AddGiftIdea(r.Context(), owner, contactID, body.Name, body.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, idea)
}

// TogglePurchasedHandler flips the purchased flag of a gift idea.
func (h *ContactHandler) TogglePurchasedHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "contactId", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}
	ideaID, err := pathID(r, "giftIdeaId", "Gift idea not found")
	if err != nil {
		respondError(w, err)
		return
	}

	idea, err := h.Service.TogglePurchased(r.Context(), owner, contactID, ideaID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, idea)
}

// UpdateGiftIdeaHandler edits name/notes of a gift idea.
func (h *ContactHandler) UpdateGiftIdeaHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "contactId", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}
	ideaID, err := pathID(r, "giftIdeaId", "Gift idea not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Name  string  `json:"name"`
		Notes *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	idea, err := h.Service.UpdateGiftIdea(r.Context(), owner, contactID, ideaID, body.Name, body.Notes)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, idea)
}

// DeleteGiftIdeaHandler removes a gift idea from a contact.
func (h *ContactHandler) DeleteGiftIdeaHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "contactId", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}
	ideaID, err := pathID(r, "giftIdeaId", "Gift idea not found")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Service.DeleteGiftIdea(r.Context(), owner, contactID, ideaID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Gift idea deleted")
}

// LinkSuggestionsHandler proposes friends for unlinked contacts.
func (h *ContactHandler) LinkSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	suggestions, err := h.Service.LinkSuggestions(r.Context(), owner)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestions)
}

// LinkContactHandler associates a contact with an accepted friend.
func (h *ContactHandler) LinkContactHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "contactId", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}
	friendID, err := pathID(r, "friendId", "User not found")
	if err != nil {
		respondError(w, err)
		return
	}

	contact, err := h.Service.Link(r.Context(), owner, contactID, friendID)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"contactID": contactID.Hex(),
		"friendID":  friendID.Hex(),
	}).Info("Contact linked")
	respondJSON(w, http.StatusOK, contact)
}

// UnlinkContactHandler clears the contact's friend association.
func (h *ContactHandler) UnlinkContactHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	contactID, err := pathID(r, "contactId", "Contact not found")
	if err != nil {
		respondError(w, err)
		return
	}

	contact, err := h.Service.Unlink(r.Context(), owner, contactID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

// ContactDataHandler exposes interests and gift ideas of the caller's
// contact linked to a friend. Registered under /friends.
func (h *ContactHandler) ContactDataHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	friendID, err := pathID(r, "friendId", "User not found")
	if err != nil {
		respondError(w, err)
		return
	}

	data, err := h.Service.ContactDataForFriend(r.Context(), caller, friendID)
	if err != nil {
		respondError(w, err)
		return
	}

	// data may legitimately be nil: render JSON null.
	respondJSON(w, http.StatusOK, data)
}
