package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints for friendships.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendRequestHandler creates a pending friend request by email.
func (h *FriendHandler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	request, err := h.Service.SendRequest(r.Context(), caller, body.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Friend request sent",
		"request": request,
	})
}

// GetFriendsHandler lists accepted friendships.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, friends)
}

// GetRequestsHandler lists incoming pending requests.
func (h *FriendHandler) GetRequestsHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	requests, err := h.Service.GetPendingRequests(r.Context(), caller)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, requests)
}

// AcceptRequestHandler accepts a pending request addressed to the caller.
func (h *FriendHandler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, true)
}

// DeclineRequestHandler declines a pending request addressed to the caller.
func (h *FriendHandler) DeclineRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, false)
}

func (h *FriendHandler) respond(w http.ResponseWriter, r *http.Request, accept bool) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	requestID, err := pathID(r, "id", "Friend request not found")
	if err != nil {
		respondError(w, err)
		return
	}

	friendship, err := h.Service.Respond(r.Context(), caller, requestID, accept)
	if err != nil {
		respondError(w, err)
		return
	}

	message := "Friend request declined"
	if accept {
		message = "Friend request accepted"
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    message,
		"friendship": friendship,
	})
}

// RemoveFriendHandler deletes a friendship record.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	friendshipID, err := pathID(r, "id", "Friendship not found")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Service.Remove(r.Context(), caller, friendshipID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Friend removed")
}

// SearchHandler matches users by email substring.
func (h *FriendHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	query := r.URL.Query().Get("email")
	if query == "" {
		query = r.URL.Query().Get("q")
	}

	results, err := h.Service.Search(r.Context(), caller, query)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// AddToGroupsHandler unions group labels into a friendship.
func (h *FriendHandler) AddToGroupsHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	friendshipID, err := pathID(r, "id", "Friendship not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Groups []string `json:"groups"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	groups, err := h.Service.AddToGroups(r.Context(), caller, friendshipID, body.Groups)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Groups updated",
		"groups":  groups,
	})
}

// RemoveFromGroupHandler drops one group label by exact name.
func (h *FriendHandler) RemoveFromGroupHandler(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	friendshipID, err := pathID(r, "id", "Friendship not found")
	if err != nil {
		respondError(w, err)
		return
	}
	groupName := mux.Vars(r)["groupName"]

	groups, err := h.Service.RemoveFromGroup(r.Context(), caller, friendshipID, groupName)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Group removed",
		"groups":  groups,
	})
}
