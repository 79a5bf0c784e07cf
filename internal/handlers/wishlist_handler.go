package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/Adilet2201/giftcircle/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistHandler manages HTTP endpoints for wishlists, items,
// reservation and sharing.
type WishlistHandler struct {
	Service *services.WishlistService
}

// NewWishlistHandler initializes a new WishlistHandler.
func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{Service: service}
}

// CreateWishlistHandler creates a wishlist for the caller.
func (h *WishlistHandler) CreateWishlistHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Visibility  string `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	wishlist, err := h.Service.CreateWishlist(r.Context(), owner, body.Name, body.Description, body.Visibility)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, wishlist)
}

// GetWishlistsHandler lists the caller's wishlists.
func (h *WishlistHandler) GetWishlistsHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	wishlists, err := h.Service.GetWishlists(r.Context(), owner)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wishlists)
}

// GetItemsHandler returns the items of one owned wishlist.
func (h *WishlistHandler) GetItemsHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}

	items, err := h.Service.GetWishlistItems(r.Context(), owner, wishlistID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// UpdateWishlistHandler patches name/description/visibility.
func (h *WishlistHandler) UpdateWishlistHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var update services.WishlistUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	wishlist, err := h.Service.UpdateWishlist(r.Context(), owner, wishlistID, update)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wishlist)
}

// DeleteWishlistHandler removes a wishlist.
func (h *WishlistHandler) DeleteWishlistHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Service.DeleteWishlist(r.Context(), owner, wishlistID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Wishlist deleted")
}

// AddItemHandler appends an item to an owned wishlist.
func (h *WishlistHandler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var item models.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	created, err := h.Service.AddItem(r.Context(), owner, wishlistID, &item)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// UpdateItemHandler patches descriptive item fields.
func (h *WishlistHandler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "wishlistId", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var update services.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	item, err := h.Service.UpdateItem(r.Context(), owner, wishlistID, itemID, update)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteItemHandler removes an item from an owned wishlist.
func (h *WishlistHandler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "wishlistId", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item not found")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Service.DeleteItem(r.Context(), owner, wishlistID, itemID); err != nil {
		respondError(w, err)
		return
	}

	respondMessage(w, "Wishlist item removed")
}

// ReserveItemHandler claims an item on a wishlist the caller does not
// own. Runs without mandatory authentication; a valid token attaches
// the caller's identity to the reservation.
func (h *WishlistHandler) ReserveItemHandler(w http.ResponseWriter, r *http.Request) {
	wishlistID, err := pathID(r, "wishlistId", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var reservedBy *primitive.ObjectID
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			reservedBy = &id
		}
	}

	item, err := h.Service.Reserve(r.Context(), wishlistID, itemID, reservedBy)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Item reserved successfully",
		"item":    item,
	})
}

// UnreserveItemHandler releases a reservation on an owned item.
func (h *WishlistHandler) UnreserveItemHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "wishlistId", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item not found")
	if err != nil {
		respondError(w, err)
		return
	}

	item, err := h.Service.Unreserve(r.Context(), owner, wishlistID, itemID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Reservation removed",
		"item":    item,
	})
}

// MarkBoughtHandler sets the bought flag of an owned item.
func (h *WishlistHandler) MarkBoughtHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "wishlistId", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}
	itemID, err := pathID(r, "itemId", "Item not found")
	if err != nil {
		respondError(w, err)
		return
	}

	// Body is optional; no body means "mark bought".
	var body struct {
		Bought *bool `json:"bought"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	bought := true
	if body.Bought != nil {
		bought = *body.Bought
	}

	item, err := h.Service.MarkBought(r.Context(), owner, wishlistID, itemID, bought)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// PublicViewHandler shows another user's visible wishlists. Requires no
// token; a valid one widens visibility to lists shared with the caller.
func (h *WishlistHandler) PublicViewHandler(w http.ResponseWriter, r *http.Request) {
	targetID, err := pathID(r, "userId", "User not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var viewerID *primitive.ObjectID
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			viewerID = &id
		}
	}

	view, err := h.Service.PublicView(r.Context(), targetID, viewerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// ShareHandler adds friend ids to the wishlist's shared set.
func (h *WishlistHandler) ShareHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}

	var body struct {
		FriendIDs []string `json:"friendIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, apperrors.Validation("Invalid request payload"))
		return
	}
	defer r.Body.Close()

	friendIDs := make([]primitive.ObjectID, 0, len(body.FriendIDs))
	for _, raw := range body.FriendIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respondError(w, apperrors.Validation("Invalid friend ID"))
			return
		}
		friendIDs = append(friendIDs, id)
	}

	sharedWith, err := h.Service.Share(r.Context(), owner, wishlistID, friendIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Wishlist shared",
		"sharedWith": sharedWith,
	})
}

// UnshareHandler removes one friend from the wishlist's shared set.
func (h *WishlistHandler) UnshareHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}
	friendID, err := pathID(r, "friendId", "User not found")
	if err != nil {
		respondError(w, err)
		return
	}

	sharedWith, err := h.Service.Unshare(r.Context(), owner, wishlistID, friendID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Sharing removed",
		"sharedWith": sharedWith,
	})
}

// GetSharedWithHandler resolves the shared set to user identities.
func (h *WishlistHandler) GetSharedWithHandler(w http.ResponseWriter, r *http.Request) {
	owner, err := callerID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	wishlistID, err := pathID(r, "id", "Wishlist not found")
	if err != nil {
		respondError(w, err)
		return
	}

	users, err := h.Service.GetSharedWith(r.Context(), owner, wishlistID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}
