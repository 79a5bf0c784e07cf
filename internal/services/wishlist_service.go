package services

import (
	"context"
	"strings"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistService handles wishlists, items, the cross-user reservation
// path and visibility of public/shared lists.
type WishlistService struct {
	wishlistRepo WishlistStore
	userRepo     UserStore
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(wishlistRepo WishlistStore, userRepo UserStore) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		userRepo:     userRepo,
	}
}

// WishlistUpdate carries the editable wishlist fields; nil means
// "leave unchanged".
type WishlistUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Visibility  *string `json:"visibility"`
}

// ItemUpdate carries the editable item fields; nil means "leave
// unchanged".
type ItemUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Link        *string  `json:"link"`
	Price       *float64 `json:"price"`
}

// CreateWishlist adds a wishlist, defaulting visibility to public.
func (s *WishlistService) CreateWishlist(ctx context.Context, ownerID primitive.ObjectID, name, description, visibility string) (*models.Wishlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("Wishlist name is required")
	}
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return nil, apperrors.Validation("Visibility must be public or private")
	}

	wishlist := &models.Wishlist{
		Name:        name,
		Description: description,
		Visibility:  visibility,
		Items:       []models.WishlistItem{},
	}
	return s.wishlistRepo.AddWishlist(ctx, ownerID, wishlist)
}

// GetWishlists lists the owner's wishlists. The owner sees items as
// reserved or not, never by whom.
func (s *WishlistService) GetWishlists(ctx context.Context, ownerID primitive.ObjectID) ([]models.Wishlist, error) {
	wishlists, err := s.wishlistRepo.GetWishlists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range wishlists {
		hideReservers(wishlists[i].Items)
	}
	return wishlists, nil
}

// GetWishlistItems returns the items of one owned wishlist, with
// reserver identities hidden.
func (s *WishlistService) GetWishlistItems(ctx context.Context, ownerID, wishlistID primitive.ObjectID) ([]models.WishlistItem, error) {
	wishlist, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.Items == nil {
		return []models.WishlistItem{}, nil
	}
	hideReservers(wishlist.Items)
	return wishlist.Items, nil
}

// UpdateWishlist patches name/description/visibility.
func (s *WishlistService) UpdateWishlist(ctx context.Context, ownerID, wishlistID primitive.ObjectID, update WishlistUpdate) (*models.Wishlist, error) {
	updates := map[string]interface{}{}
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apperrors.Validation("Wishlist name is required")
		}
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Visibility != nil {
		if *update.Visibility != models.VisibilityPublic && *update.Visibility != models.VisibilityPrivate {
			return nil, apperrors.Validation("Visibility must be public or private")
		}
		updates["visibility"] = *update.Visibility
	}

	if len(updates) > 0 {
		if err := s.wishlistRepo.UpdateWishlist(ctx, ownerID, wishlistID, updates); err != nil {
			return nil, err
		}
	}
	return s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID)
}

// DeleteWishlist removes a wishlist.
func (s *WishlistService) DeleteWishlist(ctx context.Context, ownerID, wishlistID primitive.ObjectID) error {
	return s.wishlistRepo.DeleteWishlist(ctx, ownerID, wishlistID)
}

// AddItem appends an item to an owned wishlist.
func (s *WishlistService) AddItem(ctx context.Context, ownerID, wishlistID primitive.ObjectID, item *models.WishlistItem) (*models.WishlistItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, apperrors.Validation("Item name is required")
	}
	item.Reserved = false
	item.ReservedBy = nil
	item.Bought = false
	return s.wishlistRepo.AddItem(ctx, ownerID, wishlistID, item)
}

// UpdateItem patches descriptive item fields; reservation and bought
// state have their own operations.
func (s *WishlistService) UpdateItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID, update ItemUpdate) (*models.WishlistItem, error) {
	item, err := s.findItem(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apperrors.Validation("Item name is required")
		}
		item.Name = *update.Name
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
		updates["description"] = *update.Description
	}
	if update.Link != nil {
		item.Link = *update.Link
		updates["link"] = *update.Link
	}
	if update.Price != nil {
		item.Price = *update.Price
		updates["price"] = *update.Price
	}

	if len(updates) > 0 {
		if err := s.wishlistRepo.UpdateItem(ctx, ownerID, wishlistID, itemID, updates); err != nil {
			return nil, err
		}
	}
	item.ReservedBy = nil
	return item, nil
}

// DeleteItem removes an item; the owner may delete reserved items too.
func (s *WishlistService) DeleteItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID) error {
	if _, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID); err != nil {
		return err
	}
	return s.wishlistRepo.DeleteItem(ctx, ownerID, wishlistID, itemID)
}

// Reserve claims an item on behalf of reservedBy (nil = anonymous).
// This is the one write path without an ownership check: the wishlist
// id alone locates the owner. Re-reserving by the same identity is
// idempotent; a different identity gets a conflict. The check-then-set
// is not atomic across requests, matching the single-round-trip model.
func (s *WishlistService) Reserve(ctx context.Context, wishlistID, itemID primitive.ObjectID, reservedBy *primitive.ObjectID) (*models.WishlistItem, error) {
	owner, err := s.wishlistRepo.FindOwnerByWishlistID(ctx, wishlistID)
	if err != nil {
		return nil, err
	}

	item, err := findItemIn(owner, wishlistID, itemID)
	if err != nil {
		return nil, err
	}

	if item.Reserved && !sameIdentity(item.ReservedBy, reservedBy) {
		return nil, apperrors.Conflict("Item already reserved by someone else")
	}

	if err := s.wishlistRepo.SetReservation(ctx, owner.ID, wishlistID, itemID, true, reservedBy); err != nil {
		return nil, err
	}

	item.Reserved = true
	item.ReservedBy = reservedBy

	logrus.WithFields(logrus.Fields{
		"wishlistID": wishlistID.Hex(),
		"itemID":     itemID.Hex(),
		"anonymous":  reservedBy == nil,
	}).Info("Wishlist item reserved")
	return item, nil
}

// Unreserve releases a reservation. Owner-only; the owner may clear any
// reservation, including anonymous ones.
func (s *WishlistService) Unreserve(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID) (*models.WishlistItem, error) {
	item, err := s.findItem(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Reserved {
		return nil, apperrors.Conflict("Item is not reserved")
	}

	if err := s.wishlistRepo.SetReservation(ctx, ownerID, wishlistID, itemID, false, nil); err != nil {
		return nil, err
	}

	item.Reserved = false
	item.ReservedBy = nil
	return item, nil
}

// MarkBought sets the bought flag, independent of reservation state.
func (s *WishlistService) MarkBought(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID, bought bool) (*models.WishlistItem, error) {
	item, err := s.findItem(ctx, ownerID, wishlistID, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.UpdateItem(ctx, ownerID, wishlistID, itemID, map[string]interface{}{"bought": bought}); err != nil {
		return nil, err
	}

	item.Bought = bought
	item.ReservedBy = nil
	return item, nil
}

// PublicView returns the wishlists of a user visible to the viewer:
// public lists for everyone, private lists only when shared with the
// viewer, and only items neither reserved nor bought.
func (s *WishlistService) PublicView(ctx context.Context, targetUserID primitive.ObjectID, viewerID *primitive.ObjectID) (*models.PublicWishlistView, error) {
	user, err := s.userRepo.GetUserByID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	view := &models.PublicWishlistView{
		UserName:  user.Name,
		Wishlists: []models.PublicWishlist{},
	}

	for _, wishlist := range user.Wishlists {
		shared := viewerID != nil && wishlist.SharedWithUser(*viewerID)
		if wishlist.Visibility != models.VisibilityPublic && !shared {
			continue
		}

		visible := []models.WishlistItem{}
		for _, item := range wishlist.Items {
			if !item.Reserved && !item.Bought {
				visible = append(visible, item)
			}
		}

		view.Wishlists = append(view.Wishlists, models.PublicWishlist{
			ID:          wishlist.ID,
			Name:        wishlist.Name,
			Description: wishlist.Description,
			Visibility:  wishlist.Visibility,
			IsShared:    wishlist.Visibility == models.VisibilityPrivate && shared,
			Items:       visible,
		})
	}

	return view, nil
}

// Share adds friend ids to the wishlist's shared set.
func (s *WishlistService) Share(ctx context.Context, ownerID, wishlistID primitive.ObjectID, friendIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(friendIDs) == 0 {
		return nil, apperrors.Validation("Friend IDs array required")
	}

	if _, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID); err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.AddSharedWith(ctx, ownerID, wishlistID, friendIDs); err != nil {
		return nil, err
	}

	wishlist, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.SharedWith == nil {
		return []primitive.ObjectID{}, nil
	}
	return wishlist.SharedWith, nil
}

// Unshare removes one friend id from the wishlist's shared set.
func (s *WishlistService) Unshare(ctx context.Context, ownerID, wishlistID, friendID primitive.ObjectID) ([]primitive.ObjectID, error) {
	wishlist, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}
	if len(wishlist.SharedWith) == 0 {
		return nil, apperrors.Conflict("Wishlist not shared with anyone")
	}

	if err := s.wishlistRepo.RemoveSharedWith(ctx, ownerID, wishlistID, friendID); err != nil {
		return nil, err
	}

	remaining := make([]primitive.ObjectID, 0, len(wishlist.SharedWith))
	for _, id := range wishlist.SharedWith {
		if id != friendID {
			remaining = append(remaining, id)
		}
	}
	return remaining, nil
}

// GetSharedWith resolves the shared set to user identities for display.
func (s *WishlistService) GetSharedWith(ctx context.Context, ownerID, wishlistID primitive.ObjectID) ([]models.PublicUser, error) {
	wishlist, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, wishlist.SharedWith)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, models.PublicUser{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return public, nil
}

func (s *WishlistService) findItem(ctx context.Context, ownerID, wishlistID, itemID primitive.ObjectID) (*models.WishlistItem, error) {
	wishlist, err := s.wishlistRepo.GetWishlistByID(ctx, ownerID, wishlistID)
	if err != nil {
		return nil, err
	}
	for i := range wishlist.Items {
		if wishlist.Items[i].ID == itemID {
			return &wishlist.Items[i], nil
		}
	}
	return nil, apperrors.NotFound("Item not found")
}

func findItemIn(owner *models.User, wishlistID, itemID primitive.ObjectID) (*models.WishlistItem, error) {
	for i := range owner.Wishlists {
		if owner.Wishlists[i].ID != wishlistID {
			continue
		}
		for j := range owner.Wishlists[i].Items {
			if owner.Wishlists[i].Items[j].ID == itemID {
				return &owner.Wishlists[i].Items[j], nil
			}
		}
		return nil, apperrors.NotFound("Item not found")
	}
	return nil, apperrors.NotFound("Wishlist not found")
}

func hideReservers(items []models.WishlistItem) {
	for i := range items {
		items[i].ReservedBy = nil
	}
}

func sameIdentity(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
