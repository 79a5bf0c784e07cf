// Package storetest provides an in-memory implementation of the
// service store interfaces, backed by maps and a mutex. Tests use it in
// place of the mongo repositories.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds users (with embedded wishlists and contacts) and
// friendships. It satisfies services.UserStore, services.ContactStore,
// services.WishlistStore and services.FriendStore.
type Store struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]*models.User
	friendships map[primitive.ObjectID]*models.Friendship
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:       make(map[primitive.ObjectID]*models.User),
		friendships: make(map[primitive.ObjectID]*models.Friendship),
	}
}

// --- UserStore ---

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, apperrors.Conflict("User already exists")
		}
	}

	clone := *user
	clone.ID = primitive.NewObjectID()
	now := time.Now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if clone.Wishlists == nil {
		clone.Wishlists = []models.Wishlist{}
	}
	if clone.Contacts == nil {
		clone.Contacts = []models.Contact{}
	}
	s.users[clone.ID] = &clone

	result := clone
	return &result, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("User not found")
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	clone := *u
	return &clone, nil
}

func (s *Store) UpdateUser(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}

	for key, value := range updates {
		switch key {
		case "name":
			u.Name = value.(string)
		case "email":
			u.Email = value.(string)
		case "hashed_password":
			u.HashedPassword = value.(string)
		}
	}
	u.UpdatedAt = time.Now()

	clone := *u
	return &clone, nil
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *Store) SearchUsersByEmail(_ context.Context, query string, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []models.User{}
	for _, u := range s.users {
		if u.ID == exclude {
			continue
		}
		if strings.Contains(strings.ToLower(u.Email), strings.ToLower(query)) {
			matches = append(matches, *u)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Email < matches[j].Email })
	if int64(len(matches)) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// --- ContactStore ---

func (s *Store) AddContact(_ context.Context, ownerID primitive.ObjectID, contact *models.Contact) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[ownerID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}

	clone := *contact
	clone.ID = primitive.NewObjectID()
	if clone.Interests == nil {
		clone.Interests = []string{}
	}
	if clone.GiftIdeas == nil {
		clone.GiftIdeas = []models.GiftIdea{}
	}
	u.Contacts = append(u.Contacts, clone)

	result := clone
	return &result, nil
}

func (s *Store) GetContacts(_ context.Context, ownerID primitive.ObjectID) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[ownerID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	return append([]models.Contact{}, u.Contacts...), nil
}

func (s *Store) GetContactByID(_ context.Context, ownerID, contactID primitive.ObjectID) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.findContact(ownerID, contactID)
	if err != nil {
		return nil, err
	}
	clone := *contact
	return &clone, nil
}

func (s *Store) UpdateContact(_ context.Context, ownerID, contactID primitive.ObjectID, contact *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.findContact(ownerID, contactID)
	if err != nil {
		return err
	}
	existing.Name = contact.Name
	existing.Email = contact.Email
	existing.Phone = contact.Phone
	existing.Notes = contact.Notes
	if contact.Interests != nil {
		existing.Interests = contact.Interests
	}
	return nil
}

func (s *Store) DeleteContact(_ context.Context, ownerID, contactID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[ownerID]
	if !ok {
		return apperrors.NotFound("User not found")
	}
	for i := range u.Contacts {
		if u.Contacts[i].ID == contactID {
			u.Contacts = append(u.Contacts[:i], u.Contacts[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("Contact not found")
}

func (s *Store) AddGiftIdea(_ context.Context, ownerID, contactID primitive.ObjectID, idea *models.GiftIdea) (*models.GiftIdea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.findContact(ownerID, contactID)
	if err != nil {
		return nil, err
	}

	clone := *idea
	clone.ID = primitive.NewObjectID()
	contact.GiftIdeas = append(contact.GiftIdeas, clone)

	result := clone
	return &result, nil
}

func (s *Store) UpdateGiftIdea(_ context.Context, ownerID, contactID primitive.ObjectID, idea *models.GiftIdea) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.findContact(ownerID, contactID)
	if err != nil {
		return err
	}
	for i := range contact.GiftIdeas {
		if contact.GiftIdeas[i].ID == idea.ID {
			contact.GiftIdeas[i] = *idea
			return nil
		}
	}
	return apperrors.NotFound("Gift idea not found")
}

func (s *Store) DeleteGiftIdea(_ context.Context, ownerID, contactID, ideaID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.findContact(ownerID, contactID)
	if err != nil {
		return err
	}
	for i := range contact.GiftIdeas {
		if contact.GiftIdeas[i].ID == ideaID {
			contact.GiftIdeas = append(contact.GiftIdeas[:i], contact.GiftIdeas[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("Gift idea not found")
}

func (s *Store) SetLink(_ context.Context, ownerID, contactID, friendUserID primitive.ObjectID, linkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.findContact(ownerID, contactID)
	if err != nil {
		return err
	}
	id := friendUserID
	at := linkedAt
	contact.LinkedUserID = &id
	contact.LinkedAt = &at
	return nil
}

func (s *Store) ClearLink(_ context.Context, ownerID, contactID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact, err := s.findContact(ownerID, contactID)
	if err != nil {
		return err
	}
	contact.LinkedUserID = nil
	contact.LinkedAt = nil
	return nil
}

func (s *Store) findContact(ownerID, contactID primitive.ObjectID) (*models.Contact, error) {
	u, ok := s.users[ownerID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	for i := range u.Contacts {
		if u.Contacts[i].ID == contactID {
			return &u.Contacts[i], nil
		}
	}
	return nil, apperrors.NotFound("Contact not found")
}

// --- WishlistStore ---

func (s *Store) AddWishlist(_ context.Context, ownerID primitive.ObjectID, wishlist *models.Wishlist) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[ownerID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}

	clone := *wishlist
	clone.ID = primitive.NewObjectID()
	clone.CreatedAt = time.Now()
	if clone.Items == nil {
		clone.Items = []models.WishlistItem{}
	}
	u.Wishlists = append(u.Wishlists, clone)

	result := clone
	return &result, nil
}

func (s *Store) GetWishlists(_ context.Context, ownerID primitive.ObjectID) ([]models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[ownerID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	wishlists := make([]models.Wishlist, 0, len(u.Wishlists))
	for i := range u.Wishlists {
		wishlists = append(wishlists, cloneWishlist(&u.Wishlists[i]))
	}
	return wishlists, nil
}

func (s *Store) GetWishlistByID(_ context.Context, ownerID, wishlistID primitive.ObjectID) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist, err := s.findWishlist(ownerID, wishlistID)
	if err != nil {
		return nil, err
	}
	clone := cloneWishlist(wishlist)
	return &clone, nil
}

func (s *Store) FindOwnerByWishlistID(_ context.Context, wishlistID primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		for i := range u.Wishlists {
			if u.Wishlists[i].ID == wishlistID {
				clone := *u
				clone.Wishlists = make([]models.Wishlist, 0, len(u.Wishlists))
				for j := range u.Wishlists {
					clone.Wishlists = append(clone.Wishlists, cloneWishlist(&u.Wishlists[j]))
				}
				return &clone, nil
			}
		}
	}
	return nil, apperrors.NotFound("Wishlist not found")
}

// cloneWishlist detaches the item and shared-with slices so callers can
// mutate their copy without touching stored state.
func cloneWishlist(w *models.Wishlist) models.Wishlist {
	clone := *w
	clone.Items = append([]models.WishlistItem{}, w.Items...)
	clone.SharedWith = append([]primitive.ObjectID{}, w.SharedWith...)
	return clone
}

func (s *Store) UpdateWishlist(_ context.Context, ownerID, wishlistID primitive.ObjectID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist, err := s.findWishlist(ownerID, wishlistID)
	if err != nil {
		return err
	}
	for key, value := range updates {
		switch key {
		case "name":
			wishlist.Name = value.(string)
		case "description":
			wishlist.Description = value.(string)
		case "visibility":
			wishlist.Visibility = value.(string)
		}
	}
	return nil
}

func (s *Store) DeleteWishlist(_ context.Context, ownerID, wishlistID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[ownerID]
	if !ok {
		return apperrors.NotFound("User not found")
	}
	for i := range u.Wishlists {
		if u.Wishlists[i].ID == wishlistID {
			u.Wishlists = append(u.Wishlists[:i], u.Wishlists[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("Wishlist not found")
}

func (s *Store) AddItem(_ context.Context, ownerID, wishlistID primitive.ObjectID, item *models.WishlistItem) (*models.WishlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist, err := s.findWishlist(ownerID, wishlistID)
	if err != nil {
		return nil, err
	}

	clone := *item
	clone.ID = primitive.NewObjectID()
	wishlist.Items = append(wishlist.Items, clone)

	result := clone
	return &result, nil
}

func (s *Store) UpdateItem(_ context.Context, ownerID, wishlistID, itemID primitive.ObjectID, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.findWishlistItem(ownerID, wishlistID, itemID)
	if err != nil {
		return err
	}
	for key, value := range updates {
		switch key {
		case "name":
			item.Name = value.(string)
		case "description":
			item.Description = value.(string)
		case "link":
			item.Link = value.(string)
		case "price":
			item.Price = value.(float64)
		case "bought":
			item.Bought = value.(bool)
		}
	}
	return nil
}

func (s *Store) SetReservation(_ context.Context, ownerID, wishlistID, itemID primitive.ObjectID, reserved bool, reservedBy *primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.findWishlistItem(ownerID, wishlistID, itemID)
	if err != nil {
		return err
	}
	item.Reserved = reserved
	if reservedBy != nil {
		id := *reservedBy
		item.ReservedBy = &id
	} else {
		item.ReservedBy = nil
	}
	return nil
}

func (s *Store) DeleteItem(_ context.Context, ownerID, wishlistID, itemID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist, err := s.findWishlist(ownerID, wishlistID)
	if err != nil {
		return err
	}
	for i := range wishlist.Items {
		if wishlist.Items[i].ID == itemID {
			wishlist.Items = append(wishlist.Items[:i], wishlist.Items[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("Item not found")
}

func (s *Store) AddSharedWith(_ context.Context, ownerID, wishlistID primitive.ObjectID, friendIDs []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist, err := s.findWishlist(ownerID, wishlistID)
	if err != nil {
		return err
	}
	for _, id := range friendIDs {
		if !wishlist.SharedWithUser(id) {
			wishlist.SharedWith = append(wishlist.SharedWith, id)
		}
	}
	return nil
}

func (s *Store) RemoveSharedWith(_ context.Context, ownerID, wishlistID, friendID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wishlist, err := s.findWishlist(ownerID, wishlistID)
	if err != nil {
		return err
	}
	remaining := wishlist.SharedWith[:0]
	for _, id := range wishlist.SharedWith {
		if id != friendID {
			remaining = append(remaining, id)
		}
	}
	wishlist.SharedWith = remaining
	return nil
}

func (s *Store) findWishlist(ownerID, wishlistID primitive.ObjectID) (*models.Wishlist, error) {
	u, ok := s.users[ownerID]
	if !ok {
		return nil, apperrors.NotFound("User not found")
	}
	for i := range u.Wishlists {
		if u.Wishlists[i].ID == wishlistID {
			return &u.Wishlists[i], nil
		}
	}
	return nil, apperrors.NotFound("Wishlist not found")
}

func (s *Store) findWishlistItem(ownerID, wishlistID, itemID primitive.ObjectID) (*models.WishlistItem, error) {
	wishlist, err := s.findWishlist(ownerID, wishlistID)
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

// --- FriendStore ---

func (s *Store) CreateFriendship(_ context.Context, friendship *models.Friendship) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.friendships {
		if f.UserID == friendship.UserID && f.FriendID == friendship.FriendID {
			return nil, apperrors.Conflict("Friend request already sent")
		}
	}

	clone := *friendship
	clone.ID = primitive.NewObjectID()
	if clone.Groups == nil {
		clone.Groups = []string{}
	}
	s.friendships[clone.ID] = &clone

	result := clone
	return &result, nil
}

func (s *Store) GetByID(_ context.Context, id primitive.ObjectID) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[id]
	if !ok {
		return nil, apperrors.NotFound("Friendship not found")
	}
	clone := *f
	return &clone, nil
}

func (s *Store) GetBetween(_ context.Context, a, b primitive.ObjectID) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.friendships {
		if (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a) {
			clone := *f
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAcceptedForUser(_ context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []models.Friendship{}
	for _, f := range s.friendships {
		if f.Status == models.FriendStatusAccepted && f.Involves(userID) {
			matches = append(matches, *f)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		var a, b time.Time
		if matches[i].AcceptedAt != nil {
			a = *matches[i].AcceptedAt
		}
		if matches[j].AcceptedAt != nil {
			b = *matches[j].AcceptedAt
		}
		return a.After(b)
	})
	return matches, nil
}

func (s *Store) GetPendingForReceiver(_ context.Context, userID primitive.ObjectID) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []models.Friendship{}
	for _, f := range s.friendships {
		if f.Status == models.FriendStatusPending && f.FriendID == userID {
			matches = append(matches, *f)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].RequestedAt.After(matches[j].RequestedAt)
	})
	return matches, nil
}

func (s *Store) GetForUserAmong(_ context.Context, userID primitive.ObjectID, others []primitive.ObjectID) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []models.Friendship{}
	for _, f := range s.friendships {
		if !f.Involves(userID) {
			continue
		}
		for _, other := range others {
			if f.Involves(other) && other != userID {
				matches = append(matches, *f)
				break
			}
		}
	}
	return matches, nil
}

func (s *Store) SetStatus(_ context.Context, id primitive.ObjectID, status string, acceptedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[id]
	if !ok {
		return apperrors.NotFound("Friendship not found")
	}
	f.Status = status
	f.AcceptedAt = acceptedAt
	return nil
}

func (s *Store) SetGroups(_ context.Context, id primitive.ObjectID, groups []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.friendships[id]
	if !ok {
		return apperrors.NotFound("Friendship not found")
	}
	f.Groups = groups
	return nil
}

func (s *Store) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.friendships[id]; !ok {
		return apperrors.NotFound("Friendship not found")
	}
	delete(s.friendships, id)
	return nil
}
