package services

import (
	"context"
	"strings"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactService handles private contacts, their gift ideas and the
// contact-to-friend linking layer.
type ContactService struct {
	contactRepo ContactStore
	friendRepo  FriendStore
	userRepo    UserStore
}

// NewContactService creates a new ContactService.
func NewContactService(contactRepo ContactStore, friendRepo FriendStore, userRepo UserStore) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		friendRepo:  friendRepo,
		userRepo:    userRepo,
	}
}

// AddContact creates a contact for the owner.
func (s *ContactService) AddContact(ctx context.Context, ownerID primitive.ObjectID, contact *models.Contact) (*models.Contact, error) {
	if strings.TrimSpace(contact.Name) == "" {
		return nil, apperrors.Validation("Contact name is required")
	}
	contact.LinkedUserID = nil
	contact.LinkedAt = nil
	contact.GiftIdeas = []models.GiftIdea{}
	return s.contactRepo.AddContact(ctx, ownerID, contact)
}

// GetContacts lists the owner's contacts.
func (s *ContactService) GetContacts(ctx context.Context, ownerID primitive.ObjectID) ([]models.Contact, error) {
	return s.contactRepo.GetContacts(ctx, ownerID)
}

// GetContact fetches one contact of the owner.
func (s *ContactService) GetContact(ctx context.Context, ownerID, contactID primitive.ObjectID) (*models.Contact, error) {
	return s.contactRepo.GetContactByID(ctx, ownerID, contactID)
}

// UpdateContact replaces the editable fields of a contact and returns
// the updated state. Link state is untouched.
func (s *ContactService) UpdateContact(ctx context.Context, ownerID, contactID primitive.ObjectID, contact *models.Contact) (*models.Contact, error) {
	if strings.TrimSpace(contact.Name) == "" {
		return nil, apperrors.Validation("Contact name is required")
	}
	if err := s.contactRepo.UpdateContact(ctx, ownerID, contactID, contact); err != nil {
		return nil, err
	}
	return s.contactRepo.GetContactByID(ctx, ownerID, contactID)
}

// DeleteContact removes a contact.
func (s *ContactService) DeleteContact(ctx context.Context, ownerID, contactID primitive.ObjectID) error {
	return s.contactRepo.DeleteContact(ctx, ownerID, contactID)
}

// AddGiftIdea appends a gift idea to a contact.
func (s *ContactService) AddGiftIdea(ctx context.Context, ownerID, contactID primitive.ObjectID, name, notes string) (*models.GiftIdea, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.Validation("Gift idea name is required")
	}
	idea := &models.GiftIdea{Name: name, Notes: notes}
	return s.contactRepo.AddGiftIdea(ctx, ownerID, contactID, idea)
}

// TogglePurchased flips the purchased flag of one gift idea.
func (s *ContactService) TogglePurchased(ctx context.Context, ownerID, contactID, ideaID primitive.ObjectID) (*models.GiftIdea, error) {
	idea, err := s.findGiftIdea(ctx, ownerID, contactID, ideaID)
	if err != nil {
		return nil, err
	}

	idea.Purchased = !idea.Purchased
	if err := s.contactRepo.UpdateGiftIdea(ctx, ownerID, contactID, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// UpdateGiftIdea edits name/notes of one gift idea. An empty name keeps
// the old one; notes are replaced when provided.
func (s *ContactService) UpdateGiftIdea(ctx context.Context, ownerID, contactID, ideaID primitive.ObjectID, name string, notes *string) (*models.GiftIdea, error) {
	idea, err := s.findGiftIdea(ctx, ownerID, contactID, ideaID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		idea.Name = name
	}
	if notes != nil {
		idea.Notes = *notes
	}

	if err := s.contactRepo.UpdateGiftIdea(ctx, ownerID, contactID, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// DeleteGiftIdea removes one gift idea.
func (s *ContactService) DeleteGiftIdea(ctx context.Context, ownerID, contactID, ideaID primitive.ObjectID) error {
	if _, err := s.findGiftIdea(ctx, ownerID, contactID, ideaID); err != nil {
		return err
	}
	return s.contactRepo.DeleteGiftIdea(ctx, ownerID, contactID, ideaID)
}

func (s *ContactService) findGiftIdea(ctx context.Context, ownerID, contactID, ideaID primitive.ObjectID) (*models.GiftIdea, error) {
	contact, err := s.contactRepo.GetContactByID(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	for i := range contact.GiftIdeas {
		if contact.GiftIdeas[i].ID == ideaID {
			return &contact.GiftIdeas[i], nil
		}
	}
	return nil, apperrors.NotFound("Gift idea not found")
}

// LinkSuggestions proposes a friend for every unlinked, email-bearing
// contact whose email matches an accepted friend's email
// case-insensitively.
func (s *ContactService) LinkSuggestions(ctx context.Context, ownerID primitive.ObjectID) ([]models.LinkSuggestion, error) {
	contacts, err := s.contactRepo.GetContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	friendships, err := s.friendRepo.GetAcceptedForUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	friendIDs := make([]primitive.ObjectID, 0, len(friendships))
	for _, f := range friendships {
		friendIDs = append(friendIDs, f.OtherParty(ownerID))
	}

	friends, err := s.userRepo.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	byEmail := make(map[string]models.PublicUser, len(friends))
	for _, friend := range friends {
		byEmail[strings.ToLower(friend.Email)] = models.PublicUser{
			ID:    friend.ID,
			Name:  friend.Name,
			Email: friend.Email,
		}
	}

	suggestions := []models.LinkSuggestion{}
	for _, contact := range contacts {
		if contact.LinkedUserID != nil || contact.Email == "" {
			continue
		}
		if friend, ok := byEmail[strings.ToLower(contact.Email)]; ok {
			suggestions = append(suggestions, models.LinkSuggestion{
				Contact:     contact,
				Friend:      friend,
				MatchReason: "email",
			})
		}
	}

	return suggestions, nil
}

// Link associates a contact with an accepted friend. At most one
// contact per owner may point at a given friend.
func (s *ContactService) Link(ctx context.Context, ownerID, contactID, friendUserID primitive.ObjectID) (*models.Contact, error) {
	contact, err := s.contactRepo.GetContactByID(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if contact.LinkedUserID != nil {
		return nil, apperrors.Conflict("Contact is already linked to a friend")
	}

	friendship, err := s.friendRepo.GetBetween(ctx, ownerID, friendUserID)
	if err != nil {
		return nil, err
	}
	if friendship == nil || friendship.Status != models.FriendStatusAccepted {
		return nil, apperrors.Validation("Friend relationship not found or not accepted")
	}

	contacts, err := s.contactRepo.GetContacts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if c.LinkedUserID != nil && *c.LinkedUserID == friendUserID {
			return nil, apperrors.Conflict("Another contact is already linked to this friend")
		}
	}

	// Email mismatch is a soft check: the owner may track a friend under
	// a different address.
	if friend, err := s.userRepo.GetUserByID(ctx, friendUserID); err == nil {
		if contact.Email != "" && !strings.EqualFold(contact.Email, friend.Email) {
			logrus.WithFields(logrus.Fields{
				"contactEmail": contact.Email,
				"friendEmail":  friend.Email,
			}).Warn("Linking contact whose email does not match the friend")
		}
	}

	linkedAt := time.Now()
	if err := s.contactRepo.SetLink(ctx, ownerID, contactID, friendUserID, linkedAt); err != nil {
		return nil, err
	}

	contact.LinkedUserID = &friendUserID
	contact.LinkedAt = &linkedAt

	logrus.WithFields(logrus.Fields{
		"ownerID":   ownerID.Hex(),
		"contactID": contactID.Hex(),
		"friendID":  friendUserID.Hex(),
	}).Info("Contact linked to friend")
	return contact, nil
}

// Unlink clears the friend association, preserving all other contact
// data.
func (s *ContactService) Unlink(ctx context.Context, ownerID, contactID primitive.ObjectID) (*models.Contact, error) {
	contact, err := s.contactRepo.GetContactByID(ctx, ownerID, contactID)
	if err != nil {
		return nil, err
	}
	if contact.LinkedUserID == nil {
		return nil, apperrors.Conflict("Contact is not linked to any friend")
	}

	if err := s.contactRepo.ClearLink(ctx, ownerID, contactID); err != nil {
		return nil, err
	}

	contact.LinkedUserID = nil
	contact.LinkedAt = nil
	return contact, nil
}

// ContactDataForFriend exposes interests and gift ideas of the caller's
// contact linked to the given friend. Returns (nil, nil) when no linked
// contact exists; callers render that as JSON null.
func (s *ContactService) ContactDataForFriend(ctx context.Context, callerID, friendUserID primitive.ObjectID) (*models.ContactData, error) {
	friendship, err := s.friendRepo.GetBetween(ctx, callerID, friendUserID)
	if err != nil {
		return nil, err
	}
	if friendship == nil || friendship.Status != models.FriendStatusAccepted {
		return nil, apperrors.Forbidden("Not friends with this user")
	}

	contacts, err := s.contactRepo.GetContacts(ctx, callerID)
	if err != nil {
		return nil, err
	}

	for _, contact := range contacts {
		if contact.LinkedUserID != nil && *contact.LinkedUserID == friendUserID {
			data := &models.ContactData{
				Interests: contact.Interests,
				GiftIdeas: contact.GiftIdeas,
			}
			if data.Interests == nil {
				data.Interests = []string{}
			}
			if data.GiftIdeas == nil {
				data.GiftIdeas = []models.GiftIdea{}
			}
			return data, nil
		}
	}

	return nil, nil
}
