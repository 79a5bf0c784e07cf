package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContactRepository manipulates the contacts array embedded in user
// documents. Mutations target single array elements with positional and
// filtered updates instead of rewriting the parent document.
type ContactRepository struct {
	collection *mongo.Collection
}

func NewContactRepository(db *mongo.Database) *ContactRepository {
	return &ContactRepository{collection: db.Collection("users")}
}

// AddContact appends a contact to the owner's document.
func (r *ContactRepository) AddContact(ctx context.Context, ownerID primitive.ObjectID, contact *models.Contact) (*models.Contact, error) {
	contact.ID = primitive.NewObjectID()
	if contact.Interests == nil {
		contact.Interests = []string{}
	}
	if contact.GiftIdeas == nil {
		contact.GiftIdeas = []models.GiftIdea{}
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$push": bson.M{"contacts": contact}},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to add contact")
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFound("User not found")
	}

	logrus.WithFields(logrus.Fields{
		"userID":    ownerID.Hex(),
		"contactID": contact.ID.Hex(),
	}).Info("Contact added")
	return contact, nil
}

// GetContacts returns all contacts of the owner.
func (r *ContactRepository) GetContacts(ctx context.Context, ownerID primitive.ObjectID) ([]models.Contact, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"contacts": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": ownerID}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to fetch contacts")
	}
	if user.Contacts == nil {
		user.Contacts = []models.Contact{}
	}
	return user.Contacts, nil
}

// GetContactByID returns a single contact of the owner.
func (r *ContactRepository) GetContactByID(ctx context.Context, ownerID, contactID primitive.ObjectID) (*models.Contact, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"contacts.$": 1})
	err := r.collection.FindOne(ctx,
		bson.M{"_id": ownerID, "contacts._id": contactID},
		opts,
	).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Contact not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to fetch contact")
	}
	if len(user.Contacts) == 0 {
		return nil, apperrors.NotFound("Contact not found")
	}
	return &user.Contacts[0], nil
}

// UpdateContact replaces the editable fields of a contact.
func (r *ContactRepository) UpdateContact(ctx context.Context, ownerID, contactID primitive.ObjectID, contact *models.Contact) error {
	if contact.Interests == nil {
		contact.Interests = []string{}
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "contacts._id": contactID},
		bson.M{"$set": bson.M{
			"contacts.$.name":      contact.Name,
			"contacts.$.email":     contact.Email,
			"contacts.$.phone":     contact.Phone,
			"contacts.$.notes":     contact.Notes,
			"contacts.$.interests": contact.Interests,
		}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to update contact")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Contact not found")
	}
	return nil
}

// DeleteContact removes a contact from the owner's document.
func (r *ContactRepository) DeleteContact(ctx context.Context, ownerID, contactID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$pull": bson.M{"contacts": bson.M{"_id": contactID}}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to delete contact")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("User not found")
	}
	if result.ModifiedCount == 0 {
		return apperrors.NotFound("Contact not found")
	}
	return nil
}

// AddGiftIdea appends a gift idea to a contact.
func (r *ContactRepository) AddGiftIdea(ctx context.Context, ownerID, contactID primitive.ObjectID, idea *models.GiftIdea) (*models.GiftIdea, error) {
	idea.ID = primitive.NewObjectID()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "contacts._id": contactID},
		bson.M{"$push": bson.M{"contacts.$.gift_ideas": idea}},
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to add gift idea")
	}
	if result.MatchedCount == 0 {
		return nil, apperrors.NotFound("Contact not found")
	}
	return idea, nil
}

// UpdateGiftIdea sets name, notes and purchased of one idea in place.
// Existence of the owner -> contact -> idea chain is the caller's
// responsibility; a vanished idea makes this a no-op.
func (r *ContactRepository) UpdateGiftIdea(ctx context.Context, ownerID, contactID primitive.ObjectID, idea *models.GiftIdea) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c._id": contactID},
			bson.M{"g._id": idea.ID},
		},
	})

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$set": bson.M{
			"contacts.$[c].gift_ideas.$[g].name":      idea.Name,
			"contacts.$[c].gift_ideas.$[g].notes":     idea.Notes,
			"contacts.$[c].gift_ideas.$[g].purchased": idea.Purchased,
		}},
		opts,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to update gift idea")
	}
	return nil
}

// DeleteGiftIdea removes one idea from a contact.
func (r *ContactRepository) DeleteGiftIdea(ctx context.Context, ownerID, contactID, ideaID primitive.ObjectID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"c._id": contactID}},
	})

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID},
		bson.M{"$pull": bson.M{"contacts.$[c].gift_ideas": bson.M{"_id": ideaID}}},
		opts,
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to delete gift idea")
	}
	if result.ModifiedCount == 0 {
		return apperrors.NotFound("Gift idea not found")
	}
	return nil
}

// SetLink marks a contact as linked to a platform friend.
func (r *ContactRepository) SetLink(ctx context.Context, ownerID, contactID, friendUserID primitive.ObjectID, linkedAt time.Time) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "contacts._id": contactID},
		bson.M{"$set": bson.M{
			"contacts.$.linked_user_id": friendUserID,
			"contacts.$.linked_at":      linkedAt,
		}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to link contact")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Contact not found")
	}
	return nil
}

// ClearLink removes the friend association, preserving everything else.
func (r *ContactRepository) ClearLink(ctx context.Context, ownerID, contactID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "contacts._id": contactID},
		bson.M{"$unset": bson.M{
			"contacts.$.linked_user_id": "",
			"contacts.$.linked_at":      "",
		}},
	)
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to unlink contact")
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("Contact not found")
	}
	return nil
}
