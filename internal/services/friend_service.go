package services

import (
	"context"
	"time"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const searchResultLimit = 10

// FriendService handles business logic for friendships.
type FriendService struct {
	friendRepo FriendStore
	userRepo   UserStore
}

// NewFriendService creates a new FriendService.
func NewFriendService(friendRepo FriendStore, userRepo UserStore) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendRequest creates a pending friendship towards the user owning the
// given email. Any existing record between the pair blocks a new one;
// a declined request stays terminal.
func (s *FriendService) SendRequest(ctx context.Context, requesterID primitive.ObjectID, email string) (*models.Friendship, error) {
	target, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}

	if target.ID == requesterID {
		return nil, apperrors.Validation("Cannot send friend request to yourself")
	}

	existing, err := s.friendRepo.GetBetween(ctx, requesterID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendStatusAccepted:
			return nil, apperrors.Conflict("Already friends")
		case models.FriendStatusPending:
			return nil, apperrors.Conflict("Friend request already sent")
		default:
			return nil, apperrors.Conflict("Friend request was previously declined")
		}
	}

	friendship := &models.Friendship{
		UserID:      requesterID,
		FriendID:    target.ID,
		Status:      models.FriendStatusPending,
		RequestedBy: requesterID,
		RequestedAt: time.Now(),
		Groups:      []string{},
	}

	created, err := s.friendRepo.CreateFriendship(ctx, friendship)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"requesterID": requesterID.Hex(),
		"targetID":    target.ID.Hex(),
	}).Info("Friend request sent")
	return created, nil
}

// GetFriends lists accepted friendships, each shown as the other party.
func (s *FriendService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.FriendSummary, error) {
	friendships, err := s.friendRepo.GetAcceptedForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	others := make([]primitive.ObjectID, 0, len(friendships))
	for _, f := range friendships {
		others = append(others, f.OtherParty(userID))
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, others)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	summaries := make([]models.FriendSummary, 0, len(friendships))
	for _, f := range friendships {
		other, ok := byID[f.OtherParty(userID)]
		if !ok {
			// Friend account deleted out from under the record.
			continue
		}
		summaries = append(summaries, models.FriendSummary{
			ID:         f.ID,
			FriendID:   other.ID,
			Name:       other.Name,
			Email:      other.Email,
			Groups:     f.Groups,
			AcceptedAt: f.AcceptedAt,
		})
	}

	return summaries, nil
}

// GetPendingRequests lists incoming pending requests with requester
// identity.
func (s *FriendService) GetPendingRequests(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequestSummary, error) {
	friendships, err := s.friendRepo.GetPendingForReceiver(ctx, userID)
	if err != nil {
		return nil, err
	}

	requesters := make([]primitive.ObjectID, 0, len(friendships))
	for _, f := range friendships {
		requesters = append(requesters, f.RequestedBy)
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, requesters)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	summaries := make([]models.FriendRequestSummary, 0, len(friendships))
	for _, f := range friendships {
		requester, ok := byID[f.RequestedBy]
		if !ok {
			continue
		}
		summaries = append(summaries, models.FriendRequestSummary{
			ID: f.ID,
			RequestedBy: models.PublicUser{
				ID:    requester.ID,
				Name:  requester.Name,
				Email: requester.Email,
			},
			RequestedAt: f.RequestedAt,
		})
	}

	return summaries, nil
}

// Respond accepts or declines a pending request. Only the addressed
// party may act, and only while the request is pending.
func (s *FriendService) Respond(ctx context.Context, callerID, requestID primitive.ObjectID, accept bool) (*models.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperrors.NotFound("Friend request not found")
	}

	if friendship.FriendID != callerID {
		action := "decline"
		if accept {
			action = "accept"
		}
		return nil, apperrors.Forbidden("Not authorized to " + action + " this request")
	}

	if friendship.Status != models.FriendStatusPending {
		return nil, apperrors.Conflict("Request is not pending")
	}

	status := models.FriendStatusDeclined
	var acceptedAt *time.Time
	if accept {
		status = models.FriendStatusAccepted
		now := time.Now()
		acceptedAt = &now
	}

	if err := s.friendRepo.SetStatus(ctx, requestID, status, acceptedAt); err != nil {
		return nil, err
	}

	friendship.Status = status
	friendship.AcceptedAt = acceptedAt

	logrus.WithFields(logrus.Fields{
		"friendshipID": requestID.Hex(),
		"status":       status,
	}).Info("Friend request resolved")
	return friendship, nil
}

// Remove deletes a friendship record. Either party may do so,
// regardless of status.
func (s *FriendService) Remove(ctx context.Context, callerID, friendshipID primitive.ObjectID) error {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return apperrors.NotFound("Friendship not found")
	}

	if !friendship.Involves(callerID) {
		return apperrors.Forbidden("Not authorized to remove this friend")
	}

	return s.friendRepo.Delete(ctx, friendshipID)
}

// Search matches users by email substring and annotates each hit with
// the caller's relationship to it.
func (s *FriendService) Search(ctx context.Context, callerID primitive.ObjectID, query string) ([]models.UserSearchResult, error) {
	if query == "" {
		return nil, apperrors.Validation("Search query required")
	}

	users, err := s.userRepo.SearchUsersByEmail(ctx, query, callerID, searchResultLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	friendships, err := s.friendRepo.GetForUserAmong(ctx, callerID, ids)
	if err != nil {
		return nil, err
	}

	results := make([]models.UserSearchResult, 0, len(users))
	for _, u := range users {
		result := models.UserSearchResult{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
		}
		for i := range friendships {
			if friendships[i].Involves(u.ID) {
				status := friendships[i].Status
				id := friendships[i].ID
				result.FriendshipStatus = &status
				result.FriendshipID = &id
				break
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// AddToGroups unions new group labels into a friendship. Either party
// may edit.
func (s *FriendService) AddToGroups(ctx context.Context, callerID, friendshipID primitive.ObjectID, groups []string) ([]string, error) {
	if len(groups) == 0 {
		return nil, apperrors.Validation("Groups array required")
	}

	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, apperrors.NotFound("Friendship not found")
	}
	if !friendship.Involves(callerID) {
		return nil, apperrors.Forbidden("Not authorized")
	}

	seen := make(map[string]bool, len(friendship.Groups)+len(groups))
	merged := make([]string, 0, len(friendship.Groups)+len(groups))
	for _, g := range append(append([]string{}, friendship.Groups...), groups...) {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		merged = append(merged, g)
	}

	if err := s.friendRepo.SetGroups(ctx, friendshipID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// RemoveFromGroup drops one group label by exact name.
func (s *FriendService) RemoveFromGroup(ctx context.Context, callerID, friendshipID primitive.ObjectID, groupName string) ([]string, error) {
	friendship, err := s.friendRepo.GetByID(ctx, friendshipID)
	if err != nil {
		return nil, apperrors.NotFound("Friendship not found")
	}
	if !friendship.Involves(callerID) {
		return nil, apperrors.Forbidden("Not authorized")
	}

	remaining := make([]string, 0, len(friendship.Groups))
	for _, g := range friendship.Groups {
		if g != groupName {
			remaining = append(remaining, g)
		}
	}

	if err := s.friendRepo.SetGroups(ctx, friendshipID, remaining); err != nil {
		return nil, err
	}
	return remaining, nil
}
