package services_test

import (
	"context"
	"testing"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/internal/storetest"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendFixture struct {
	svc   *services.FriendService
	users *services.UserService
	alice *models.User
	bob   *models.User
}

func newFriendFixture(t *testing.T) *friendFixture {
	t.Helper()
	store := storetest.New()
	users := services.NewUserService(store)
	ctx := context.Background()

	alice, err := users.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "Bob", "bob@example.com", "secret456")
	require.NoError(t, err)

	return &friendFixture{
		svc:   services.NewFriendService(store, store),
		users: users,
		alice: alice,
		bob:   bob,
	}
}

func TestSendRequest(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.FriendStatusPending, request.Status)
	assert.Equal(t, f.alice.ID, request.RequestedBy)
	assert.Equal(t, f.bob.ID, request.FriendID)
}

func TestSendRequestToSelf(t *testing.T) {
	f := newFriendFixture(t)

	_, err := f.svc.SendRequest(context.Background(), f.alice.ID, "alice@example.com")
	require.Error(t, err)
	assert.Equal(t, "Cannot send friend request to yourself", apperrors.PublicMessage(err))
}

func TestSendRequestUnknownEmail(t *testing.T) {
	f := newFriendFixture(t)

	_, err := f.svc.SendRequest(context.Background(), f.alice.ID, "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, "User not found", apperrors.PublicMessage(err))
}

func TestSendRequestBlockedByExisting(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)

	// Pending blocks a second request from either side.
	_, err = f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.Error(t, err)
	assert.Equal(t, "Friend request already sent", apperrors.PublicMessage(err))
	_, err = f.svc.SendRequest(ctx, f.bob.ID, "alice@example.com")
	require.Error(t, err)
	assert.Equal(t, "Friend request already sent", apperrors.PublicMessage(err))

	_, err = f.svc.Respond(ctx, f.bob.ID, request.ID, true)
	require.NoError(t, err)

	_, err = f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.Error(t, err)
	assert.Equal(t, "Already friends", apperrors.PublicMessage(err))
}

func TestDeclinedRequestIsTerminal(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.bob.ID, request.ID, false)
	require.NoError(t, err)

	_, err = f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.Error(t, err)
	assert.Equal(t, "Friend request was previously declined", apperrors.PublicMessage(err))

	// Nor can the declined record be re-resolved.
	_, err = f.svc.Respond(ctx, f.bob.ID, request.ID, true)
	require.Error(t, err)
	assert.Equal(t, "Request is not pending", apperrors.PublicMessage(err))
}

func TestRespondOnlyByAddressee(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)

	_, err = f.svc.Respond(ctx, f.alice.ID, request.ID, true)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	assert.Equal(t, "Not authorized to accept this request", apperrors.PublicMessage(err))

	_, err = f.svc.Respond(ctx, f.alice.ID, request.ID, false)
	require.Error(t, err)
	assert.Equal(t, "Not authorized to decline this request", apperrors.PublicMessage(err))
}

func TestAcceptStampsTime(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)

	accepted, err := f.svc.Respond(ctx, f.bob.ID, request.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.FriendStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
}

func TestGetFriendsAndPendingRequests(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)

	pending, err := f.svc.GetPendingRequests(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, f.alice.ID, pending[0].RequestedBy.ID)
	assert.Equal(t, "Alice", pending[0].RequestedBy.Name)

	// The requester has no incoming requests.
	pending, err = f.svc.GetPendingRequests(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.Respond(ctx, f.bob.ID, request.ID, true)
	require.NoError(t, err)

	friends, err := f.svc.GetFriends(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Bob", friends[0].Name)
	assert.Equal(t, f.bob.ID, friends[0].FriendID)

	// Visible from both sides.
	friends, err = f.svc.GetFriends(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Alice", friends[0].Name)
}

func TestRemoveFriend(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.bob.ID, request.ID, true)
	require.NoError(t, err)

	outsider, err := f.users.Register(ctx, "Carol", "carol@example.com", "secret789")
	require.NoError(t, err)
	err = f.svc.Remove(ctx, outsider.ID, request.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	require.NoError(t, f.svc.Remove(ctx, f.bob.ID, request.ID))

	friends, err := f.svc.GetFriends(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, friends)

	// A fresh request is possible after removal.
	_, err = f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)
}

func TestSearchAnnotatesRelationship(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	_, err := f.svc.Search(ctx, f.alice.ID, "")
	require.Error(t, err)
	assert.Equal(t, "Search query required", apperrors.PublicMessage(err))

	results, err := f.svc.Search(ctx, f.alice.ID, "example.com")
	require.NoError(t, err)
	require.Len(t, results, 1) // caller excluded
	assert.Equal(t, f.bob.ID, results[0].ID)
	assert.Nil(t, results[0].FriendshipStatus)

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)

	results, err = f.svc.Search(ctx, f.alice.ID, "bob")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].FriendshipStatus)
	assert.Equal(t, models.FriendStatusPending, *results[0].FriendshipStatus)
	require.NotNil(t, results[0].FriendshipID)
	assert.Equal(t, request.ID, *results[0].FriendshipID)
}

func TestGroups(t *testing.T) {
	f := newFriendFixture(t)
	ctx := context.Background()

	request, err := f.svc.SendRequest(ctx, f.alice.ID, "bob@example.com")
	require.NoError(t, err)
	_, err = f.svc.Respond(ctx, f.bob.ID, request.ID, true)
	require.NoError(t, err)

	_, err = f.svc.AddToGroups(ctx, f.alice.ID, request.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "Groups array required", apperrors.PublicMessage(err))

	groups, err := f.svc.AddToGroups(ctx, f.alice.ID, request.ID, []string{"family", "work"})
	require.NoError(t, err)
	assert.Equal(t, []string{"family", "work"}, groups)

	// Union, not append.
	groups, err = f.svc.AddToGroups(ctx, f.alice.ID, request.ID, []string{"work", "gym"})
	require.NoError(t, err)
	assert.Equal(t, []string{"family", "work", "gym"}, groups)

	groups, err = f.svc.RemoveFromGroup(ctx, f.alice.ID, request.ID, "work")
	require.NoError(t, err)
	assert.Equal(t, []string{"family", "gym"}, groups)

	outsider, err := f.users.Register(ctx, "Carol", "carol@example.com", "secret789")
	require.NoError(t, err)
	_, err = f.svc.AddToGroups(ctx, outsider.ID, request.ID, []string{"spies"})
	require.Error(t, err)
	assert.Equal(t, "Not authorized", apperrors.PublicMessage(err))
}
