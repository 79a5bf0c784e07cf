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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type wishlistFixture struct {
	svc   *services.WishlistService
	users *services.UserService
	alice *models.User
	bob   *models.User
}

func newWishlistFixture(t *testing.T) *wishlistFixture {
	t.Helper()
	store := storetest.New()
	users := services.NewUserService(store)
	ctx := context.Background()

	alice, err := users.Register(ctx, "Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	bob, err := users.Register(ctx, "Bob", "bob@example.com", "secret456")
	require.NoError(t, err)

	return &wishlistFixture{
		svc:   services.NewWishlistService(store, store),
		users: users,
		alice: alice,
		bob:   bob,
	}
}

func (f *wishlistFixture) listWithItem(t *testing.T, visibility string) (*models.Wishlist, *models.WishlistItem) {
	t.Helper()
	ctx := context.Background()
	wishlist, err := f.svc.CreateWishlist(ctx, f.alice.ID, "Birthday", "", visibility)
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, f.alice.ID, wishlist.ID, &models.WishlistItem{Name: "Book", Price: 19.99})
	require.NoError(t, err)
	return wishlist, item
}

func TestCreateWishlist(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWishlist(ctx, f.alice.ID, "", "", "")
	require.Error(t, err)
	assert.Equal(t, "Wishlist name is required", apperrors.PublicMessage(err))

	_, err = f.svc.CreateWishlist(ctx, f.alice.ID, "Birthday", "", "friends-only")
	require.Error(t, err)
	assert.Equal(t, "Visibility must be public or private", apperrors.PublicMessage(err))

	wishlist, err := f.svc.CreateWishlist(ctx, f.alice.ID, "Birthday", "turning 30", "")
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPublic, wishlist.Visibility)
	assert.NotNil(t, wishlist.Items)
}

func TestItemCRUD(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	name := "Hardcover book"
	price := 29.99
	updated, err := f.svc.UpdateItem(ctx, f.alice.ID, wishlist.ID, item.ID, services.ItemUpdate{
		Name:  &name,
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hardcover book", updated.Name)
	assert.Equal(t, 29.99, updated.Price)

	require.NoError(t, f.svc.DeleteItem(ctx, f.alice.ID, wishlist.ID, item.ID))
	items, err := f.svc.GetWishlistItems(ctx, f.alice.ID, wishlist.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReserveWithoutOwnership(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	// Bob reserves on Alice's list without holding her id.
	reserved, err := f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.NoError(t, err)
	assert.True(t, reserved.Reserved)
	require.NotNil(t, reserved.ReservedBy)
	assert.Equal(t, f.bob.ID, *reserved.ReservedBy)
}

func TestReserveIdempotentForSameIdentity(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	_, err := f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.NoError(t, err)
	_, err = f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.NoError(t, err)

	carol := primitive.NewObjectID()
	_, err = f.svc.Reserve(ctx, wishlist.ID, item.ID, &carol)
	require.Error(t, err)
	assert.Equal(t, "Item already reserved by someone else", apperrors.PublicMessage(err))
}

func TestAnonymousReservation(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	reserved, err := f.svc.Reserve(ctx, wishlist.ID, item.ID, nil)
	require.NoError(t, err)
	assert.True(t, reserved.Reserved)
	assert.Nil(t, reserved.ReservedBy)

	// Another anonymous caller is indistinguishable, so the retry passes.
	_, err = f.svc.Reserve(ctx, wishlist.ID, item.ID, nil)
	require.NoError(t, err)

	// A signed-in caller does conflict.
	_, err = f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.Error(t, err)
	assert.Equal(t, "Item already reserved by someone else", apperrors.PublicMessage(err))
}

func TestUnreserve(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	_, err := f.svc.Unreserve(ctx, f.alice.ID, wishlist.ID, item.ID)
	require.Error(t, err)
	assert.Equal(t, "Item is not reserved", apperrors.PublicMessage(err))

	_, err = f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.NoError(t, err)

	released, err := f.svc.Unreserve(ctx, f.alice.ID, wishlist.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, released.Reserved)
	assert.Nil(t, released.ReservedBy)
}

func TestOwnerNeverSeesReserver(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	_, err := f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.NoError(t, err)

	items, err := f.svc.GetWishlistItems(ctx, f.alice.ID, wishlist.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Reserved)
	assert.Nil(t, items[0].ReservedBy)

	lists, err := f.svc.GetWishlists(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Nil(t, lists[0].Items[0].ReservedBy)
}

func TestPublicViewFiltersReservedAndBought(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, item := f.listWithItem(t, models.VisibilityPublic)

	free, err := f.svc.AddItem(ctx, f.alice.ID, wishlist.ID, &models.WishlistItem{Name: "Socks"})
	require.NoError(t, err)
	bought, err := f.svc.AddItem(ctx, f.alice.ID, wishlist.ID, &models.WishlistItem{Name: "Mug"})
	require.NoError(t, err)

	_, err = f.svc.Reserve(ctx, wishlist.ID, item.ID, &f.bob.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkBought(ctx, f.alice.ID, wishlist.ID, bought.ID, true)
	require.NoError(t, err)

	view, err := f.svc.PublicView(ctx, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.UserName)
	require.Len(t, view.Wishlists, 1)
	require.Len(t, view.Wishlists[0].Items, 1)
	assert.Equal(t, free.ID, view.Wishlists[0].Items[0].ID)
	assert.False(t, view.Wishlists[0].IsShared)

	// Unreserving brings the item back.
	_, err = f.svc.Unreserve(ctx, f.alice.ID, wishlist.ID, item.ID)
	require.NoError(t, err)
	view, err = f.svc.PublicView(ctx, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Len(t, view.Wishlists[0].Items, 2)
}

func TestPublicViewPrivateLists(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, _ := f.listWithItem(t, models.VisibilityPrivate)

	// Invisible to anonymous and unshared viewers.
	view, err := f.svc.PublicView(ctx, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, view.Wishlists)
	view, err = f.svc.PublicView(ctx, f.alice.ID, &f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Wishlists)

	_, err = f.svc.Share(ctx, f.alice.ID, wishlist.ID, []primitive.ObjectID{f.bob.ID})
	require.NoError(t, err)

	view, err = f.svc.PublicView(ctx, f.alice.ID, &f.bob.ID)
	require.NoError(t, err)
	require.Len(t, view.Wishlists, 1)
	assert.True(t, view.Wishlists[0].IsShared)

	// Still invisible to everyone else.
	view, err = f.svc.PublicView(ctx, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, view.Wishlists)
}

func TestShareUnshare(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, _ := f.listWithItem(t, models.VisibilityPrivate)

	_, err := f.svc.Share(ctx, f.alice.ID, wishlist.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "Friend IDs array required", apperrors.PublicMessage(err))

	_, err = f.svc.Unshare(ctx, f.alice.ID, wishlist.ID, f.bob.ID)
	require.Error(t, err)
	assert.Equal(t, "Wishlist not shared with anyone", apperrors.PublicMessage(err))

	sharedWith, err := f.svc.Share(ctx, f.alice.ID, wishlist.ID, []primitive.ObjectID{f.bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{f.bob.ID}, sharedWith)

	// Sharing twice does not duplicate.
	sharedWith, err = f.svc.Share(ctx, f.alice.ID, wishlist.ID, []primitive.ObjectID{f.bob.ID})
	require.NoError(t, err)
	assert.Len(t, sharedWith, 1)

	users, err := f.svc.GetSharedWith(ctx, f.alice.ID, wishlist.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)

	sharedWith, err = f.svc.Unshare(ctx, f.alice.ID, wishlist.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, sharedWith)
}

func TestUpdateWishlistVisibility(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()
	wishlist, _ := f.listWithItem(t, models.VisibilityPublic)

	private := models.VisibilityPrivate
	updated, err := f.svc.UpdateWishlist(ctx, f.alice.ID, wishlist.ID, services.WishlistUpdate{Visibility: &private})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityPrivate, updated.Visibility)

	view, err := f.svc.PublicView(ctx, f.alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, view.Wishlists)
}
