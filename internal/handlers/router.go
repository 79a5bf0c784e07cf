package handlers

import (
	"net/http"

	"github.com/Adilet2201/giftcircle/internal/config"
	"github.com/Adilet2201/giftcircle/pkg/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint. Fixed paths are registered before
// their parameterized siblings so mux matches them first.
func NewRouter(cfg *config.Config, userHandler *UserHandler, contactHandler *ContactHandler, friendHandler *FriendHandler, wishlistHandler *WishlistHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	auth := middleware.AuthMiddleware(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JWTSecret)

	// Accounts.
	router.HandleFunc("/users", userHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/users/login", userHandler.LoginHandler).Methods(http.MethodPost)

	profile := router.PathPrefix("/users/profile").Subrouter()
	profile.Use(auth)
	profile.HandleFunc("", userHandler.GetProfileHandler).Methods(http.MethodGet)
	profile.HandleFunc("", userHandler.UpdateProfileHandler).Methods(http.MethodPut)

	// Contacts and gift ideas.
	contacts := router.PathPrefix("/contacts").Subrouter()
	contacts.Use(auth)
	contacts.HandleFunc("", contactHandler.GetContactsHandler).Methods(http.MethodGet)
	contacts.HandleFunc("", contactHandler.AddContactHandler).Methods(http.MethodPost)
	contacts.HandleFunc("/link-suggestions", contactHandler.LinkSuggestionsHandler).Methods(http.MethodGet)
	contacts.HandleFunc("/{id}", contactHandler.GetContactHandler).Methods(http.MethodGet)
	contacts.HandleFunc("/{id}", contactHandler.UpdateContactHandler).Methods(http.MethodPut)
	contacts.HandleFunc("/{id}", contactHandler.DeleteContactHandler).Methods(http.MethodDelete)
	contacts.HandleFunc("/{id}/gift-ideas", contactHandler.AddGiftIdeaHandler).Methods(http.MethodPost)
	contacts.HandleFunc("/{contactId}/gift-ideas/{giftIdeaId}", contactHandler.TogglePurchasedHandler).Methods(http.MethodPut)
	contacts.HandleFunc("/{contactId}/gift-ideas/{giftIdeaId}", contactHandler.DeleteGiftIdeaHandler).Methods(http.MethodDelete)
	contacts.HandleFunc("/{contactId}/gift-ideas/{giftIdeaId}/update", contactHandler.UpdateGiftIdeaHandler).Methods(http.MethodPut)
	contacts.HandleFunc("/{contactId}/link/{friendId}", contactHandler.LinkContactHandler).Methods(http.MethodPost)
	contacts.HandleFunc("/{contactId}/link", contactHandler.UnlinkContactHandler).Methods(http.MethodDelete)

	// Friendships.
	friends := router.PathPrefix("/friends").Subrouter()
	friends.Use(auth)
	friends.HandleFunc("", friendHandler.GetFriendsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/search", friendHandler.SearchHandler).Methods(http.MethodGet)
	friends.HandleFunc("/requests", friendHandler.GetRequestsHandler).Methods(http.MethodGet)
	friends.HandleFunc("/request", friendHandler.SendRequestHandler).Methods(http.MethodPost)
	friends.HandleFunc("/{id}/accept", friendHandler.AcceptRequestHandler).Methods(http.MethodPut)
	friends.HandleFunc("/{id}/decline", friendHandler.DeclineRequestHandler).Methods(http.MethodPut)
	friends.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods(http.MethodDelete)
	friends.HandleFunc("/{id}/groups", friendHandler.AddToGroupsHandler).Methods(http.MethodPost)
	friends.HandleFunc("/{id}/groups/{groupName}", friendHandler.RemoveFromGroupHandler).Methods(http.MethodDelete)
	friends.HandleFunc("/{friendId}/contact-data", contactHandler.ContactDataHandler).Methods(http.MethodGet)

	// Public wishlist surfaces: no mandatory token, but an attached one
	// widens visibility / tags the reservation.
	router.Handle("/wishlists/public/{userId}",
		optionalAuth(http.HandlerFunc(wishlistHandler.PublicViewHandler))).Methods(http.MethodGet)
	router.Handle("/wishlists/{wishlistId}/items/{itemId}/reserve",
		optionalAuth(http.HandlerFunc(wishlistHandler.ReserveItemHandler))).Methods(http.MethodPut)

	// Wishlists.
	wishlists := router.PathPrefix("/wishlists").Subrouter()
	wishlists.Use(auth)
	wishlists.HandleFunc("", wishlistHandler.GetWishlistsHandler).Methods(http.MethodGet)
	wishlists.HandleFunc("", wishlistHandler.CreateWishlistHandler).Methods(http.MethodPost)
	wishlists.HandleFunc("/{id}", wishlistHandler.UpdateWishlistHandler).Methods(http.MethodPut)
	wishlists.HandleFunc("/{id}", wishlistHandler.DeleteWishlistHandler).Methods(http.MethodDelete)
	wishlists.HandleFunc("/{id}/items", wishlistHandler.GetItemsHandler).Methods(http.MethodGet)
	wishlists.HandleFunc("/{id}/items", wishlistHandler.AddItemHandler).Methods(http.MethodPost)
	wishlists.HandleFunc("/{wishlistId}/items/{itemId}", wishlistHandler.UpdateItemHandler).Methods(http.MethodPut)
	wishlists.HandleFunc("/{wishlistId}/items/{itemId}", wishlistHandler.DeleteItemHandler).Methods(http.MethodDelete)
	wishlists.HandleFunc("/{wishlistId}/items/{itemId}/reserve", wishlistHandler.UnreserveItemHandler).Methods(http.MethodDelete)
	wishlists.HandleFunc("/{wishlistId}/items/{itemId}/bought", wishlistHandler.MarkBoughtHandler).Methods(http.MethodPut)
	wishlists.HandleFunc("/{id}/share", wishlistHandler.GetSharedWithHandler).Methods(http.MethodGet)
	wishlists.HandleFunc("/{id}/share", wishlistHandler.ShareHandler).Methods(http.MethodPost)
	wishlists.HandleFunc("/{id}/share/{friendId}", wishlistHandler.UnshareHandler).Methods(http.MethodDelete)

	return router
}
