package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Adilet2201/giftcircle/internal/config"
	"github.com/Adilet2201/giftcircle/internal/handlers"
	"github.com/Adilet2201/giftcircle/internal/services"
	"github.com/Adilet2201/giftcircle/internal/storetest"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
	}
	store := storetest.New()

	userService := services.NewUserService(store)
	contactService := services.NewContactService(store, store, store)
	wishlistService := services.NewWishlistService(store, store)
	friendService := services.NewFriendService(store, store)

	return handlers.NewRouter(cfg,
		handlers.NewUserHandler(userService, cfg),
		handlers.NewContactHandler(contactService),
		handlers.NewFriendHandler(friendService),
		handlers.NewWishlistHandler(wishlistService),
	)
}

func doRequest(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}

func message(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, recorder, &body)
	return body.Message
}

type authedUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func register(t *testing.T, router *mux.Router, name, email string) authedUser {
	t.Helper()
	recorder := doRequest(t, router, http.MethodPost, "/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var user authedUser
	decode(t, recorder, &user)
	require.NotEmpty(t, user.Token)
	return user
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t)

	alice := register(t, router, "Alice", "alice@example.com")
	assert.Equal(t, "Alice", alice.Name)

	recorder := doRequest(t, router, http.MethodPost, "/users", "", map[string]string{
		"name":     "Impostor",
		"email":    "alice@example.com",
		"password": "other456",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "User already exists", message(t, recorder))

	recorder = doRequest(t, router, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid email or password", message(t, recorder))

	recorder = doRequest(t, router, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/users/profile", alice.Token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var profile struct {
		Email string `json:"email"`
	}
	decode(t, recorder, &profile)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	recorder := doRequest(t, router, http.MethodGet, "/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Not authorized, no token", message(t, recorder))

	recorder = doRequest(t, router, http.MethodGet, "/contacts", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Not authorized, token failed", message(t, recorder))
}

func TestWishlistReservationFlow(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")
	bob := register(t, router, "Bob", "bob@example.com")

	recorder := doRequest(t, router, http.MethodPost, "/wishlists", alice.Token, map[string]string{
		"name": "Birthday",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var wishlist struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &wishlist)

	recorder = doRequest(t, router, http.MethodPost, fmt.Sprintf("/wishlists/%s/items", wishlist.ID), alice.Token, map[string]interface{}{
		"name":  "Book",
		"price": 19.99,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var item struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &item)

	// Bob sees the item on Alice's public view.
	recorder = doRequest(t, router, http.MethodGet, "/wishlists/public/"+alice.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var view struct {
		UserName  string `json:"userName"`
		Wishlists []struct {
			Items []struct {
				ID string `json:"_id"`
			} `json:"items"`
		} `json:"wishlists"`
	}
	decode(t, recorder, &view)
	assert.Equal(t, "Alice", view.UserName)
	require.Len(t, view.Wishlists, 1)
	require.Len(t, view.Wishlists[0].Items, 1)

	// Bob reserves it.
	reservePath := fmt.Sprintf("/wishlists/%s/items/%s/reserve", wishlist.ID, item.ID)
	recorder = doRequest(t, router, http.MethodPut, reservePath, bob.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "Item reserved successfully", message(t, recorder))

	// Reserved items disappear from the public view.
	recorder = doRequest(t, router, http.MethodGet, "/wishlists/public/"+alice.ID, bob.Token, nil)
	decode(t, recorder, &view)
	require.Len(t, view.Wishlists, 1)
	assert.Empty(t, view.Wishlists[0].Items)

	// A different identity cannot take it over.
	carol := register(t, router, "Carol", "carol@example.com")
	recorder = doRequest(t, router, http.MethodPut, reservePath, carol.Token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Item already reserved by someone else", message(t, recorder))

	// The owner releases the reservation.
	recorder = doRequest(t, router, http.MethodDelete, reservePath, alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/wishlists/public/"+alice.ID, "", nil)
	decode(t, recorder, &view)
	require.Len(t, view.Wishlists, 1)
	assert.Len(t, view.Wishlists[0].Items, 1)
}

func TestAnonymousReserve(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")

	recorder := doRequest(t, router, http.MethodPost, "/wishlists", alice.Token, map[string]string{"name": "Birthday"})
	var wishlist struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &wishlist)

	recorder = doRequest(t, router, http.MethodPost, fmt.Sprintf("/wishlists/%s/items", wishlist.ID), alice.Token, map[string]string{"name": "Book"})
	var item struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &item)

	// No token at all: the reservation goes through anonymously.
	recorder = doRequest(t, router, http.MethodPut, fmt.Sprintf("/wishlists/%s/items/%s/reserve", wishlist.ID, item.ID), "", nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var body struct {
		Item struct {
			Reserved   bool    `json:"reserved"`
			ReservedBy *string `json:"reservedBy"`
		} `json:"item"`
	}
	decode(t, recorder, &body)
	assert.True(t, body.Item.Reserved)
	assert.Nil(t, body.Item.ReservedBy)
}

func TestFriendsAndContactDataFlow(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")
	bob := register(t, router, "Bob", "bob@example.com")

	recorder := doRequest(t, router, http.MethodPost, "/friends/request", alice.Token, map[string]string{
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var sent struct {
		Message string `json:"message"`
		Request struct {
			ID string `json:"_id"`
		} `json:"request"`
	}
	decode(t, recorder, &sent)
	assert.Equal(t, "Friend request sent", sent.Message)

	// Alice cannot accept her own outgoing request.
	recorder = doRequest(t, router, http.MethodPut, "/friends/"+sent.Request.ID+"/accept", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doRequest(t, router, http.MethodPut, "/friends/"+sent.Request.ID+"/accept", bob.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/friends", alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var friends []struct {
		Name string `json:"name"`
	}
	decode(t, recorder, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, "Bob", friends[0].Name)

	// No linked contact yet: the endpoint renders JSON null.
	recorder = doRequest(t, router, http.MethodGet, "/friends/"+bob.ID+"/contact-data", alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "null", strings.TrimSpace(recorder.Body.String()))

	recorder = doRequest(t, router, http.MethodPost, "/contacts", alice.Token, map[string]interface{}{
		"name":      "Bobby",
		"email":     "bob@example.com",
		"interests": []string{"chess"},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var contact struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &contact)

	// The matching contact shows up as a link suggestion.
	recorder = doRequest(t, router, http.MethodGet, "/contacts/link-suggestions", alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var suggestions []struct {
		MatchReason string `json:"matchReason"`
	}
	decode(t, recorder, &suggestions)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "email", suggestions[0].MatchReason)

	recorder = doRequest(t, router, http.MethodPost, "/contacts/"+contact.ID+"/link/"+bob.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doRequest(t, router, http.MethodGet, "/friends/"+bob.ID+"/contact-data", alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var data struct {
		Interests []string `json:"interests"`
		GiftIdeas []struct {
			Name string `json:"name"`
		} `json:"giftIdeas"`
	}
	decode(t, recorder, &data)
	assert.Equal(t, []string{"chess"}, data.Interests)
	assert.NotNil(t, data.GiftIdeas)

	// Bob has no contact for Alice, so his side is null, not an error.
	recorder = doRequest(t, router, http.MethodGet, "/friends/"+alice.ID+"/contact-data", bob.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "null", strings.TrimSpace(recorder.Body.String()))
}

func TestContactDataRequiresFriendship(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")
	bob := register(t, router, "Bob", "bob@example.com")

	recorder := doRequest(t, router, http.MethodGet, "/friends/"+bob.ID+"/contact-data", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Not friends with this user", message(t, recorder))
}

func TestGiftIdeaRoutes(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")

	recorder := doRequest(t, router, http.MethodPost, "/contacts", alice.Token, map[string]string{"name": "Mom"})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var contact struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &contact)

	recorder = doRequest(t, router, http.MethodPost, "/contacts/"+contact.ID+"/gift-ideas", alice.Token, map[string]string{
		"name":  "Roses",
		"notes": "red ones",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var idea struct {
		ID        string `json:"_id"`
		Purchased bool   `json:"purchased"`
	}
	decode(t, recorder, &idea)
	assert.False(t, idea.Purchased)

	ideaPath := "/contacts/" + contact.ID + "/gift-ideas/" + idea.ID

	// Bare PUT toggles the purchased flag.
	recorder = doRequest(t, router, http.MethodPut, ideaPath, alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	decode(t, recorder, &idea)
	assert.True(t, idea.Purchased)

	recorder = doRequest(t, router, http.MethodPut, ideaPath+"/update", alice.Token, map[string]string{
		"notes": "white ones",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	var edited struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	decode(t, recorder, &edited)
	assert.Equal(t, "Roses", edited.Name)
	assert.Equal(t, "white ones", edited.Notes)

	recorder = doRequest(t, router, http.MethodDelete, ideaPath, alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Gift idea deleted", message(t, recorder))

	recorder = doRequest(t, router, http.MethodDelete, ideaPath, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Gift idea not found", message(t, recorder))
}

func TestSharedWishlistVisibility(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")
	bob := register(t, router, "Bob", "bob@example.com")
	carol := register(t, router, "Carol", "carol@example.com")

	recorder := doRequest(t, router, http.MethodPost, "/wishlists", alice.Token, map[string]string{
		"name":       "Secret plans",
		"visibility": "private",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var wishlist struct {
		ID string `json:"_id"`
	}
	decode(t, recorder, &wishlist)

	recorder = doRequest(t, router, http.MethodPost, "/wishlists/"+wishlist.ID+"/share", alice.Token, map[string]interface{}{
		"friendIds": []string{bob.ID},
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var view struct {
		Wishlists []struct {
			IsShared bool `json:"isShared"`
		} `json:"wishlists"`
	}

	recorder = doRequest(t, router, http.MethodGet, "/wishlists/public/"+alice.ID, bob.Token, nil)
	decode(t, recorder, &view)
	require.Len(t, view.Wishlists, 1)
	assert.True(t, view.Wishlists[0].IsShared)

	recorder = doRequest(t, router, http.MethodGet, "/wishlists/public/"+alice.ID, carol.Token, nil)
	decode(t, recorder, &view)
	assert.Empty(t, view.Wishlists)

	recorder = doRequest(t, router, http.MethodGet, "/wishlists/"+wishlist.ID+"/share", alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var shared []struct {
		Name string `json:"name"`
	}
	decode(t, recorder, &shared)
	require.Len(t, shared, 1)
	assert.Equal(t, "Bob", shared[0].Name)

	recorder = doRequest(t, router, http.MethodDelete, "/wishlists/"+wishlist.ID+"/share/"+bob.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, router, http.MethodGet, "/wishlists/public/"+alice.ID, bob.Token, nil)
	decode(t, recorder, &view)
	assert.Empty(t, view.Wishlists)
}

func TestSearchRouteBeforeID(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "Alice", "alice@example.com")
	register(t, router, "Bob", "bob@example.com")

	recorder := doRequest(t, router, http.MethodGet, "/friends/search?email=bob", alice.Token, nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var results []struct {
		Email string `json:"email"`
	}
	decode(t, recorder, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "bob@example.com", results[0].Email)

	recorder = doRequest(t, router, http.MethodGet, "/friends/search", alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Search query required", message(t, recorder))
}
