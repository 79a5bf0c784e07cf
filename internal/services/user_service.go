package services

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Adilet2201/giftcircle/internal/models"
	"github.com/Adilet2201/giftcircle/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for accounts.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// ProfileUpdate carries the editable profile fields; empty strings mean
// "leave unchanged".
type ProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return nil, apperrors.Validation("Please provide name, email and password")
	}
	if !emailRegex.MatchString(email) {
		return nil, apperrors.Validation("Invalid email format")
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, email); existing != nil {
		logrus.WithField("email", email).Warn("Registration with existing email")
		return nil, apperrors.Conflict("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to hash password")
	}

	user := &models.User{
		Name:           name,
		Email:          email,
		HashedPassword: string(hashed),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User registered")
	return created, nil
}

// Authenticate verifies credentials. Both an unknown email and a wrong
// password produce the same message.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		logrus.WithField("email", email).Warn("Login with unknown email")
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Login with wrong password")
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return user, nil
}

// GetUser retrieves a user by hex id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID")
	}
	return s.repo.GetUserByID(ctx, objID)
}

// UpdateProfile patches name/email/password. A changed email is
// re-checked for uniqueness; a new password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.Validation("Invalid user ID")
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if name := strings.TrimSpace(update.Name); name != "" {
		updates["name"] = name
	}

	if email := strings.TrimSpace(update.Email); email != "" && email != user.Email {
		if !emailRegex.MatchString(email) {
			return nil, apperrors.Validation("Invalid email format")
		}
		if existing, _ := s.repo.GetUserByEmail(ctx, email); existing != nil {
			return nil, apperrors.Conflict("Email already in use")
		}
		updates["email"] = email
	}

	if update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to hash password")
		}
		updates["hashed_password"] = string(hashed)
	}

	if len(updates) == 0 {
		return user, nil
	}

	updated, err := s.repo.UpdateUser(ctx, objID, updates)
	if err != nil {
		return nil, err
	}

	logrus.WithField("userID", id).Info("Profile updated")
	return updated, nil
}
