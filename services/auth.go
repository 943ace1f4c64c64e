package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tour-booking-server/models"
	"tour-booking-server/repository"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("%w: account is deactivated", ErrUnauthorized)
	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", ErrConflict)
)

type Credentials struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Identity is the authenticated principal carried in session tokens.
type Identity struct {
	UserID   uint        `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*Identity, error)
}

type RegisterInput struct {
	Username string `form:"username" validate:"required,max=150"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

type AuthService struct {
	store repository.Store
	settings
}

func NewAuthService(store repository.Store, opts ...Option) *AuthService {
	return &AuthService{store: store, settings: newSettings(opts)}
}

func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := validateStruct(creds); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByUsername(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.checkActive(ctx, user.ID); err != nil {
		return nil, err
	}
	return identityOf(user), nil
}

// IdentityFor reloads the identity of an existing, active user.
func (s *AuthService) IdentityFor(ctx context.Context, userID uint) (*Identity, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := s.checkActive(ctx, user.ID); err != nil {
		return nil, err
	}
	return identityOf(user), nil
}

// Register creates an account with an active profile.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.register(ctx, in, models.RoleUser)
}

// EnsureAdmin creates the administrator account unless the username exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) error {
	_, err := s.register(ctx, in, models.RoleAdmin)
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}

func (s *AuthService) register(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: in.Username, Email: in.Email, Password: string(hash), Role: role}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		_, err := tx.Users().GetByUsername(ctx, in.Username)
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.Users().CreateProfile(ctx, &models.UserProfile{
			UserID:          user.ID,
			IsActive:        true,
			ActivationToken: uuid.NewString(),
			Username:        user.Username,
			Email:           user.Email,
		})
	})
	if err != nil {
		return nil, err
	}

	golog.Infof("registered %s account %q (id %d)", role, user.Username, user.ID)
	return user, nil
}

// Deactivate marks the user's profile inactive; later logins are refused.
func (s *AuthService) Deactivate(ctx context.Context, userID uint) error {
	profile, err := s.store.Users().GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	profile.IsActive = false
	if err := s.store.Users().SaveProfile(ctx, profile); err != nil {
		return err
	}
	golog.Infof("user %d deactivated", userID)
	return nil
}

// checkActive treats a missing profile as active.
func (s *AuthService) checkActive(ctx context.Context, userID uint) error {
	profile, err := s.store.Users().GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !profile.IsActive {
		return ErrAccountInactive
	}
	return nil
}

func identityOf(u *models.User) *Identity {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	return &Identity{UserID: u.ID, Username: u.Username, Role: role}
}
