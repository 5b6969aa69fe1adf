// Package service implements the account and authentication flows on top
// of the user and key-record stores.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/user-account-service/internal/config"
	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/queue"
	"github.com/iliyamo/user-account-service/internal/repository"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// Typed failures returned by the auth flows. Handlers translate these to
// HTTP statuses; anything else is an unexpected fault and maps to 500.
var (
	ErrDuplicateEmail     = errors.New("email has already been used")
	ErrUserCreation       = errors.New("cannot create user")
	ErrKeyStore           = errors.New("key store error")
	ErrTokenCreation      = errors.New("cannot create tokens")
	ErrInvalidCredentials = errors.New("email or password incorrect")
	ErrUserNotFound       = errors.New("user not found")

	// ErrTokenInvalid aliases the codec error so both layers report an
	// unverifiable token identically.
	ErrTokenInvalid = utils.ErrTokenInvalid
)

// UserStore is the slice of the user repository the service depends on.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	UpdateByID(ctx context.Context, id bson.ObjectID, patch bson.M) (*model.User, error)
	SetPassword(ctx context.Context, id bson.ObjectID, hash string) (*model.User, error)
}

// KeyStore persists per-user signing secrets. Save must leave exactly one
// active record for the user.
type KeyStore interface {
	Save(ctx context.Context, userID bson.ObjectID, publicKey, privateKey string) error
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*model.KeyRecord, error)
	DeleteByUserID(ctx context.Context, userID bson.ObjectID) error
}

// Publisher sends domain events to the message broker.
type Publisher interface {
	PublishUserRegistered(ctx context.Context, event queue.UserRegisteredEvent) error
}

// TokenPair is the access/refresh pair returned by register and login.
// Each token is signed with its own secret from the user's key record.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserSummary is the user view embedded in auth responses.
type UserSummary struct {
	Email string `json:"email"`
}

// AuthResult is the response payload of register and login.
type AuthResult struct {
	User   UserSummary `json:"user"`
	Tokens TokenPair   `json:"tokens"`
}

// ProfilePatch carries a partial profile update. Nil fields are left
// untouched.
type ProfilePatch struct {
	FullName *string `json:"fullName"`
	Mobile   *string `json:"mobile"`
	Title    *string `json:"title"`
	Memo     *string `json:"memo"`
}

// AuthService orchestrates registration, login, logout and the
// create-password flow. Stores are injected so tests can run against
// in-memory fakes.
type AuthService struct {
	users     UserStore
	keys      KeyStore
	publisher Publisher // nil disables registration events

	tokenTTL             time.Duration
	createPasswordSecret string
	createPasswordTTL    time.Duration
	bcryptCost           int
}

func NewAuthService(users UserStore, keys KeyStore, pub Publisher, cfg config.Config) *AuthService {
	return &AuthService{
		users:                users,
		keys:                 keys,
		publisher:            pub,
		tokenTTL:             time.Duration(cfg.TokenTTLMin) * time.Minute,
		createPasswordSecret: cfg.CreatePasswordSecret,
		createPasswordTTL:    time.Duration(cfg.CreatePasswordTTLMin) * time.Minute,
		bcryptCost:           cfg.BcryptCost,
	}
}

// Register creates an UNVERIFIED user without a password, mints a one-time
// create-password secret, stores a fresh key record and returns a token
// pair signed with it. The user create and the key record write are two
// independent writes; there is no transaction spanning them.
func (s *AuthService) Register(ctx context.Context, email string) (*AuthResult, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := s.users.Create(ctx, &model.User{
		Email:                email,
		Status:               model.StatusUnverified,
		Role:                 model.RoleUser,
		CreatePasswordSecret: uuid.NewString(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// Lost the race between the existence check and the insert.
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrUserCreation
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, user)

	return &AuthResult{User: UserSummary{Email: user.Email}, Tokens: *tokens}, nil
}

// Login checks credentials and rotates the user's key record, issuing a
// fresh token pair. Unknown email, unset password and wrong password all
// return the same ErrInvalidCredentials so responses cannot be used to
// probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Password == "" || !utils.VerifyPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: UserSummary{Email: user.Email}, Tokens: *tokens}, nil
}

// Logout deletes the user's key record, which immediately invalidates
// every outstanding token signed with its secrets. Logging out with no
// active record is not an error.
func (s *AuthService) Logout(ctx context.Context, userID bson.ObjectID) error {
	return s.keys.DeleteByUserID(ctx, userID)
}

// issueTokens generates two independent HMAC secrets, persists them as the
// user's (only) key record and signs the token pair: access token with the
// first secret, refresh token with the second.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	publicKey, err := utils.RandomHex(64)
	if err != nil {
		return nil, ErrTokenCreation
	}
	privateKey, err := utils.RandomHex(64)
	if err != nil {
		return nil, ErrTokenCreation
	}

	if err := s.keys.Save(ctx, user.ID, publicKey, privateKey); err != nil {
		return nil, ErrKeyStore
	}

	payload := map[string]any{"userId": user.ID.Hex(), "email": user.Email}
	access, err := utils.GenerateToken(payload, publicKey, s.tokenTTL)
	if err != nil {
		return nil, ErrTokenCreation
	}
	refresh, err := utils.GenerateToken(payload, privateKey, s.tokenTTL)
	if err != nil {
		return nil, ErrTokenCreation
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// CreatePasswordToken builds the nested token mailed to a new user. The
// inner token binds the claim to the user's one-time secret, the outer to
// the process-wide secret; redeeming it therefore proves both were known.
// Pure function, no I/O.
func (s *AuthService) CreatePasswordToken(user *model.User) (string, error) {
	inner, err := utils.GenerateToken(map[string]any{"email": user.Email}, user.CreatePasswordSecret, s.createPasswordTTL)
	if err != nil {
		return "", ErrTokenCreation
	}
	outer, err := utils.GenerateToken(map[string]any{"token": inner}, s.createPasswordSecret, s.createPasswordTTL)
	if err != nil {
		return "", ErrTokenCreation
	}
	return outer, nil
}

// VerifyCreatePasswordToken unwraps and checks a create-password token:
// outer signature against the process secret, then the inner token against
// the secret stored on the user the inner claims name. Every failure mode
// returns the same ErrTokenInvalid.
func (s *AuthService) VerifyCreatePasswordToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := utils.VerifyToken(token, s.createPasswordSecret)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	inner, ok := claims["token"].(string)
	if !ok || inner == "" {
		return nil, ErrTokenInvalid
	}

	// The inner token can only be verified once the user's one-time
	// secret is loaded, so peek at the email claim unverified first.
	decoded, err := utils.DecodeToken(inner)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	email, ok := decoded["email"].(string)
	if !ok || email == "" {
		return nil, ErrTokenInvalid
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if user.CreatePasswordSecret == "" {
		return nil, ErrTokenInvalid
	}
	if _, err := utils.VerifyToken(inner, user.CreatePasswordSecret); err != nil {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// CreatePassword redeems a create-password token and stores the bcrypt
// hash of the chosen password. On success the one-time secret is removed
// and the user becomes VERIFIED; on any verification failure the user is
// left untouched.
func (s *AuthService) CreatePassword(ctx context.Context, token, password string) (*model.User, error) {
	user, err := s.VerifyCreatePasswordToken(ctx, token)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	updated, err := s.users.SetPassword(ctx, user.ID, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateUser applies a partial profile update and returns the updated
// user.
func (s *AuthService) UpdateUser(ctx context.Context, userID bson.ObjectID, patch ProfilePatch) (*model.User, error) {
	set := bson.M{}
	if patch.FullName != nil {
		set["fullName"] = *patch.FullName
	}
	if patch.Mobile != nil {
		set["mobile"] = *patch.Mobile
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Memo != nil {
		set["memo"] = *patch.Memo
	}
	if len(set) == 0 {
		return s.GetProfileUser(ctx, userID)
	}

	user, err := s.users.UpdateByID(ctx, userID, set)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfileUser loads a user by id.
func (s *AuthService) GetProfileUser(ctx context.Context, userID bson.ObjectID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// publishRegistered emits the user.registered event carrying the
// create-password token. Registration already succeeded at this point, so
// broker or signing failures are logged and dropped rather than failing
// the request.
func (s *AuthService) publishRegistered(ctx context.Context, user *model.User) {
	if s.publisher == nil {
		return
	}
	link, err := s.CreatePasswordToken(user)
	if err != nil {
		log.Printf("auth: create-password token for %s failed: %v", user.Email, err)
		return
	}
	ev := queue.UserRegisteredEvent{
		UserID:              user.ID.Hex(),
		Email:               user.Email,
		CreatePasswordToken: link,
		RegisteredAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishUserRegistered(ctx, ev); err != nil {
		log.Printf("auth: publish user.registered for %s failed: %v", user.Email, err)
	}
}
