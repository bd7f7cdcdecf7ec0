package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tasleem/internal/models"
	"tasleem/internal/redisclient"
	"tasleem/internal/store"
	"tasleem/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	passwordHashCost  = 12
)

// SessionStore issues and resolves opaque session tokens
type SessionStore interface {
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	SessionUser(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService handles registration, login and sessions
type AuthService struct {
	store      *store.Store
	sessions   SessionStore
	sessionTTL time.Duration
	hashCost   int
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, sessions SessionStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		store:      store,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		hashCost:   passwordHashCost,
		logger:     util.GetLogger(),
	}
}

// SessionTTL returns the lifetime of issued sessions
func (as *AuthService) SessionTTL() time.Duration {
	return as.sessionTTL
}

// RegisterRequest represents a merchant sign-up
type RegisterRequest struct {
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	StoreName string `json:"storeName"`
	Address   string `json:"address"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ProfileRequest carries the editable profile fields
type ProfileRequest struct {
	StoreName *string `json:"storeName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Register creates a merchant account with a zero ledger and logs it in
func (as *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, string, error) {
	phone := strings.TrimSpace(req.Phone)
	storeName := strings.TrimSpace(req.StoreName)
	if phone == "" || req.Password == "" || storeName == "" {
		return nil, "", newError(KindValidation, MsgRegistrationInvalid)
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", newError(KindValidation, MsgPasswordTooShort)
	}

	if _, err := as.store.GetUserByPhone(ctx, phone); err == nil {
		return nil, "", newError(KindValidation, MsgPhoneTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", Unexpected(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), as.hashCost)
	if err != nil {
		return nil, "", Unexpected(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Phone:        phone,
		PasswordHash: string(hash),
		StoreName:    storeName,
		Address:      strings.TrimSpace(req.Address),
		Role:         models.RoleMerchant,
		MerchantCode: newMerchantCode(),
	}
	if err := as.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", newError(KindValidation, MsgPhoneTaken)
		}
		return nil, "", Unexpected(err)
	}

	as.logger.Info("Merchant registered",
		zap.Int64("user_id", user.ID),
		zap.String("merchant_code", user.MerchantCode))

	token, err := as.sessions.CreateSession(ctx, user.ID, as.sessionTTL)
	if err != nil {
		return nil, "", Unexpected(err)
	}
	return user, token, nil
}

// newMerchantCode returns the public merchant identifier, TSL- followed by
// the current time in upper-case base 36
func newMerchantCode() string {
	return "TSL-" + strings.ToUpper(strconv.FormatInt(time.Now().UnixNano(), 36))
}

// Login verifies credentials and opens a session
func (as *AuthService) Login(ctx context.Context, req *LoginRequest) (*models.User, string, error) {
	user, err := as.store.GetUserByPhone(ctx, strings.TrimSpace(req.Phone))
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", newError(KindAuthentication, MsgBadCredentials)
	}
	if err != nil {
		return nil, "", Unexpected(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		as.logger.Info("Login failed", zap.Int64("user_id", user.ID))
		return nil, "", newError(KindAuthentication, MsgBadCredentials)
	}

	token, err := as.sessions.CreateSession(ctx, user.ID, as.sessionTTL)
	if err != nil {
		return nil, "", Unexpected(err)
	}
	return user, token, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (as *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := as.sessions.DeleteSession(ctx, token); err != nil {
		return Unexpected(err)
	}
	return nil
}

// Authenticate resolves a session token to a freshly loaded user, so
// balances are always current.
func (as *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, newError(KindAuthentication, MsgUnauthorized)
	}

	userID, err := as.sessions.SessionUser(ctx, token)
	if errors.Is(err, redisclient.ErrSessionNotFound) {
		return nil, newError(KindAuthentication, MsgUnauthorized)
	}
	if err != nil {
		return nil, Unexpected(err)
	}

	user, err := as.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindAuthentication, MsgUnauthorized)
	}
	if err != nil {
		return nil, Unexpected(err)
	}
	return user, nil
}

// UpdateProfile changes the store name, phone or address. Blank fields are
// ignored. Balances and role cannot be changed here.
func (as *AuthService) UpdateProfile(ctx context.Context, user *models.User, req *ProfileRequest) (*models.User, error) {
	storeName := pick(req.StoreName, user.StoreName)
	phone := pick(req.Phone, user.Phone)
	address := pick(req.Address, user.Address)

	updated, err := as.store.UpdateProfile(ctx, user.ID, storeName, phone, address)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, newError(KindValidation, MsgPhoneTaken)
	case errors.Is(err, store.ErrNotFound):
		return nil, newError(KindNotFound, MsgUserNotFound)
	case err != nil:
		return nil, Unexpected(err)
	}
	return updated, nil
}

// pick returns the trimmed update value, or current when the update is absent or blank
func pick(update *string, current string) string {
	if update == nil {
		return current
	}
	if v := strings.TrimSpace(*update); v != "" {
		return v
	}
	return current
}

// ListUsers lists every account
func (as *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := as.store.ListUsers(ctx)
	if err != nil {
		return nil, Unexpected(err)
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap admin account if its phone is not yet registered
func (as *AuthService) EnsureAdmin(ctx context.Context, phone, password string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil
	}

	if _, err := as.store.GetUserByPhone(ctx, phone); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Phone:        phone,
		PasswordHash: string(hash),
		StoreName:    "Tasleem Admin",
		Role:         models.RoleAdmin,
		MerchantCode: newMerchantCode(),
	}
	if err := as.store.CreateUser(ctx, admin); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	as.logger.Info("Admin account created", zap.Int64("user_id", admin.ID))
	return nil
}
