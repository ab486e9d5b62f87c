package service

import (
	"context"
	"net/mail"

	"shortlink/pkg/auth"
	"shortlink/pkg/logging"
	"shortlink/pkg/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AccountService struct {
	storage storage.UserStorage
	tokens  *auth.Tokens
	logger  *logging.Logger
}

func NewAccountService(storage storage.UserStorage, tokens *auth.Tokens, logger *logging.Logger) *AccountService {
	return &AccountService{
		storage: storage,
		tokens:  tokens,
		logger:  logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateRegistration(req *RegisterRequest) error {
	if len(req.Username) < 3 {
		return ErrUsernameTooShort
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return ErrInvalidEmail
	}
	if len(req.Password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// Register creates an account and mints its first session token.
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*storage.User, string, error) {
	if err := validateRegistration(req); err != nil {
		return nil, "", err
	}

	existing, err := s.storage.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &storage.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.storage.Create(ctx, user); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.Mint(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, "", err
	}

	s.logger.LogAuthEvent(ctx, "register", user.ID.String(), true)
	return user, token, nil
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*storage.User, string, error) {
	user, err := s.storage.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		s.logger.LogAuthEvent(ctx, "login", req.Email, false)
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.LogAuthEvent(ctx, "login", user.ID.String(), false)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(auth.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, "", err
	}

	s.logger.LogAuthEvent(ctx, "login", user.ID.String(), true)
	return user, token, nil
}

// Me returns the account behind the caller's identity.
func (s *AccountService) Me(ctx context.Context) (*storage.User, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}

	user, err := s.storage.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
