package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	internal "github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/core/common/validation"
	"github.com/stonelib/library-management/internal/core/datamodel"
)

// Service authenticates credentials, mints and verifies bearer tokens and
// registers reader accounts.
type Service struct {
	users   UserRepository
	creator UserCreator
	tokens  TokenStore
	mailer  Mailer
	db      *gorm.DB

	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewService(users UserRepository, creator UserCreator, tokens TokenStore, mailer Mailer, db *gorm.DB, cfg internal.SecurityConfig, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		creator:  creator,
		tokens:   tokens,
		mailer:   mailer,
		db:       db,
		secret:   []byte(cfg.TokenSecret),
		tokenTTL: cfg.TokenDuration,
		logger:   logger,
	}
}

// Authenticate verifies the credentials and returns a signed token
// embedding the user's identity and current role ids.
func (s *Service) Authenticate(dto LoginDTO) (string, error) {
	if dto.Email == "" || dto.Password == "" {
		return "", internal.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmailWithRoles(dto.Email)
	if err != nil {
		return "", internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return "", internal.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		s.logger.Error("token generation failed", "error", err, "user_id", user.ID)
		return "", internal.NewInternalError("could not issue token", err)
	}

	return token, nil
}

// Register creates a reader account with a generated password and mails
// the credentials to the new user.
func (s *Service) Register(dto RegisterDTO) (*datamodel.User, error) {
	v := validation.New(s.db)
	v.Field("email", dto.Email).
		Required("email address is required").
		Email("please enter a valid email address").
		Unique(&datamodel.User{}, "email", "this email address is already in use")
	v.Field("firstname", dto.Firstname).
		Required("firstname is required").
		Length(1, 50, "firstname must be between 1 and 50 characters")
	v.Field("lastname", dto.Lastname).
		Required("lastname is required").
		Length(1, 50, "lastname must be between 1 and 50 characters")
	if err := v.Error(); err != nil {
		return nil, err
	}

	password, err := GeneratePassword()
	if err != nil {
		return nil, internal.NewInternalError("could not generate password", err)
	}

	user := &datamodel.User{
		Firstname: dto.Firstname,
		Lastname:  dto.Lastname,
		Email:     dto.Email,
		Password:  password,
	}

	created, err := s.creator.Create(user, []int64{datamodel.RoleReader})
	if err != nil {
		s.logger.Error("registration failed", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("could not register user", err)
	}

	go s.sendCredentials(dto.Email, password)

	return created, nil
}

// Verify checks signature, expiry and the revocation deny-list, and
// returns the token claims.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if s.tokens.IsRevoked(claims.RegisteredClaims.ID) {
		return nil, internal.ErrTokenRevoked
	}

	return claims, nil
}

// Revoke marks the token as inactive for the rest of its lifetime. It is
// not re-activatable.
func (s *Service) Revoke(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}

	until := time.Now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	s.tokens.Revoke(claims.RegisteredClaims.ID, until)

	return nil
}

func (s *Service) generateToken(user *datamodel.User) (string, error) {
	roleIDs := make([]int64, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleIDs = append(roleIDs, role.ID)
	}

	now := time.Now()
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		RoleIDs:   roleIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}

func (s *Service) sendCredentials(email, password string) {
	body := fmt.Sprintf("Your login credentials are:\nemail: %s\npassword: %s", email, password)
	if err := s.mailer.Send(email, "Welcome to Stone Library", body); err != nil {
		s.logger.Error("failed to send credentials email", "error", err, "email", email)
	}
}

// Principal builds the request principal from verified claims.
func (c *Claims) Principal() *internal.Principal {
	return &internal.Principal{
		ID:        c.UserID,
		Email:     c.Email,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		RoleIDs:   c.RoleIDs,
	}
}
