// Package auth mirrors authentication state into the users collection and
// guards routes with signed tokens and role lookups.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quizdeck/internal/docstore"
	"quizdeck/internal/domain"
)

const collectionUsers = "users"

// Claims carried inside access tokens.
type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service owns user documents and token issuing.
type Service struct {
	store    docstore.Store
	hmac     []byte
	tokenTTL time.Duration
	clock    func() time.Time
}

func NewService(store docstore.Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: store, hmac: []byte(secret), tokenTTL: tokenTTL, clock: time.Now}
}

// Register creates a user document with role user and a bcrypt password
// hash. The returned user never carries the hash.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (domain.User, error) {
	if email == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	existing, err := s.store.Query(ctx, collectionUsers,
		docstore.Where{Field: "email", Op: docstore.OpEqual, Value: email},
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if len(existing) > 0 {
		return domain.User{}, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		DisplayName:  displayName,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: string(hash),
	}
	data, err := docstore.Encode(user)
	if err != nil {
		return domain.User{}, err
	}
	if _, err := s.store.Set(ctx, collectionUsers, user.ID, data); err != nil {
		return domain.User{}, fmt.Errorf("store user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// Login verifies the password and returns a signed token plus the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	docs, err := s.store.Query(ctx, collectionUsers,
		docstore.Where{Field: "email", Op: docstore.OpEqual, Value: email},
	)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if len(docs) == 0 {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	var user domain.User
	if err := docstore.Decode(docs[0], &user); err != nil {
		return "", domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", domain.User{}, err
	}
	user.PasswordHash = ""
	return token, user, nil
}

// IssueToken signs an HS256 access token for the user.
func (s *Service) IssueToken(user domain.User) (string, error) {
	now := s.clock()
	claims := &Claims{
		Sub:  user.ID,
		Role: user.Role,
		Name: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quizdeck",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.hmac)
}

// Parse validates a token and returns its claims.
func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

// User fetches a user document, hash stripped.
func (s *Service) User(ctx context.Context, id string) (domain.User, error) {
	doc, err := s.store.Get(ctx, collectionUsers, id)
	if err == docstore.ErrNotFound {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	var user domain.User
	if err := docstore.Decode(doc, &user); err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// IsAdmin re-reads the user's role from the store; token claims can go
// stale after a promotion or demotion.
func (s *Service) IsAdmin(ctx context.Context, id string) bool {
	user, err := s.User(ctx, id)
	if err != nil {
		return false
	}
	return user.Role == domain.RoleAdmin
}

// Promote grants admin to userID. Only admins may promote.
func (s *Service) Promote(ctx context.Context, actorID, userID string) error {
	if !s.IsAdmin(ctx, actorID) {
		return domain.ErrForbidden
	}
	return s.setRole(ctx, userID, domain.RoleAdmin)
}

// Demote revokes admin from userID. Admins cannot demote themselves.
func (s *Service) Demote(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return domain.ErrSelfDemotion
	}
	if !s.IsAdmin(ctx, actorID) {
		return domain.ErrForbidden
	}
	return s.setRole(ctx, userID, domain.RoleUser)
}

// Admins lists all admin users. Only admins may list.
func (s *Service) Admins(ctx context.Context, actorID string) ([]domain.User, error) {
	if !s.IsAdmin(ctx, actorID) {
		return nil, domain.ErrForbidden
	}
	docs, err := s.store.Query(ctx, collectionUsers,
		docstore.Where{Field: "role", Op: docstore.OpEqual, Value: domain.RoleAdmin},
	)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	users, err := docstore.DecodeAll[domain.User](docs)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *Service) setRole(ctx context.Context, userID, role string) error {
	err := s.store.Update(ctx, collectionUsers, userID, map[string]any{"role": role})
	if err == docstore.ErrNotFound {
		return domain.ErrUserNotFound
	}
	return err
}
