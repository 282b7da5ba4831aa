package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nilp12200/truckproject/internal/trucking/repository"
)

// ErrInvalidCredentials is returned when username/password do not match an
// active account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService performs login and issues tokens. Passwords are compared as
// stored (legacy credential-equality scheme carried over from the source
// system).
type AuthService struct {
	users     *repository.UserRepository
	jwtSecret string
}

func NewAuthService(users *repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret}
}

// LoginResult carries the issued token plus the capability set the client
// needs: module rights and the plants this operator may act for. The
// server re-checks both from the token claims on every request.
type LoginResult struct {
	Token         string   `json:"token"`
	Username      string   `json:"username"`
	Role          string   `json:"role"`
	AllowedPlants []string `json:"allowed_plants"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password != password {
		return nil, ErrInvalidCredentials
	}

	plants := splitList(user.AllowedPlants)
	roles := splitList(user.Role)

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.Username,
		"name":   user.Username,
		"roles":  roles,
		"plants": plants,
		"iss":    "truckproject",
		"iat":    now.Unix(),
		"exp":    now.Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &LoginResult{
		Token:         signed,
		Username:      user.Username,
		Role:          user.Role,
		AllowedPlants: plants,
	}, nil
}

func splitList(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return []string{}
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
