package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/backsoul/quizquest/pkg/models"
)

var (
	ErrInvalidCredentials  = errors.New("invalid name or password")
	ErrAlreadyBootstrapped = errors.New("users already exist")
	ErrInvalidToken        = errors.New("invalid session token")
	ErrEmptyField          = errors.New("required field is empty")
)

// Claims is the payload of a session token. Subject holds the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterResult reports a bulk registration
type RegisterResult struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped"`
}

// AuthService handles users, logins and session tokens. Passwords are
// compared as stored.
type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	log    *slog.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService signing tokens with secret
func NewAuthService(users UserStore, secret string, ttl time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log.With("component", "auth"),
		now:    time.Now,
	}
}

// Bootstrap creates the first teacher account. It only works while no user
// exists.
func (s *AuthService) Bootstrap(ctx context.Context, realName, password string) (*models.User, error) {
	realName = strings.TrimSpace(realName)
	if realName == "" || password == "" {
		return nil, ErrEmptyField
	}

	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrAlreadyBootstrapped
	}

	u := s.newUser(realName, password, models.RoleTeacher)
	if err := s.users.CreateUsers(ctx, []models.User{u}); err != nil {
		return nil, err
	}
	s.log.Info("👑 admin account created", "name", realName)
	return &u, nil
}

// Login checks the password and returns the user with a signed token
func (s *AuthService) Login(ctx context.Context, realName, password string) (*models.User, string, error) {
	u, err := s.users.GetUserByName(ctx, strings.TrimSpace(realName))
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if u.Password != password {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	s.log.Info("🔑 login", "user", u.ID, "role", u.Role)
	return u, token, nil
}

func (s *AuthService) issueToken(u *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

// Authenticate validates a token and returns its claims
func (s *AuthService) Authenticate(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RegisterStudents creates a student per "name,password" line. Blank lines,
// lines without a comma and names already taken are skipped. All new users
// are written together.
func (s *AuthService) RegisterStudents(ctx context.Context, text string) (RegisterResult, error) {
	result := RegisterResult{Skipped: []string{}}
	seen := make(map[string]bool)
	var batch []models.User

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, password, ok := strings.Cut(line, ",")
		name, password = strings.TrimSpace(name), strings.TrimSpace(password)
		if !ok || name == "" || password == "" {
			result.Skipped = append(result.Skipped, line)
			continue
		}

		if seen[name] {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		_, err := s.users.GetUserByName(ctx, name)
		if err == nil {
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if !errors.Is(err, models.ErrUserNotFound) {
			return result, err
		}

		seen[name] = true
		batch = append(batch, s.newUser(name, password, models.RoleStudent))
	}

	if err := s.users.CreateUsers(ctx, batch); err != nil {
		return result, err
	}
	result.Created = len(batch)
	s.log.Info("✅ students registered", "created", result.Created, "skipped", len(result.Skipped))
	return result, nil
}

// UpdateNickname changes the display name shown on quizzes and rankings
func (s *AuthService) UpdateNickname(ctx context.Context, userID, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return ErrEmptyField
	}
	return s.users.UpdateNickname(ctx, userID, nickname)
}

// GetUser returns a user by id
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

// ListUserNames returns the sorted login names for the login picker
func (s *AuthService) ListUserNames(ctx context.Context) ([]string, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.RealName
	}
	sort.Strings(names)
	return names, nil
}

// ScoreTable returns every user's best score in every ranking category
func (s *AuthService) ScoreTable(ctx context.Context) ([]models.ScoreRow, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ScoreRow, len(users))
	for i, u := range users {
		scores := make(map[string]int, len(models.RankingCategories))
		for _, c := range models.RankingCategories {
			scores[c] = u.CategoryScores[c]
		}
		rows[i] = models.ScoreRow{RealName: u.RealName, Nickname: u.Nickname, Scores: scores}
	}
	return rows, nil
}

func (s *AuthService) newUser(realName, password, role string) models.User {
	return models.User{
		ID:             uuid.New().String(),
		RealName:       realName,
		Password:       password,
		Nickname:       realName,
		Role:           role,
		CreatedAt:      s.now(),
		CategoryScores: map[string]int{},
	}
}
