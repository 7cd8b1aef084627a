package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/task_manager/internal/events"
	"github.com/Skotchmaster/task_manager/internal/hash"
	"github.com/Skotchmaster/task_manager/internal/logging"
	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/tokens"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	Repo     *repo.Repo
	Tokens   *tokens.Manager
	Producer *events.Producer
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("hash failed", "error", err)
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	res, err := s.issueSession(ctx, user)
	if err != nil {
		l.Error("token issuance failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("user registered", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Same failure as a wrong password, to avoid account enumeration.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	res, err := s.issueSession(ctx, user)
	if err != nil {
		l.Error("token issuance failed", "error", err)
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login successful", "user_id", user.ID)
	return res, nil
}

// Logout clears the stored refresh token. Already-issued access tokens stay
// valid until they expire; only the refresh side is revoked.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Repo.SetRefreshToken(ctx, userID, nil)
}

// issueSession signs both tokens and overwrites the stored refresh token, so
// at most one refresh token is live per account.
func (s *AuthService) issueSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	accessToken, err := s.Tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.Tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, err
	}

	now := time.Now()
	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    now.Add(s.Tokens.AccessTTL),
		RefreshExp:   now.Add(s.Tokens.RefreshTTL),
	}, nil
}

func (s *AuthService) publish(ctx context.Context, topic, key string, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", topic, "error", err)
	}
}
