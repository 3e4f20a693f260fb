package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/repositories"
	"github.com/adanyl0v/tasklist/internal/repositories/sessions"
	"github.com/adanyl0v/tasklist/internal/repositories/users"
)

type authServiceImpl struct {
	logger   zerolog.Logger
	users    users.Repository
	sessions sessions.Repository
	hasher   PasswordHasher
	verifier CredentialVerifier
	tokens   *tokenIssuer
	now      func() time.Time
}

func NewAuthService(
	logger zerolog.Logger,
	userRepo users.Repository,
	sessionRepo sessions.Repository,
	hasher PasswordHasher,
	verifier CredentialVerifier,
	tokenCfg TokenConfig,
) AuthService {
	return &authServiceImpl{
		logger:   logger,
		users:    userRepo,
		sessions: sessionRepo,
		hasher:   hasher,
		verifier: verifier,
		tokens:   newTokenIssuer(tokenCfg, time.Now),
		now:      storageNow,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	params, err := normalizeRegistration(params)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("invalid registration payload")
		return nil, err
	}

	now := s.now()
	user := &models.User{
		Name:      params.Name,
		Email:     params.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	user.Password, err = s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			s.logger.Warn().
				Str("email", user.Email).
				Msg("user with this email already exists")
			return nil, ErrUserAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := s.verifier.Verify(ctx, Credentials{
		Email:    params.Email,
		Password: params.Password,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		UserID:      user.ID,
		Fingerprint: params.Fingerprint,
		ExpiresAt:   now.Add(s.tokens.cfg.RefreshTokenTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sessionUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, err
	}
	session.ID = sessionUUID.String()

	session.RefreshToken, err = generateRefreshToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}

	err = s.sessions.Replace(ctx, session)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to replace sessions")
		return nil, err
	}

	accessToken, accessTokenExpiresAt, err := s.tokens.accessToken(session.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", session.ID).
		Msg("logged in")
	return &LoginResult{
		User:                  user,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error) {
	session, err := s.sessions.FindByRefreshToken(ctx, params.RefreshToken, params.Fingerprint)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().Msg("session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to find session by refresh token")
		return nil, err
	}

	now := s.now()
	if session.IsExpired(now) {
		s.logger.Warn().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().
				Str("session_id", session.ID).
				Msg("session user not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", session.UserID).
			Msg("failed to find user by id")
		return nil, err
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}

	expiresAt := now.Add(s.tokens.cfg.RefreshTokenTTL)
	err = s.sessions.Rotate(ctx, session.ID, params.RefreshToken, refreshToken, expiresAt, now)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().
				Str("session_id", session.ID).
				Msg("session rotated concurrently")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Msg("failed to rotate session")
		return nil, err
	}
	s.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", expiresAt).
		Msg("rotated session")

	accessToken, accessTokenExpiresAt, err := s.tokens.accessToken(session.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("refreshed session")
	return &LoginResult{
		User:                  user,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
	}, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, userID string) error {
	affected, err := s.sessions.DeleteByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete sessions by user id")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Int64("sessions", affected).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) ResolveSession(
	ctx context.Context,
	accessToken, fingerprint string,
) (*models.Identity, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("missing access token: %w", ErrUnauthorized)
	}

	claims, err := s.tokens.parse(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	record, err := s.sessions.FindWithUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn().
				Str("session_id", claims.Subject).
				Msg("session or its user not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", claims.Subject).
			Msg("failed to find session")
		return nil, err
	}

	if record.IsExpired(s.now()) {
		s.logger.Warn().
			Str("session_id", record.ID).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	if record.Fingerprint != fingerprint {
		s.logger.Warn().
			Str("session_id", record.ID).
			Msg("fingerprint mismatch")
		return nil, fmt.Errorf("fingerprint mismatch: %w", ErrUnauthorized)
	}

	return &models.Identity{
		UserID:    record.UserID,
		Email:     record.Email,
		SessionID: record.ID,
	}, nil
}
