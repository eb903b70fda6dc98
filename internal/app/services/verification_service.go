package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/auth"
	"github.com/yigit/peers/internal/pkg/email"
	"github.com/yigit/peers/internal/pkg/eventtime"
	"github.com/yigit/peers/internal/pkg/validation"
)

// MaxVerificationAttempts is how many wrong codes a pending code survives
const MaxVerificationAttempts = 5

// VerificationService proves student status through a university email
type VerificationService interface {
	// RequestCode sends a fresh code to the given address, superseding any
	// pending one
	RequestCode(ctx context.Context, userID int64, req *dto.RequestCodeRequest) (*dto.VerificationResponse, error)
	// Verify consumes a matching code and marks the user verified
	Verify(ctx context.Context, userID int64, code string) (*models.User, error)
}

// verificationServiceImpl implements VerificationService
type verificationServiceImpl struct {
	verificationRepo repositories.IVerificationRepository
	universityRepo   repositories.IUniversityRepository
	userRepo         repositories.IUserRepository
	sender           email.Sender
	clock            eventtime.Clock
	codeTTL          time.Duration
	logger           zerolog.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	verificationRepo repositories.IVerificationRepository,
	universityRepo repositories.IUniversityRepository,
	userRepo repositories.IUserRepository,
	sender email.Sender,
	clock eventtime.Clock,
	codeTTL time.Duration,
	logger zerolog.Logger,
) VerificationService {
	return &verificationServiceImpl{
		verificationRepo: verificationRepo,
		universityRepo:   universityRepo,
		userRepo:         userRepo,
		sender:           sender,
		clock:            clock,
		codeTTL:          codeTTL,
		logger:           logger.With().Str("service", "verification").Logger(),
	}
}

func (s *verificationServiceImpl) RequestCode(ctx context.Context, userID int64, req *dto.RequestCodeRequest) (*dto.VerificationResponse, error) {
	address := validation.NormalizeEmail(req.Email)
	if !validation.IsEmail(address) {
		return nil, fieldError("email", "invalid email")
	}

	university, err := s.universityRepo.GetByName(ctx, req.University)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fieldError("university", "unknown university")
		}
		return nil, err
	}
	if !validation.MatchesDomain(address, university.Domains) {
		return nil, fieldError("email", "email does not belong to "+university.Name)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsVerifiedStudent {
		return nil, apperrors.NewConflictError("you are already a verified student")
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, err
	}

	pending := &models.VerificationCode{
		UserID:     userID,
		CodeHash:   hash,
		Email:      address,
		University: university.Name,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.verificationRepo.Upsert(ctx, pending); err != nil {
		return nil, err
	}

	if err := s.sender.SendVerificationCode(ctx, address, code, s.codeTTL); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to send verification code")
		if delErr := s.verificationRepo.Delete(ctx, userID, hash); delErr != nil {
			s.logger.Warn().Err(delErr).Int64("userID", userID).Msg("Failed to discard unsent verification code")
		}
		return nil, apperrors.NewUpstreamError(err, "failed to send verification email")
	}

	s.logger.Info().
		Int64("userID", userID).
		Str("university", university.Name).
		Msg("Verification code sent")
	return &dto.VerificationResponse{
		Email:      address,
		University: university.Name,
		ExpiresAt:  pending.CreatedAt.Add(s.codeTTL),
	}, nil
}

func (s *verificationServiceImpl) Verify(ctx context.Context, userID int64, code string) (*models.User, error) {
	pending, err := s.verificationRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.clock.Now().After(pending.CreatedAt.Add(s.codeTTL)) {
		s.discard(ctx, pending, "Failed to delete expired verification code")
		return nil, fieldError("code", "verification code expired, request a new one")
	}
	if pending.Attempts >= MaxVerificationAttempts {
		s.discard(ctx, pending, "Failed to delete locked verification code")
		return nil, fieldError("code", "too many wrong attempts, request a new code")
	}
	if !auth.CheckCode(pending.CodeHash, code) {
		attempts, err := s.verificationRepo.RecordFailedAttempt(ctx, userID, pending.CodeHash)
		if err != nil {
			return nil, err
		}
		if attempts >= MaxVerificationAttempts {
			s.logger.Warn().Int64("userID", userID).Int("attempts", attempts).Msg("Verification code locked out")
			s.discard(ctx, pending, "Failed to delete locked verification code")
			return nil, fieldError("code", "too many wrong attempts, request a new code")
		}
		return nil, fieldError("code", "verification code does not match")
	}

	if err := s.verificationRepo.Complete(ctx, pending, MaxVerificationAttempts); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Str("university", pending.University).Msg("Student verified")
	return s.userRepo.GetByID(ctx, userID)
}

func (s *verificationServiceImpl) discard(ctx context.Context, pending *models.VerificationCode, failure string) {
	if err := s.verificationRepo.Delete(ctx, pending.UserID, pending.CodeHash); err != nil {
		s.logger.Warn().Err(err).Int64("userID", pending.UserID).Msg(failure)
	}
}
