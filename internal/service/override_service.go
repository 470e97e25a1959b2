package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

const (
	overrideAttemptLimit  = 5
	overrideAttemptWindow = time.Hour
	defaultCodeTTL        = 24 * time.Hour
)

// OverrideGrant is a successful verification. CodeID is set when a
// single-use code matched; the caller redeems it once the submission is
// otherwise accepted. A bypass phrase match leaves CodeID zero.
type OverrideGrant struct {
	Granted bool
	CodeID  uint
}

// OverrideService is the single capability-scoped verifier for deadline
// bypasses: permanent teacher phrases and single-use override codes. Every
// subsystem that needs a "submit despite deadline" signal goes through here
// rather than re-implementing its own check.
type OverrideService interface {
	// Verify reports whether the supplied code (or bypass phrase) unlocks
	// one post-deadline submission for the student on the assignment.
	// Verification never consumes the code; the caller redeems the grant
	// only when the submission it unlocked goes through.
	Verify(ctx context.Context, studentID, assignmentID uint, code string) (OverrideGrant, error)
	// Redeem burns the single-use code behind the grant. Phrase grants are
	// a no-op.
	Redeem(ctx context.Context, grant OverrideGrant) error
	MintCode(ctx context.Context, teacherID uint, payload dto.OverrideCodeCreateRequest) (dto.OverrideCodeResponse, error)
	SetBypassPhrase(ctx context.Context, teacherID uint, phrase string) error
}

type overrideService struct {
	codes       repository.OverrideCodeRepository
	assignments repository.DebateAssignmentRepository
	redis       *redis.Client
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOverrideService constructs the override verifier. The redis client backs
// the per-student attempt rate limit; nil disables limiting (tests).
func NewOverrideService(codes repository.OverrideCodeRepository, assignments repository.DebateAssignmentRepository, redisClient *redis.Client, validate *validator.Validate, logger zerolog.Logger) OverrideService {
	return &overrideService{
		codes:       codes,
		assignments: assignments,
		redis:       redisClient,
		validator:   validate,
		logger:      logger.With().Str("component", "override_service").Logger(),
		now:         time.Now,
	}
}

func (s *overrideService) Verify(ctx context.Context, studentID, assignmentID uint, code string) (OverrideGrant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return OverrideGrant{}, nil
	}

	if err := s.checkAttemptLimit(ctx, studentID); err != nil {
		return OverrideGrant{}, err
	}

	record, err := s.codes.GetByCode(ctx, code)
	if err == nil {
		if record.StudentID != studentID || record.AssignmentID != assignmentID {
			return OverrideGrant{}, ErrInvalidOverride
		}
		if !record.Usable(s.now()) {
			return OverrideGrant{}, ErrInvalidOverride
		}

		s.logger.Info().
			Uint("student_id", studentID).
			Uint("assignment_id", assignmentID).
			Uint("teacher_id", record.TeacherID).
			Msg("override code accepted")
		return OverrideGrant{Granted: true, CodeID: record.ID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return OverrideGrant{}, err
	}

	// Not a minted code; try it as a permanent teacher bypass phrase.
	ok, err := s.matchesBypassPhrase(ctx, assignmentID, code)
	if err != nil {
		return OverrideGrant{}, err
	}
	if !ok {
		return OverrideGrant{}, ErrInvalidOverride
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("assignment_id", assignmentID).
		Msg("teacher bypass phrase accepted")
	return OverrideGrant{Granted: true}, nil
}

func (s *overrideService) Redeem(ctx context.Context, grant OverrideGrant) error {
	if !grant.Granted || grant.CodeID == 0 {
		return nil
	}

	if err := s.codes.Redeem(ctx, grant.CodeID, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race to another redemption of the same code.
			return ErrInvalidOverride
		}
		return err
	}

	s.logger.Info().Uint("code_id", grant.CodeID).Msg("override code redeemed")
	return nil
}

func (s *overrideService) matchesBypassPhrase(ctx context.Context, assignmentID uint, phrase string) (bool, error) {
	teacherID, err := s.assignmentTeacher(ctx, assignmentID)
	if err != nil {
		return false, err
	}

	bypass, err := s.codes.GetBypassByTeacher(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return bypass.PhraseHash == hashPhrase(phrase), nil
}

// assignmentTeacher resolves which teacher's bypass phrase applies to the
// assignment the student is submitting against.
func (s *overrideService) assignmentTeacher(ctx context.Context, assignmentID uint) (uint, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	return assignment.TeacherID, nil
}

func (s *overrideService) MintCode(ctx context.Context, teacherID uint, payload dto.OverrideCodeCreateRequest) (dto.OverrideCodeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OverrideCodeResponse{}, err
	}

	ttl := defaultCodeTTL
	if payload.TTLMinutes > 0 {
		ttl = time.Duration(payload.TTLMinutes) * time.Minute
	}

	record := models.OverrideCode{
		Code:         newOverrideCode(),
		TeacherID:    teacherID,
		StudentID:    payload.StudentID,
		AssignmentID: payload.AssignmentID,
		ExpiresAt:    s.now().Add(ttl),
	}

	if err := s.codes.Create(ctx, &record); err != nil {
		return dto.OverrideCodeResponse{}, err
	}

	s.logger.Info().
		Uint("teacher_id", teacherID).
		Uint("student_id", payload.StudentID).
		Uint("assignment_id", payload.AssignmentID).
		Time("expires_at", record.ExpiresAt).
		Msg("override code minted")

	return dto.NewOverrideCodeResponse(record), nil
}

func (s *overrideService) SetBypassPhrase(ctx context.Context, teacherID uint, phrase string) error {
	phrase = strings.TrimSpace(phrase)
	if len(phrase) < 8 {
		return fmt.Errorf("bypass phrase must be at least 8 characters")
	}

	bypass, err := s.codes.GetBypassByTeacher(ctx, teacherID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	bypass.TeacherID = teacherID
	bypass.PhraseHash = hashPhrase(phrase)

	return s.codes.SaveBypass(ctx, &bypass)
}

// checkAttemptLimit enforces max 5 verification attempts per student per
// hour. Abuse is a security-relevant event and is logged as such.
func (s *overrideService) checkAttemptLimit(ctx context.Context, studentID uint) error {
	if s.redis == nil {
		return nil
	}

	key := fmt.Sprintf("debate:override:attempts:%d", studentID)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to track override attempts")
		return nil
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, overrideAttemptWindow).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to set override attempt window")
		}
	}

	if count > overrideAttemptLimit {
		s.logger.Warn().
			Uint("student_id", studentID).
			Int64("attempts", count).
			Msg("override attempt rate limit exceeded")
		return ErrTooManyAttempts
	}

	return nil
}

func newOverrideCode() string {
	// Short, teacher-dictatable form of a uuid.
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func hashPhrase(phrase string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(phrase))))
	return hex.EncodeToString(sum[:])
}
