package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ctroy978/umadex-sub002/internal/dto"
	"github.com/ctroy978/umadex-sub002/internal/models"
	"github.com/ctroy978/umadex-sub002/internal/repository"
)

// FlagReviewService is the teacher's moderation queue. Rejecting a flag marks
// it a false positive and releases the held statement for scoring; approving
// or escalating keeps the hold in place.
type FlagReviewService interface {
	List(ctx context.Context, filter dto.FlagFilter) ([]dto.FlagResponse, int64, error)
	Resolve(ctx context.Context, flagID, teacherID uint, payload dto.FlagResolveRequest) (dto.FlagResponse, error)
}

type flagReviewService struct {
	flags     repository.ContentFlagRepository
	posts     repository.DebatePostRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewFlagReviewService constructs the flag review queue.
func NewFlagReviewService(flags repository.ContentFlagRepository, posts repository.DebatePostRepository, validate *validator.Validate, logger zerolog.Logger) FlagReviewService {
	return &flagReviewService{
		flags:     flags,
		posts:     posts,
		validator: validate,
		logger:    logger.With().Str("component", "flag_review_service").Logger(),
		now:       time.Now,
	}
}

func (s *flagReviewService) List(ctx context.Context, filter dto.FlagFilter) ([]dto.FlagResponse, int64, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, 0, err
	}

	repoFilter := repository.ContentFlagFilter{
		StudentID: filter.StudentID,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	if repoFilter.PageSize <= 0 || repoFilter.PageSize > 100 {
		repoFilter.PageSize = 20
	}
	if filter.Status != nil {
		status := models.FlagStatus(*filter.Status)
		repoFilter.Status = &status
	}

	flags, total, err := s.flags.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("list flags: %w", err)
	}

	return dto.NewFlagResponseSlice(flags), total, nil
}

func (s *flagReviewService) Resolve(ctx context.Context, flagID, teacherID uint, payload dto.FlagResolveRequest) (dto.FlagResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FlagResponse{}, err
	}

	flag, err := s.flags.GetByID(ctx, flagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FlagResponse{}, ErrFlagNotFound
		}
		return dto.FlagResponse{}, err
	}

	resolvedAt := s.now()
	flag.Status = models.FlagStatus(payload.Status)
	flag.ResolvedBy = &teacherID
	flag.ResolvedAt = &resolvedAt

	if err := s.flags.Update(ctx, &flag); err != nil {
		return dto.FlagResponse{}, fmt.Errorf("resolve flag: %w", err)
	}

	if flag.Status == models.FlagStatusRejected && flag.PostID != nil {
		if err := s.releasePost(ctx, *flag.PostID); err != nil {
			s.logger.Error().Err(err).Uint("post_id", *flag.PostID).Msg("failed to release held post")
		}
	}

	s.logger.Info().
		Uint("flag_id", flag.ID).
		Uint("teacher_id", teacherID).
		Str("status", string(flag.Status)).
		Msg("content flag resolved")

	return dto.NewFlagResponse(flag), nil
}

// releasePost clears the moderation hold once every flag on the post has been
// dismissed.
func (s *flagReviewService) releasePost(ctx context.Context, postID uint) error {
	pending, err := s.flags.PendingForPost(ctx, postID)
	if err != nil {
		return err
	}
	if pending {
		return nil
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.ModerationStatus != models.ModerationStatusHeld {
		return nil
	}

	post.ModerationStatus = models.ModerationStatusClean
	return s.posts.Update(ctx, &post)
}
