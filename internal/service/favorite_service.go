package service

import (
	"context"
	"errors"
	"time"

	"tangerine/internal/middleware"
	"tangerine/internal/models"
	"tangerine/internal/observability"
	"tangerine/internal/repository"

	"gorm.io/gorm"
)

// FavoriteService implements the per-user favorite toggle on comments.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	trending     trendingInvalidator
}

// ToggleResult reports the state after a toggle.
type ToggleResult struct {
	Favorited bool  `json:"favorited"`
	Count     int64 `json:"count"`
}

func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	trending trendingInvalidator,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		trending:     trending,
	}
}

// Toggle flips the caller's favorite on a comment. The insert goes through
// ON CONFLICT DO NOTHING, so two concurrent toggles on the same pair agree
// on at most one stored row; the loser's insert degrades to the remove path
// only if a row already existed.
func (s *FavoriteService) Toggle(ctx context.Context, userID, postID, commentID uint) (*ToggleResult, error) {
	if _, err := s.commentRepo.GetByPost(ctx, postID, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}

	inserted, err := s.favoriteRepo.Insert(ctx, commentID, userID)
	if err != nil {
		return nil, err
	}

	favorited := inserted
	if !inserted {
		removed, err := s.favoriteRepo.Delete(ctx, commentID, userID)
		if err != nil {
			return nil, err
		}
		// A concurrent remove can beat us here; either way the pair holds
		// no favorite now.
		_ = removed
		favorited = false
	}

	outcome := "removed"
	if favorited {
		outcome = "added"
	}
	observability.FavoriteToggles.WithLabelValues(outcome).Inc()

	_ = s.postRepo.TouchActivity(ctx, postID, time.Now())
	if s.trending != nil {
		s.trending.Invalidate(ctx, postID)
	}

	count, err := s.favoriteRepo.CountByComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Favorited: favorited, Count: count}, nil
}

// ListForPost returns the ids of the post's comments the caller has
// favorited. Anonymous callers own no favorites, so they get an empty set
// rather than an error.
func (s *FavoriteService) ListForPost(ctx context.Context, postID uint, caller middleware.Caller) ([]uint, error) {
	if !caller.Authenticated {
		return []uint{}, nil
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}

	ids, err := s.favoriteRepo.ListCommentIDsForPost(ctx, postID, caller.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}
