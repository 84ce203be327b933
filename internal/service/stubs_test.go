package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tangerine/internal/models"
	"tangerine/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn         func(context.Context, *models.Comment) error
	getByIDFn        func(context.Context, uint) (*models.Comment, error)
	getByPostFn      func(context.Context, uint, uint) (*models.Comment, error)
	listTopLevelFn   func(context.Context, uint, int, int) ([]*models.Comment, error)
	listRepliesFn    func(context.Context, uint, int, int) ([]*models.Comment, error)
	countTopLevelFn  func(context.Context, uint) (int64, error)
	countByPostFn    func(context.Context, uint) (int64, error)
	maxGroupNumberFn func(context.Context, uint) (int64, error)
	updateFn         func(context.Context, *models.Comment) error
	deleteThreadFn   func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetByPost(ctx context.Context, postID, id uint) (*models.Comment, error) {
	return s.getByPostFn(ctx, postID, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listTopLevelFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID, limit, offset)
}
func (s *commentRepoStub) CountTopLevel(ctx context.Context, postID uint) (int64, error) {
	return s.countTopLevelFn(ctx, postID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) MaxGroupNumber(ctx context.Context, postID uint) (int64, error) {
	return s.maxGroupNumberFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) DeleteThread(ctx context.Context, id uint) error {
	return s.deleteThreadFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:    func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		getByPostFn: func(_ context.Context, postID, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: postID}, nil
		},
		listTopLevelFn:   func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		listRepliesFn:    func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		countTopLevelFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countByPostFn:    func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		maxGroupNumberFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:         func(_ context.Context, _ *models.Comment) error { return nil },
		deleteThreadFn:   func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn             func(context.Context, *models.Post) error
	getByIDFn            func(context.Context, uint) (*models.Post, error)
	getByUserIDFn        func(context.Context, uint, int, int) ([]*models.Post, error)
	listFn               func(context.Context, int, int) ([]*models.Post, error)
	updateFn             func(context.Context, *models.Post) error
	deleteFn             func(context.Context, uint) error
	incrementViewCountFn func(context.Context, uint) error
	touchActivityFn      func(context.Context, uint, time.Time) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IncrementViewCount(ctx context.Context, id uint) error {
	return s.incrementViewCountFn(ctx, id)
}
func (s *postRepoStub) TouchActivity(ctx context.Context, id uint, at time.Time) error {
	return s.touchActivityFn(ctx, id, at)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:             func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:            func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByUserIDFn:        func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		listFn:               func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:             func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:             func(_ context.Context, _ uint) error { return nil },
		incrementViewCountFn: func(_ context.Context, _ uint) error { return nil },
		touchActivityFn:      func(_ context.Context, _ uint, _ time.Time) error { return nil },
	}
}

// favoriteRepoStub is a stub for repository.FavoriteRepository.
type favoriteRepoStub struct {
	insertFn                func(context.Context, uint, uint) (bool, error)
	deleteFn                func(context.Context, uint, uint) (bool, error)
	existsFn                func(context.Context, uint, uint) (bool, error)
	listCommentIDsForPostFn func(context.Context, uint, uint) ([]uint, error)
	countByCommentFn        func(context.Context, uint) (int64, error)
	countByPostFn           func(context.Context, uint) (int64, error)
}

func (s *favoriteRepoStub) Insert(ctx context.Context, commentID, userID uint) (bool, error) {
	return s.insertFn(ctx, commentID, userID)
}
func (s *favoriteRepoStub) Delete(ctx context.Context, commentID, userID uint) (bool, error) {
	return s.deleteFn(ctx, commentID, userID)
}
func (s *favoriteRepoStub) Exists(ctx context.Context, commentID, userID uint) (bool, error) {
	return s.existsFn(ctx, commentID, userID)
}
func (s *favoriteRepoStub) ListCommentIDsForPost(ctx context.Context, postID, userID uint) ([]uint, error) {
	return s.listCommentIDsForPostFn(ctx, postID, userID)
}
func (s *favoriteRepoStub) CountByComment(ctx context.Context, commentID uint) (int64, error) {
	return s.countByCommentFn(ctx, commentID)
}
func (s *favoriteRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}

func noopFavoriteRepo() *favoriteRepoStub {
	return &favoriteRepoStub{
		insertFn:                func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		deleteFn:                func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		existsFn:                func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		listCommentIDsForPostFn: func(_ context.Context, _, _ uint) ([]uint, error) { return nil, nil },
		countByCommentFn:        func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countByPostFn:           func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// trendingRepoStub is a stub for repository.TrendingRepository.
type trendingRepoStub struct {
	upsertFn  func(context.Context, *models.TrendingPost) error
	topNFn    func(context.Context, int) ([]*models.TrendingPost, error)
	signalsFn func(context.Context, uint) (*repository.TrendingSignals, error)
	deleteFn  func(context.Context, uint) error
}

func (s *trendingRepoStub) Upsert(ctx context.Context, entry *models.TrendingPost) error {
	return s.upsertFn(ctx, entry)
}
func (s *trendingRepoStub) TopN(ctx context.Context, n int) ([]*models.TrendingPost, error) {
	return s.topNFn(ctx, n)
}
func (s *trendingRepoStub) Signals(ctx context.Context, postID uint) (*repository.TrendingSignals, error) {
	return s.signalsFn(ctx, postID)
}
func (s *trendingRepoStub) Delete(ctx context.Context, postID uint) error {
	return s.deleteFn(ctx, postID)
}

func noopTrendingRepo() *trendingRepoStub {
	return &trendingRepoStub{
		upsertFn: func(_ context.Context, _ *models.TrendingPost) error { return nil },
		topNFn:   func(_ context.Context, _ int) ([]*models.TrendingPost, error) { return nil, nil },
		signalsFn: func(_ context.Context, _ uint) (*repository.TrendingSignals, error) {
			return &repository.TrendingSignals{LastActivityAt: time.Now()}, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// trendingStub records Invalidate calls without doing work.
type trendingStub struct {
	invalidated []uint
}

func (s *trendingStub) Invalidate(_ context.Context, postID uint) {
	s.invalidated = append(s.invalidated, postID)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}
