package service

import (
	"context"
	"errors"
	"time"

	"tangerine/internal/models"
	"tangerine/internal/repository"

	"gorm.io/gorm"
)

// trendingInvalidator is the slice of TrendingService the write paths need.
type trendingInvalidator interface {
	Invalidate(ctx context.Context, postID uint)
}

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	sequencer   *GroupSequencer
	trending    trendingInvalidator
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ParentID *uint
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	BodyID    uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

type ListCommentsInput struct {
	PostID uint
	Page   int
	Size   int
}

type ListRepliesInput struct {
	PostID   uint
	ParentID uint
	Page     int
	Size     int
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	sequencer *GroupSequencer,
	trending trendingInvalidator,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		sequencer:   sequencer,
		trending:    trending,
	}
}

const maxCommentLen = 10000

// normalizePage clamps page/size to sane bounds: page is 1-indexed, size
// defaults to 10 and caps at 100.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func (s *CommentService) assertPostExists(ctx context.Context, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", postID)
		}
		return err
	}
	return nil
}

// CreateComment adds a top-level comment or a reply. Top-level comments get a
// fresh group number from the sequencer; replies inherit their parent's so
// the thread stays contiguous under (group_number, created_at) ordering.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}
	if err := s.assertPostExists(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}

	if in.ParentID == nil {
		err := s.sequencer.Allocate(ctx, in.PostID, func(group int64) error {
			comment.GroupNumber = group
			return s.commentRepo.Create(ctx, comment)
		})
		if err != nil {
			return nil, err
		}
	} else {
		parent, err := s.commentRepo.GetByPost(ctx, in.PostID, *in.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Comment", *in.ParentID)
			}
			return nil, err
		}
		if parent.IsReply() {
			return nil, models.NewValidationError("Replies can only target top-level comments")
		}
		comment.ParentID = in.ParentID
		comment.GroupNumber = parent.GroupNumber
		if err := s.commentRepo.Create(ctx, comment); err != nil {
			return nil, err
		}
	}

	s.recordActivity(ctx, in.PostID)
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns one page of the post's top-level comments in thread
// order. Replies are fetched separately per parent.
func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) ([]*models.Comment, int64, error) {
	if err := s.assertPostExists(ctx, in.PostID); err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(in.Page, in.Size)
	comments, err := s.commentRepo.ListTopLevel(ctx, in.PostID, size, (page-1)*size)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.commentRepo.CountTopLevel(ctx, in.PostID)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListReplies returns one page of a comment's replies in creation order.
func (s *CommentService) ListReplies(ctx context.Context, in ListRepliesInput) ([]*models.Comment, error) {
	parent, err := s.commentRepo.GetByPost(ctx, in.PostID, in.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", in.ParentID)
		}
		return nil, err
	}

	page, size := normalizePage(in.Page, in.Size)
	return s.commentRepo.ListReplies(ctx, parent.ID, size, (page-1)*size)
}

// GetComment returns one comment, requiring it to belong to the given post.
func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByPost(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits a comment's content. Only the author may edit, only
// content mutates, and the body id (when present) must agree with the URL.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := AssertPathConsistency(in.CommentID, in.BodyID); err != nil {
		return nil, err
	}
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment, err := s.GetComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(comment.UserID, in.UserID); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment and, when it heads a thread, its replies.
// Sibling group numbers are never renumbered; the gap is permanent.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(comment.UserID, in.UserID); err != nil {
		return nil, err
	}

	if err := s.commentRepo.DeleteThread(ctx, in.CommentID); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, in.PostID)
	return comment, nil
}

// recordActivity marks the post active and schedules a score recompute.
// Both are best-effort; a failed touch must not fail the write that caused it.
func (s *CommentService) recordActivity(ctx context.Context, postID uint) {
	_ = s.postRepo.TouchActivity(ctx, postID, time.Now())
	if s.trending != nil {
		s.trending.Invalidate(ctx, postID)
	}
}
