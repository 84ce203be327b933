package service

import (
	"context"
	"errors"
	"sync"

	"tangerine/internal/models"
	"tangerine/internal/repository"

	"gorm.io/gorm"
)

// GroupSequencer hands out thread group numbers. Each top-level comment on a
// post starts a new group; replies inherit their parent's group. Numbers only
// ever grow, so deleting a thread leaves a gap that is never reused.
type GroupSequencer struct {
	commentRepo repository.CommentRepository

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewGroupSequencer creates a new GroupSequencer
func NewGroupSequencer(commentRepo repository.CommentRepository) *GroupSequencer {
	return &GroupSequencer{
		commentRepo: commentRepo,
		locks:       make(map[uint]*sync.Mutex),
	}
}

// lockFor returns the mutex for a post, creating it on first use. Entries are
// never evicted, so the map grows with the number of distinct posts commented
// on over the process lifetime. Each entry is a bare mutex; swap in a sharded
// or bounded map if post cardinality ever makes this matter.
func (s *GroupSequencer) lockFor(postID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[postID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[postID] = l
	}
	return l
}

// NextGroupNumber returns the group number the next top-level comment on the
// post would receive. Callers that intend to insert must use Allocate so the
// read and the write happen under the same lock.
func (s *GroupSequencer) NextGroupNumber(ctx context.Context, postID uint) (int64, error) {
	max, err := s.commentRepo.MaxGroupNumber(ctx, postID)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Allocate serializes group-number allocation per post: it holds the post's
// lock across the max read and whatever insert fn performs, so two concurrent
// top-level comments can never observe the same max.
func (s *GroupSequencer) Allocate(ctx context.Context, postID uint, fn func(group int64) error) error {
	l := s.lockFor(postID)
	l.Lock()
	defer l.Unlock()

	next, err := s.NextGroupNumber(ctx, postID)
	if err != nil {
		return err
	}
	return fn(next)
}

// GroupNumberOf returns the group number of an existing comment, for reply
// inheritance.
func (s *GroupSequencer) GroupNumberOf(ctx context.Context, commentID uint) (int64, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Comment", commentID)
		}
		return 0, err
	}
	return comment.GroupNumber, nil
}
