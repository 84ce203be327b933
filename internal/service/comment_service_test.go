package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tangerine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommentService(commentRepo *commentRepoStub, postRepo *postRepoStub) (*CommentService, *trendingStub) {
	trending := &trendingStub{}
	return NewCommentService(commentRepo, postRepo, NewGroupSequencer(commentRepo), trending), trending
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newCommentService(noopCommentRepo(), noopPostRepo())
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{
			UserID:  1,
			PostID:  1,
			Content: strings.Repeat("x", 10001),
		})
		assertValidationError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc2, _ := newCommentService(noopCommentRepo(), postRepo)
		_, err := svc2.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 99, Content: "hi"})
		assertNotFoundError(t, err)
	})
}

func TestCommentService_CreateComment_TopLevelAllocatesGroup(t *testing.T) {
	t.Parallel()

	var created *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.maxGroupNumberFn = func(_ context.Context, _ uint) (int64, error) { return 3, nil }
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		created = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return created, nil
	}

	svc, trending := newCommentService(commentRepo, noopPostRepo())
	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  1,
		PostID:  1,
		Content: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), comment.GroupNumber)
	assert.Nil(t, comment.ParentID)
	assert.Equal(t, []uint{1}, trending.invalidated)
}

func TestCommentService_CreateComment_ReplyInheritsParentGroup(t *testing.T) {
	t.Parallel()

	parentID := uint(10)
	var created *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: postID, GroupNumber: 6}, nil
	}
	commentRepo.maxGroupNumberFn = func(_ context.Context, _ uint) (int64, error) {
		t.Fatal("replies must not consult the sequencer")
		return 0, nil
	}
	commentRepo.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 11
		created = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return created, nil }

	svc, _ := newCommentService(commentRepo, noopPostRepo())
	reply, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:   2,
		PostID:   1,
		Content:  "me too",
		ParentID: &parentID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), reply.GroupNumber)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parentID, *reply.ParentID)
}

func TestCommentService_CreateComment_ReplyGuards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("parent under another post", func(t *testing.T) {
		t.Parallel()
		parentID := uint(10)
		commentRepo := noopCommentRepo()
		commentRepo.getByPostFn = func(_ context.Context, _, _ uint) (*models.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc, _ := newCommentService(commentRepo, noopPostRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: "hi", ParentID: &parentID})
		assertNotFoundError(t, err)
	})

	t.Run("reply to a reply", func(t *testing.T) {
		t.Parallel()
		parentID := uint(10)
		grandparent := uint(3)
		commentRepo := noopCommentRepo()
		commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: postID, ParentID: &grandparent, GroupNumber: 2}, nil
		}
		svc, _ := newCommentService(commentRepo, noopPostRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: "hi", ParentID: &parentID})
		assertValidationError(t, err)
	})
}

func TestCommentService_ListComments_PagesTopLevelOnly(t *testing.T) {
	t.Parallel()

	var gotLimit, gotOffset int
	commentRepo := noopCommentRepo()
	commentRepo.listTopLevelFn = func(_ context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
		gotLimit, gotOffset = limit, offset
		return []*models.Comment{{ID: 1, GroupNumber: 1}, {ID: 2, GroupNumber: 2}}, nil
	}
	commentRepo.countTopLevelFn = func(_ context.Context, _ uint) (int64, error) { return 12, nil }

	svc, _ := newCommentService(commentRepo, noopPostRepo())
	comments, total, err := svc.ListComments(context.Background(), ListCommentsInput{PostID: 1, Page: 2, Size: 5})
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, int64(12), total)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, 5, gotOffset)
}

func TestCommentService_ListComments_NormalizesPaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 10, 0},
		{"negative page", -3, 10, 10, 0},
		{"size capped", 1, 500, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var gotLimit, gotOffset int
			commentRepo := noopCommentRepo()
			commentRepo.listTopLevelFn = func(_ context.Context, _ uint, limit, offset int) ([]*models.Comment, error) {
				gotLimit, gotOffset = limit, offset
				return nil, nil
			}
			svc, _ := newCommentService(commentRepo, noopPostRepo())
			_, _, err := svc.ListComments(context.Background(), ListCommentsInput{PostID: 1, Page: tt.page, Size: tt.size})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, gotLimit)
			assert.Equal(t, tt.wantOffset, gotOffset)
		})
	}
}

func TestCommentService_ListReplies_ParentMustBelongToPost(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.getByPostFn = func(_ context.Context, _, _ uint) (*models.Comment, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc, _ := newCommentService(commentRepo, noopPostRepo())
	_, err := svc.ListReplies(context.Background(), ListRepliesInput{PostID: 1, ParentID: 99})
	assertNotFoundError(t, err)
}

func TestCommentService_UpdateComment_Guards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("body id mismatch rejected before any read", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByPostFn = func(_ context.Context, _, _ uint) (*models.Comment, error) {
			t.Fatal("mismatched ids must fail before touching the repository")
			return nil, nil
		}
		commentRepo.updateFn = func(_ context.Context, _ *models.Comment) error {
			t.Fatal("mismatched ids must not mutate")
			return nil
		}
		svc, _ := newCommentService(commentRepo, noopPostRepo())
		_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 1, PostID: 1, CommentID: 5, BodyID: 6, Content: "x"})
		assertValidationError(t, err)
	})

	t.Run("foreign author forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: postID, UserID: 10}, nil
		}
		commentRepo.updateFn = func(_ context.Context, _ *models.Comment) error {
			t.Fatal("forbidden update must not mutate")
			return nil
		}
		svc, _ := newCommentService(commentRepo, noopPostRepo())
		_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 1, PostID: 1, CommentID: 5, Content: "x"})
		assertForbiddenError(t, err)
	})

	t.Run("comment under another post", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByPostFn = func(_ context.Context, _, _ uint) (*models.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc, _ := newCommentService(commentRepo, noopPostRepo())
		_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 1, PostID: 2, CommentID: 5, Content: "x"})
		assertNotFoundError(t, err)
	})
}

func TestCommentService_UpdateComment_OnlyContentMutates(t *testing.T) {
	t.Parallel()

	var saved *models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: postID, UserID: 1, GroupNumber: 3, Content: "old"}, nil
	}
	commentRepo.updateFn = func(_ context.Context, c *models.Comment) error {
		saved = c
		return nil
	}
	commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return saved, nil }

	svc, _ := newCommentService(commentRepo, noopPostRepo())
	updated, err := svc.UpdateComment(context.Background(), UpdateCommentInput{
		UserID: 1, PostID: 1, CommentID: 5, BodyID: 5, Content: "new",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Content)
	assert.Equal(t, int64(3), updated.GroupNumber)
	assert.Equal(t, uint(1), updated.PostID)
}

func TestCommentService_DeleteComment_CascadesThread(t *testing.T) {
	t.Parallel()

	var deletedID uint
	commentRepo := noopCommentRepo()
	commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: postID, UserID: 1, GroupNumber: 2}, nil
	}
	commentRepo.deleteThreadFn = func(_ context.Context, id uint) error {
		deletedID = id
		return nil
	}

	svc, trending := newCommentService(commentRepo, noopPostRepo())
	deleted, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, PostID: 1, CommentID: 7})
	require.NoError(t, err)
	assert.Equal(t, uint(7), deletedID)
	assert.Equal(t, int64(2), deleted.GroupNumber)
	assert.Equal(t, []uint{1}, trending.invalidated)
}

func TestCommentService_DeleteComment_ForeignAuthorForbidden(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: postID, UserID: 10}, nil
	}
	commentRepo.deleteThreadFn = func(_ context.Context, _ uint) error {
		t.Fatal("forbidden delete must not mutate")
		return nil
	}

	svc, _ := newCommentService(commentRepo, noopPostRepo())
	_, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, PostID: 1, CommentID: 7})
	assertForbiddenError(t, err)
}

// A thread scenario: C1 (top, group 1), C2 (top, group 2), C3 (reply to C1,
// group 1). The top-level page holds only C1 and C2; C3 shows up under C1.
func TestCommentService_ThreadPaging(t *testing.T) {
	t.Parallel()

	c1 := &models.Comment{ID: 1, PostID: 1, GroupNumber: 1}
	c2 := &models.Comment{ID: 2, PostID: 1, GroupNumber: 2}
	parent := c1.ID
	c3 := &models.Comment{ID: 3, PostID: 1, GroupNumber: 1, ParentID: &parent}
	all := []*models.Comment{c1, c2, c3}

	commentRepo := noopCommentRepo()
	commentRepo.listTopLevelFn = func(_ context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
		var out []*models.Comment
		for _, c := range all {
			if c.PostID == postID && c.ParentID == nil {
				out = append(out, c)
			}
		}
		return out, nil
	}
	commentRepo.countTopLevelFn = func(_ context.Context, _ uint) (int64, error) { return 2, nil }
	commentRepo.getByPostFn = func(_ context.Context, postID, id uint) (*models.Comment, error) {
		for _, c := range all {
			if c.PostID == postID && c.ID == id {
				return c, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	}
	commentRepo.listRepliesFn = func(_ context.Context, parentID uint, limit, offset int) ([]*models.Comment, error) {
		var out []*models.Comment
		for _, c := range all {
			if c.ParentID != nil && *c.ParentID == parentID {
				out = append(out, c)
			}
		}
		return out, nil
	}

	svc, _ := newCommentService(commentRepo, noopPostRepo())
	ctx := context.Background()

	topLevel, total, err := svc.ListComments(ctx, ListCommentsInput{PostID: 1, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, topLevel, 2)
	assert.Equal(t, uint(1), topLevel[0].ID)
	assert.Equal(t, uint(2), topLevel[1].ID)

	replies, err := svc.ListReplies(ctx, ListRepliesInput{PostID: 1, ParentID: 1})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, uint(3), replies[0].ID)
}

func TestCommentService_CreateComment_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("connection reset")
	commentRepo := noopCommentRepo()
	commentRepo.createFn = func(_ context.Context, _ *models.Comment) error { return repoErr }

	svc, _ := newCommentService(commentRepo, noopPostRepo())
	_, err := svc.CreateComment(context.Background(), CreateCommentInput{UserID: 1, PostID: 1, Content: "hi"})
	assert.ErrorIs(t, err, repoErr)
}
