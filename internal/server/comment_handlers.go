// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"time"

	"tangerine/internal/models"
	"tangerine/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comments (protected).
// A request without parent_id starts a new thread and gets the next group
// number; one with parent_id joins the parent's thread.
// @Summary Create a comment or reply
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string,parent_id=int} true "Comment body"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	created, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:   userID,
		PostID:   postID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishPostEvent(postID, EventCommentCreated, map[string]interface{}{
		"post_id":    postID,
		"comment":    created,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	// Replies additionally notify the thread starter directly.
	if created.ParentID != nil {
		if parent, perr := s.commentRepo.GetByID(ctx, *created.ParentID); perr == nil && parent.UserID != userID {
			s.publishUserEvent(parent.UserID, EventCommentCreated, map[string]interface{}{
				"post_id": postID,
				"comment": created,
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetComments handles GET /api/posts/:id/comments (public). Returns the
// post's top-level comments in thread order with reply and favorite counts.
// @Summary List top-level comments for a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Param page query int false "Page (1-indexed)"
// @Param size query int false "Page size (max 100)"
// @Success 200 {object} object{comments=[]models.Comment,total=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePageRequest(c)

	comments, total, err := s.commentService.ListComments(ctx, service.ListCommentsInput{
		PostID: postID,
		Page:   page.Page,
		Size:   page.Size,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"comments": comments,
		"total":    total,
		"page":     page.Page,
		"size":     page.Size,
	})
}

// GetComment handles GET /api/posts/:id/comments/:commentId (public).
func (s *Server) GetComment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(ctx, postID, commentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comment)
}

// GetCommentReplies handles GET /api/posts/:id/comments/:commentId/replies
// (public). Replies come back oldest first.
func (s *Server) GetCommentReplies(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	parentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	page := parsePageRequest(c)

	replies, err := s.commentService.ListReplies(ctx, service.ListRepliesInput{
		PostID:   postID,
		ParentID: parentID,
		Page:     page.Page,
		Size:     page.Size,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(replies)
}

// UpdateComment handles PUT /api/posts/:id/comments/:commentId (owner only).
// The body may echo the comment id; a mismatch with the path is rejected
// before anything is read.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	updated, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
		BodyID:    req.ID,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishPostEvent(postID, EventCommentUpdated, map[string]interface{}{
		"post_id":    postID,
		"comment":    updated,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.JSON(updated)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId (owner
// only). Deleting a top-level comment takes its direct replies with it; the
// thread's group number is never reused.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	_, err = s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishPostEvent(postID, EventCommentDeleted, map[string]interface{}{
		"post_id":    postID,
		"comment_id": commentID,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})

	return c.SendStatus(fiber.StatusOK)
}
