// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ToggleFavorite handles POST /api/posts/:id/comments/:commentId/favorite
// (protected). Flips the caller's favorite on the comment and reports the
// resulting state.
// @Summary Toggle a favorite on a comment
// @Tags favorites
// @Produce json
// @Param id path int true "Post ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} service.ToggleResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId}/favorite [post]
func (s *Server) ToggleFavorite(c *fiber.Ctx) error {
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

	result, err := s.favoriteService.Toggle(ctx, userID, postID, commentID)
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishPostEvent(postID, EventFavoriteToggled, map[string]interface{}{
		"post_id":    postID,
		"comment_id": commentID,
		"favorited":  result.Favorited,
		"count":      result.Count,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	// Favorites move the trending rank; let list views know to refetch.
	s.publishBroadcastEvent(EventTrendingUpdated, map[string]interface{}{
		"post_id": postID,
	})

	return c.JSON(result)
}

// GetPostFavorites handles GET /api/posts/:id/favorites (public). Returns
// the ids of the post's comments the caller has favorited; anonymous
// callers get an empty list, not an error.
// @Summary List the caller's favorited comment ids for a post
// @Tags favorites
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{comment_ids=[]int}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/favorites [get]
func (s *Server) GetPostFavorites(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ids, err := s.favoriteService.ListForPost(ctx, postID, s.caller(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"comment_ids": ids,
	})
}
