// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetTrendingPosts handles GET /api/posts/trending (public). Serves the
// cached ranking; scores decay with time since each post's last activity.
// @Summary List trending posts
// @Tags trending
// @Produce json
// @Param n query int false "Number of posts (default 10, max 100)"
// @Success 200 {array} models.TrendingPost
// @Router /posts/trending [get]
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	n := c.QueryInt("n", 10)

	entries, err := s.trendingService.TopN(c.UserContext(), n)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(entries)
}
