package server

import (
	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Content string `json:"content"`
}

// CreatePost handles POST /posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:  s.currentUserID(c),
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /posts?query=&offset=&limit=
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Query:    c.Query("query"),
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: s.currentUserID(c),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(posts)
}

// GetPost handles GET /posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, s.currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PATCH /posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:  s.currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, s.currentUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Vote handles POST /posts/:id/:vote_type where vote_type is like, dislike or
// neutral.
func (s *Server) Vote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	kind, ok := models.ParseVoteKind(c.Params("vote_type"))
	if !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown vote type"))
	}

	if _, err := s.postService.Vote(c.Context(), service.VoteInput{
		UserID:  s.currentUserID(c),
		PostID:  postID,
		Desired: kind,
	}); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
