package server

import (
	"blogshare/internal/media"
	"blogshare/internal/models"
	"blogshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postForm carries the text fields of create and update requests. Both multipart forms
// and JSON bodies are accepted.
type postForm struct {
	Title       string       `json:"title" form:"title"`
	Description string       `json:"description" form:"description"`
	ExternalURL string       `json:"external_url" form:"external_url"`
	OwnerID     ownerIDField `json:"owner_id" form:"owner_id"`
}

type deletePostRequest struct {
	OwnerID ownerIDField `json:"owner_id" form:"owner_id"`
}

// CreatePost handles POST /posts
// @Summary Create a post
// @Description Upload an image and create a post owned by owner_id
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image (jpeg, jpg, png or gif)"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param external_url formData string true "External URL"
// @Param owner_id formData string true "Owner id"
// @Success 201 {object} CreatePostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ownerID, err := s.CallerIdentity(c, string(form.OwnerID))
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.UserContext()

	fh, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image is required"))
	}

	imageURL, err := s.intake.Accept(ctx, media.FromFileHeader(fh))
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		OwnerID:     ownerID,
		Title:       form.Title,
		Description: form.Description,
		ExternalURL: form.ExternalURL,
		ImageURL:    imageURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(CreatePostResponse{
		Message: "Post created successfully",
		Post:    post.View(),
	})
}

// ListRecentPosts handles GET /posts/recent
// @Summary Recent posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostView
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/recent [get]
func (s *Server) ListRecentPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListRecent(c.UserContext(), 0)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// ListAllPosts handles GET /posts/all
// @Summary All posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostView
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/all [get]
func (s *Server) ListAllPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListAll(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// ListOwnerPosts handles GET /posts/owner/:ownerId
// @Summary Posts by owner
// @Tags posts
// @Produce json
// @Param ownerId path string true "Owner id"
// @Success 200 {array} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /posts/owner/{ownerId} [get]
func (s *Server) ListOwnerPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListByOwner(c.UserContext(), c.Params("ownerId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /posts/:id
// @Summary Update a post
// @Description Only the owner may update. The image is replaced only when a new one is sent.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Post ID"
// @Param image formData file false "Replacement image"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param external_url formData string false "External URL"
// @Param owner_id formData string true "Caller owner id"
// @Success 200 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		if handled(err) {
			return nil
		}
		return err
	}

	var form postForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	callerID, err := s.CallerIdentity(c, string(form.OwnerID))
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.UserContext()

	var imageURL string
	if fh, ferr := c.FormFile("image"); ferr == nil {
		imageURL, err = s.intake.Accept(ctx, media.FromFileHeader(fh))
		if err != nil {
			return respondError(c, err)
		}
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		PostID:        postID,
		CallerOwnerID: callerID,
		Title:         form.Title,
		Description:   form.Description,
		ExternalURL:   form.ExternalURL,
		ImageURL:      imageURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post.View())
}

// DeletePost handles DELETE /posts/:id
// @Summary Delete a post
// @Description Only the owner may delete. The stored image is kept.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body deletePostRequest false "Caller owner id"
// @Success 200 {object} DeletePostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		if handled(err) {
			return nil
		}
		return err
	}

	var req deletePostRequest
	// A token-authenticated delete may omit the body.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
	}

	callerID, err := s.CallerIdentity(c, string(req.OwnerID))
	if err != nil {
		return respondError(c, err)
	}

	deletedID, err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		PostID:        postID,
		CallerOwnerID: callerID,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(DeletePostResponse{
		Message: "Post deleted successfully",
		PostID:  deletedID,
	})
}
