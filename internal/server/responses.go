package server

import "blogshare/internal/models"

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Message string `json:"message" example:"User registered successfully"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	ID       uint   `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
	Token    string `json:"token"`
}

// CreatePostResponse is returned by POST /posts.
type CreatePostResponse struct {
	Message string          `json:"message" example:"Post created successfully"`
	Post    models.PostView `json:"post"`
}

// DeletePostResponse is returned by DELETE /posts/{id}.
type DeletePostResponse struct {
	Message string `json:"message" example:"Post deleted successfully"`
	PostID  uint   `json:"post_id" example:"1"`
}
