package handlers

import (
	"encoding/json"
	"net/http"

	"postboard/internal/models"
	"postboard/internal/service"
	"postboard/internal/session"
)

type PostResponse struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// CreatePostRequest accepts the author as a number or a numeric string.
type CreatePostRequest struct {
	Text   string      `json:"text"`
	Author json.Number `json:"author"`
}

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, PostResponse{ID: p.ID, Text: p.Text})
	}

	writeSuccess(w, response, http.StatusOK)
}

// CreatePost falls back to the logged-in user when the body names no author.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, service.ErrInvalidData.Message, http.StatusBadRequest)
		return
	}

	var authorID int64
	if req.Author != "" {
		id, err := req.Author.Int64()
		if err != nil {
			WriteError(w, service.ErrInvalidData.Message, http.StatusBadRequest)
			return
		}
		authorID = id
	} else if p, ok := session.PrincipalFrom(r.Context()); ok {
		authorID = p.ID()
	}

	_, err := h.PostService.CreatePost(r.Context(), models.CreatePostRequest{
		Text:     req.Text,
		AuthorID: authorID,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, StatusResponse{Status: "success", Message: "Post added successfully"}, http.StatusOK)
}
