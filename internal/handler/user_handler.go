package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"postboard/internal/models"
	"postboard/internal/service"
)

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AddUserRequest mirrors the column widths of the users table.
type AddUserRequest struct {
	Username string `json:"username" validate:"required,min=4,max=15"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=8,max=60"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Password: u.Password,
	}
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}

	writeSuccess(w, response, http.StatusOK)
}

// GetUser answers 204 with an empty body when the username is unknown.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	user, err := h.UserService.FindByUsername(r.Context(), username)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if user == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeSuccess(w, toUserResponse(*user), http.StatusOK)
}

func (h *Handlers) AddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, service.ErrInvalidData.Message, http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		WriteError(w, service.ErrMissingData.Message, http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	_, err := h.UserService.Register(r.Context(), models.RegisterUserRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, StatusResponse{Status: "success", Message: "User added successfully"}, http.StatusOK)
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if err := h.UserService.Delete(r.Context(), username); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, StatusResponse{Status: "success", Message: "User deleted successfully"}, http.StatusOK)
}
