package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/response"
)

const MsgLoggedIn = "Logged in!"

type UserHandler struct {
	Svc *application.UserService
}

func NewUserHandler(svc *application.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Image    string `json:"image" binding:"omitempty,url"`
}

// Credentials are checked by the service only; an unreadable body is a bad
// login too, so Login answers 200 or 401 and never 422.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userDTO is a user without its password.
type userDTO struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Image  string   `json:"image"`
	Places []string `json:"places"`
}

func toUserDTO(u *entity.User) userDTO {
	places := u.Places
	if places == nil {
		places = []string{}
	}
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image, Places: places}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	response.Success(c, http.StatusOK, "users", out)
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    req.Image,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "user", toUserDTO(u))
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.Unauthorized(application.MsgInvalidCredentials))
		return
	}
	if _, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, MsgLoggedIn)
}
