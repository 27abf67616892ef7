package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"shop-service/internal/dto"
	"shop-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	users service.UserService
	log   *zap.Logger
}

func NewUserHandler(users service.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid id", nil))
		return 0, false
	}
	return id, true
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("user not found"))
			return
		}
		h.log.Error("get user failed", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(u))
}

func (h *UserHandler) List(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count < 1 {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("count must be >= 1", nil))
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("page must be >= 1", nil))
		return
	}

	users, err := h.users.GetByFilter(c.Request.Context(), service.UserListFilter{Count: count, Page: page})
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.ToUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	u, err := h.users.Create(c.Request.Context(), service.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			h.log.Warn("duplicate user", zap.String("username", req.Username), zap.String("email", req.Email))
			c.JSON(http.StatusBadRequest, dto.NewConflictError(err.Error()))
		default:
			h.log.Error("create user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	u, err := h.users.Update(c.Request.Context(), id, service.UserPatch{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, dto.NewNotFoundError("user not found"))
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, dto.NewConflictError(err.Error()))
		default:
			h.log.Error("update user failed", zap.Int64("user_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.log.Error("delete user failed", zap.Int64("user_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.Status(http.StatusNoContent)
}
