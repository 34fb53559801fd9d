package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/interface/http/dto"
	"github.com/oksasatya/go-hexagonal-users/pkg/mapper"
	"github.com/oksasatya/go-hexagonal-users/pkg/response"
)

// UserUseCases is everything the users routes drive.
type UserUseCases interface {
	application.UserCreation
	application.UserDisplay
	application.UserDeletion
	application.UserDetailsModification
	application.UserSearch
}

type UserHandler struct {
	Svc    UserUseCases
	Logger *logrus.Logger
}

func NewUserHandler(svc UserUseCases, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserHandler{Svc: svc, Logger: logger}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserModel
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cmd, err := dto.CreateUserModelToCommand().Apply(&req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	u, err := h.Svc.CreateBy(c.Request.Context(), *cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	model, _ := dto.UserToModel().Apply(u)
	c.Header("Location", c.FullPath()+"/"+model.UserID)
	response.Success(c, http.StatusCreated, model, "user created", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.DisplayAll(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	models, _ := mapper.ApplyAll(dto.UserToModel(), users)
	response.Success(c, http.StatusOK, models, "users", map[string]any{"count": len(models)})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := entity.UserIDFrom(c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	u, found, err := h.Svc.DisplayByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !found {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	model, _ := dto.UserToModel().Apply(u)
	response.Success(c, http.StatusOK, model, "user", nil)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	email, err := entity.EmailAddressFrom(c.Query("email"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	u, found, err := h.Svc.DisplayByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !found {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	model, _ := dto.UserToModel().Apply(u)
	response.Success(c, http.StatusOK, model, "user", nil)
}

func (h *UserHandler) Change(c *gin.Context) {
	var req dto.ChangeUserDetailsModel
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	cmd, err := dto.ChangeUserDetailsModelToCommand(c.Param("id")).Apply(&req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	u, err := h.Svc.ChangeBy(c.Request.Context(), *cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	model, _ := dto.UserToModel().Apply(u)
	response.Success(c, http.StatusOK, model, "user updated", nil)
}

// Delete answers 404 for unknown users even though deletion itself is
// idempotent.
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := entity.UserIDFrom(c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	ctx := c.Request.Context()
	_, found, err := h.Svc.DisplayByID(ctx, id)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !found {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	if err := h.Svc.DeleteBy(ctx, id); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search queries the user index: GET /users/search?q=...&size=10
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
