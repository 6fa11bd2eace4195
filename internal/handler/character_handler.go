package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MfFischer/game-of-thrones-api/internal/middleware"
	"github.com/MfFischer/game-of-thrones-api/internal/models"
	"github.com/MfFischer/game-of-thrones-api/internal/service"
	appErrors "github.com/MfFischer/game-of-thrones-api/pkg/errors"
	"github.com/MfFischer/game-of-thrones-api/pkg/response"
)

type characterService interface {
	List(ctx context.Context, params url.Values) (*service.CharacterPage, error)
	Get(ctx context.Context, id int64) (*models.Character, error)
	Create(ctx context.Context, req service.CharacterRequest) (*models.Character, error)
	Update(ctx context.Context, id int64, req service.CharacterRequest) (*models.Character, error)
	Delete(ctx context.Context, id int64) error
}

// CharacterHandler exposes character endpoints.
type CharacterHandler struct {
	service characterService
}

// NewCharacterHandler builds a new handler.
func NewCharacterHandler(service characterService) *CharacterHandler {
	return &CharacterHandler{service: service}
}

// List godoc
// @Summary List characters
// @Description Filter, sort and paginate characters. Text filters are case-insensitive; age bounds are inclusive.
// @Tags Characters
// @Produce json
// @Param house query string false "House (exact, case-insensitive)"
// @Param name query string false "Name contains (case-insensitive)"
// @Param role query string false "Role (exact, case-insensitive)"
// @Param age_more_than query int false "Minimum age (inclusive)"
// @Param age_less_than query int false "Maximum age (inclusive)"
// @Param sort_by query string false "Sort field" Enums(name, age, house, role)
// @Param sort_order query string false "Sort direction" Enums(asc, desc)
// @Param skip query int false "Records to skip" default(0)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /characters [get]
func (h *CharacterHandler) List(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Result.Items, page.Result.Pagination(), map[string]interface{}{
		"filters_applied": page.Spec.Applied(),
		"sort_applied":    page.Spec.AppliedSort(),
	})
}

// Get godoc
// @Summary Get character
// @Tags Characters
// @Produce json
// @Param id path int true "Character ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /characters/{id} [get]
func (h *CharacterHandler) Get(c *gin.Context) {
	id, err := characterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	character, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, character, nil)
}

// Create godoc
// @Summary Create character
// @Tags Characters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CharacterRequest true "Character payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /characters [post]
func (h *CharacterHandler) Create(c *gin.Context) {
	var req service.CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.DecodeError(err))
		return
	}
	character, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.ContextResourceIDKey, character.ID)
	response.Created(c, character)
}

// Update godoc
// @Summary Replace character
// @Tags Characters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Character ID"
// @Param payload body service.CharacterRequest true "Character payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /characters/{id} [put]
func (h *CharacterHandler) Update(c *gin.Context) {
	id, err := characterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.DecodeError(err))
		return
	}
	character, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, character, nil)
}

// Delete godoc
// @Summary Delete character
// @Tags Characters
// @Security BearerAuth
// @Param id path int true "Character ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /characters/{id} [delete]
func (h *CharacterHandler) Delete(c *gin.Context) {
	id, err := characterID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func characterID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Validation("invalid character id", map[string][]string{
			"id": {"must be a positive integer"},
		})
	}
	return id, nil
}
