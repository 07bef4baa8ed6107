package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/events"
	"github.com/oksasatya/go-places-api/pkg/response"
	"github.com/oksasatya/go-places-api/pkg/validation"
)

const MsgPlaceDeleted = "Deleted place."

type PlaceHandler struct {
	Svc *application.PlaceService
}

func NewPlaceHandler(svc *application.PlaceService) *PlaceHandler {
	return &PlaceHandler{Svc: svc}
}

type createPlaceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
	Address     string `json:"address" binding:"required"`
	Creator     string `json:"creator" binding:"required"`
	Image       string `json:"image" binding:"omitempty,url"`
}

type updatePlaceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required,min=5"`
}

// bindJSON reports binding and validation failures as one 422.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperror.Validation(validation.ToDetails(err)))
		return false
	}
	return true
}

func placeDTO(p *entity.Place) events.PlaceDocument {
	return application.ToDocument(p)
}

func placeDTOs(ps []*entity.Place) []events.PlaceDocument {
	out := make([]events.PlaceDocument, 0, len(ps))
	for _, p := range ps {
		out = append(out, placeDTO(p))
	}
	return out
}

func (h *PlaceHandler) GetPlace(c *gin.Context) {
	p, err := h.Svc.GetPlace(c.Request.Context(), c.Param("pid"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "place", placeDTO(p))
}

func (h *PlaceHandler) GetPlacesByUser(c *gin.Context) {
	places, err := h.Svc.GetPlacesByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "places", placeDTOs(places))
}

func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	var req createPlaceRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.CreatePlace(c.Request.Context(), application.CreatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Image:       req.Image,
		Creator:     req.Creator,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "place", placeDTO(p))
}

func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	var req updatePlaceRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.UpdatePlace(c.Request.Context(), c.Param("pid"), application.UpdatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "place", placeDTO(p))
}

func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	if err := h.Svc.DeletePlace(c.Request.Context(), c.Param("pid")); err != nil {
		_ = c.Error(err)
		return
	}
	response.Message(c, http.StatusOK, MsgPlaceDeleted)
}

// Search runs a full-text query against the place index. size is optional.
func (h *PlaceHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	places, err := h.Svc.SearchPlaces(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "places", placeDTOs(places))
}
