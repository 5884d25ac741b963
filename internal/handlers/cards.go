package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"kanban-board/backend/internal/models"
	"kanban-board/backend/internal/repositories"
	"kanban-board/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CardHandler struct {
	cardService services.CardService
}

func NewCardHandler(cardService services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

func (h *CardHandler) ListCards(c *gin.Context) {
	q := repositories.ListQuery{
		Status:          c.Query("status"),
		Priority:        c.Query("priority"),
		Assignee:        c.Query("assignee"),
		JobNumber:       c.Query("job_number"),
		ServiceQuote:    c.Query("service_quote"),
		Company:         c.Query("company"),
		Tags:            c.Query("tags"),
		Search:          c.Query("search"),
		Ordering:        c.Query("ordering"),
		IncludeInactive: str2bool(c.Query("include_inactive")),
	}

	cards, err := h.cardService.ListCards(q)
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *CardHandler) CreateCard(c *gin.Context) {
	var input models.CardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	card, err := h.cardService.CreateCard(input)
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(id)
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) UpdateCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}

	var input models.CardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	card, err := h.cardService.UpdateCard(id, input)
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) DeleteCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(id); err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *CardHandler) RestoreCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}

	card, err := h.cardService.RestoreCard(id)
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// parseCardID reads the :id path parameter. A non-numeric id targets nothing,
// so it is reported as not found rather than as a validation error.
func parseCardID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return 0, false
	}
	return uint(id), true
}

// str2bool interprets the truthy query string forms accepted for
// include_inactive; everything else is false.
func str2bool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func handleCardError(c *gin.Context, err error) {
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": fieldErrs,
		})
		return
	}

	if errors.Is(err, repositories.ErrCardNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	zap.L().Error("card request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process card request"})
}
