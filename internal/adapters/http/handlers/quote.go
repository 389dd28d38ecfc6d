package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-service/internal/app"
	"github.com/jsamuelsen/quote-service/internal/domain"
)

// QuoteHandler handles quote-related HTTP endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteRequest is the body of create and update requests.
// Both fields must be present; empty strings are accepted.
type QuoteRequest struct {
	Book  *string `json:"book"  validate:"required"`
	Quote *string `json:"quote" validate:"required"`
}

// QuoteResponse is the HTTP response structure for a quote.
type QuoteResponse struct {
	ID         string    `json:"id"`
	Book       string    `json:"book"`
	Quote      string    `json:"quote"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q *domain.Quote) *QuoteResponse {
	return &QuoteResponse{
		ID:         q.ID.String(),
		Book:       q.Book,
		Quote:      q.Quote,
		InsertedAt: q.InsertedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

// CreateQuote handles POST /quotes
//
// @Summary Create a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body QuoteRequest true "Quote"
// @Success 201 {object} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if !bindQuoteRequest(c, &req) {
		return
	}

	quote, err := h.service.CreateQuote(c.Request.Context(), *req.Book, *req.Quote)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toQuoteResponse(quote))
}

// ListQuotes handles GET /quotes
// Returns every stored quote; an empty store yields [].
//
// @Summary List quotes
// @Tags quotes
// @Produce json
// @Success 200 {array} QuoteResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.service.ListQuotes(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := make([]*QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, toQuoteResponse(q))
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateQuote handles PUT /quotes/:id
// Replaces book and quote text. Responds 200 with no body.
//
// @Summary Update a quote
// @Tags quotes
// @Accept json
// @Param id path string true "Quote ID"
// @Param quote body QuoteRequest true "Quote"
// @Success 200
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	var req QuoteRequest
	if !bindQuoteRequest(c, &req) {
		return
	}

	if err := h.service.UpdateQuote(c.Request.Context(), id, *req.Book, *req.Quote); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteQuote handles DELETE /quotes/:id
//
// @Summary Delete a quote
// @Tags quotes
// @Param id path string true "Quote ID"
// @Success 200
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	id, ok := parseQuoteID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteQuote(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.POST("", h.CreateQuote)
	quotes.GET("", h.ListQuotes)
	quotes.PUT("/:id", h.UpdateQuote)
	quotes.DELETE("/:id", h.DeleteQuote)
}

// parseQuoteID reads the :id path parameter. On failure it writes a 400 and returns false.
func parseQuoteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "quote id must be a valid UUID")
		return uuid.Nil, false
	}

	return id, true
}

// bindQuoteRequest decodes and validates the body. On failure it writes
// a 400 (413 for an oversized body) and returns false.
func bindQuoteRequest(c *gin.Context, req *QuoteRequest) bool {
	err := dto.BindAndValidate(c, req)

	switch {
	case err == nil:
		return true
	case errors.Is(err, dto.ErrValidation):
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
	case errors.Is(err, dto.ErrBodyTooLarge):
		dto.RespondWithCode(c, dto.ErrorCodePayloadTooLarge, err.Error())
	default:
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, "request body must be a JSON object with string book and quote")
	}

	return false
}
