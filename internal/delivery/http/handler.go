package http

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/shopassist/backend/internal/domain"
)

const (
	serviceName    = "shopassist-backend"
	serviceVersion = "1.0.0"
)

// CatalogUsecase is the catalog behaviour the HTTP layer needs
type CatalogUsecase interface {
	Search(ctx context.Context, request *domain.SearchRequest) (*domain.ProductPage, error)
	Rank(ctx context.Context, request *domain.RankRequest) ([]domain.Product, error)
	Suggestions(ctx context.Context) (domain.FilterSuggestions, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	Refresh(ctx context.Context) ([]domain.Product, error)
}

// ChatUsecase answers one chat turn
type ChatUsecase interface {
	Chat(ctx context.Context, request *domain.ChatRequest) (*domain.ChatResponse, error)
}

// LLMResponder produces replies in the remote assistant wire format
type LLMResponder interface {
	Respond(ctx context.Context, request *domain.AssistantRequest) (*domain.RemoteReply, error)
}

// Handler holds dependencies for HTTP handlers. Any of them may be nil, in
// which case the matching endpoints answer 503.
type Handler struct {
	catalog   CatalogUsecase
	assistant ChatUsecase
	llm       LLMResponder
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog CatalogUsecase, assistant ChatUsecase, llm LLMResponder) *Handler {
	return &Handler{
		catalog:   catalog,
		assistant: assistant,
		llm:       llm,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ListProducts handles GET /products with filters in the query string
func (h *Handler) ListProducts(c *gin.Context) {
	if h.catalog == nil {
		notConfigured(c, "catalog")
		return
	}

	request := parseSearchQuery(c)
	page, err := h.catalog.Search(c.Request.Context(), request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// SearchProducts handles POST /products/search with filters in the body
func (h *Handler) SearchProducts(c *gin.Context) {
	if h.catalog == nil {
		notConfigured(c, "catalog")
		return
	}

	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	page, err := h.catalog.Search(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// RankProducts handles POST /products/rank
func (h *Handler) RankProducts(c *gin.Context) {
	if h.catalog == nil {
		notConfigured(c, "catalog")
		return
	}

	var request domain.RankRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	products, err := h.catalog.Rank(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// Suggestions handles GET /products/suggestions
func (h *Handler) Suggestions(c *gin.Context) {
	if h.catalog == nil {
		notConfigured(c, "catalog")
		return
	}

	suggestions, err := h.catalog.Suggestions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	if h.catalog == nil {
		notConfigured(c, "catalog")
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// RefreshCatalog handles POST /products/refresh
func (h *Handler) RefreshCatalog(c *gin.Context) {
	if h.catalog == nil {
		notConfigured(c, "catalog")
		return
	}

	products, err := h.catalog.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": len(products)})
}

// Chat handles POST /chat
func (h *Handler) Chat(c *gin.Context) {
	if h.assistant == nil {
		notConfigured(c, "assistant")
		return
	}

	var request domain.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := h.assistant.Chat(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// MockLLM handles POST /ai/llm, the stand-in chat completion endpoint
func (h *Handler) MockLLM(c *gin.Context) {
	if h.llm == nil {
		notConfigured(c, "llm")
		return
	}

	var request domain.AssistantRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	reply, err := h.llm.Respond(c.Request.Context(), &request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// parseSearchQuery builds a search request from query parameters. Values
// that do not parse are ignored rather than rejected.
func parseSearchQuery(c *gin.Context) *domain.SearchRequest {
	request := &domain.SearchRequest{
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}

	request.Query = c.Query("search")
	if request.Query == "" {
		request.Query = c.Query("query")
	}
	request.Category = c.Query("category")
	request.Brand = c.Query("brand")
	request.SortBy = domain.SortKey(c.Query("sort"))

	minPrice, hasMin := queryFloat(c, "min_price")
	maxPrice, hasMax := queryFloat(c, "max_price")
	if hasMin || hasMax {
		if !hasMax {
			maxPrice = math.MaxFloat64
		}
		request.PriceRange = &domain.PriceRange{Min: minPrice, Max: maxPrice}
	}

	if rating, ok := queryFloat(c, "min_rating"); ok {
		request.MinRating = &rating
	}

	if inStock, err := strconv.ParseBool(c.Query("in_stock_only")); err == nil {
		request.InStock = inStock
	}

	if tags := c.Query("tags"); tags != "" {
		request.Tags = strings.Split(tags, ",")
	}

	return request
}

func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}

func queryFloat(c *gin.Context, key string) (float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		log.Debug().Str("component", "http").Str("param", key).Str("value", raw).Msg("ignoring malformed query parameter")
		return 0, false
	}
	return value, true
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, "Rate limit exceeded, please try again later"
	case errors.Is(err, domain.ErrCatalogUnavailable):
		status, message = http.StatusBadGateway, "Product catalog is temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Request timed out"
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	}

	c.JSON(status, gin.H{"error": message})
}

func notConfigured(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " service not configured"})
}
