package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopassist/backend/config"
	"github.com/shopassist/backend/internal/domain"
	"github.com/shopassist/backend/internal/infrastructure/cache"
	"github.com/shopassist/backend/internal/infrastructure/catalog"
	"github.com/shopassist/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	os.Exit(exitCode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Cache:  config.CacheConfig{Type: "memory"},
		Search: config.SearchConfig{DefaultPageSize: 5, MaxPageSize: 10},
	}
}

// setupTestRouter wires the real services over the seed catalog with the
// remote assistant disabled
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return setupRouterWithRepo(t, catalog.NewSeedRepository())
}

func setupRouterWithRepo(t *testing.T, repo domain.CatalogRepository) *gin.Engine {
	t.Helper()

	memoryCache := cache.NewMemoryCache(0)
	t.Cleanup(func() { _ = memoryCache.Close() })

	cfg := testConfig()
	catalogService := usecase.NewCatalogService(repo, memoryCache, usecase.CatalogServiceConfig{
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	})
	assistantService := usecase.NewAssistantService(nil, catalogService, nil, usecase.AssistantServiceConfig{})

	handler := NewHandler(catalogService, assistantService, usecase.NewMockLLM(-1))
	return SetupRouter(cfg, handler)
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) domain.ProductPage {
	t.Helper()
	var page domain.ProductPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	return page
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t)

		w := doRequest(router, http.MethodGet, "/health", "")

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "shopassist-backend" {
			t.Errorf("service = %v, want shopassist-backend", response["service"])
		}
		version, ok := response["version"].(string)
		if !ok || strings.TrimSpace(version) == "" {
			t.Errorf("version = %v, want non-empty string", response["version"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doRequest(router, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestListProductsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("paginates with defaults", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/products", "")
		require.Equal(t, http.StatusOK, w.Code)

		page := decodePage(t, w)
		assert.Equal(t, 16, page.Total)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 5, page.PageSize)
		assert.Equal(t, 4, page.TotalPages)
		assert.Len(t, page.Products, 5)
	})

	t.Run("clamps page size", func(t *testing.T) {
		page := decodePage(t, doRequest(router, http.MethodGet, "/api/v1/products?page=2&page_size=500", ""))
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, 2, page.Page)
		assert.Len(t, page.Products, 6)
	})

	t.Run("huge page returns an empty page", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/products?page=461168601842738792", "")
		require.Equal(t, http.StatusOK, w.Code)

		page := decodePage(t, w)
		assert.Equal(t, 16, page.Total)
		assert.Empty(t, page.Products)
	})

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		total   int
	}{
		{name: "query and max price", query: "search=wireless&max_price=300", wantIDs: []string{"1"}},
		{name: "query alias", query: "query=headphones&sort=price-high", wantIDs: []string{"5", "1"}},
		{name: "category sorted by price", query: "category=sports&sort=price-low", wantIDs: []string{"14", "13", "15"}},
		{name: "brand", query: "brand=techbrand&sort=price_asc", wantIDs: []string{"3", "4"}},
		{name: "tags", query: "tags=yoga,%20baking", wantIDs: []string{"12", "14"}},
		{name: "min rating", query: "min_rating=4.85&sort=newest", wantIDs: []string{"16", "5"}},
		{name: "in stock only", query: "in_stock_only=true&page_size=10", total: 15},
		{name: "malformed numbers are ignored", query: "min_price=abc&max_price=&page_size=10", total: 16},
		{name: "inverted price range is swapped", query: "min_price=50&max_price=40", wantIDs: []string{"13"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/api/v1/products?"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			page := decodePage(t, w)
			if tt.wantIDs != nil {
				assert.Equal(t, tt.wantIDs, productIDs(page.Products))
				assert.Equal(t, len(tt.wantIDs), page.Total)
			} else {
				assert.Equal(t, tt.total, page.Total)
			}
		})
	}
}

func TestSearchProductsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("filters from the body", func(t *testing.T) {
		body := `{"query": "headphones", "priceRange": {"min": 0, "max": 300}, "page": 1, "page_size": 10}`
		w := doRequest(router, http.MethodPost, "/api/v1/products/search", body)
		require.Equal(t, http.StatusOK, w.Code)

		page := decodePage(t, w)
		assert.Equal(t, []string{"1"}, productIDs(page.Products))
	})

	t.Run("unknown sort key falls back to relevance", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/products/search", `{"query": "headphones", "sortBy": "bogus"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, decodePage(t, w).Total)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/products/search", `{"query": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validates HTTP method", func(t *testing.T) {
		for _, method := range []string{"PUT", "DELETE", "PATCH"} {
			w := doRequest(router, method, "/api/v1/products/search", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestRankProductsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"query": "headphones", "preferences": {"preferredBrands": ["Sony"]}, "limit": 3}`
	w := doRequest(router, http.MethodPost, "/api/v1/products/rank", body)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Products []domain.Product `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Products, 3)
	assert.Equal(t, 3, response.Total)
	assert.Equal(t, "5", response.Products[0].ID)
	assert.Equal(t, "1", response.Products[1].ID)
}

func TestSuggestionsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/products/suggestions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var suggestions domain.FilterSuggestions
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestions))
	assert.Equal(t, []string{"Electronics", "Fashion", "Home", "Sports", "Books"}, suggestions.Categories)
	assert.Contains(t, suggestions.Brands, "AudioTech")
	assert.Contains(t, suggestions.Tags, "wireless")
	assert.Equal(t, 18.99, suggestions.PriceRange.Min)
	assert.Equal(t, 1299.99, suggestions.PriceRange.Max)
}

func TestGetProductEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/products/1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var product domain.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
		assert.Equal(t, "Wireless Headphones", product.Name)
	})

	t.Run("not found", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/products/999", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "product not found")
	})
}

func TestRefreshCatalogEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/products/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"products": 16}`, w.Body.String())
}

func TestChatEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	chat := func(t *testing.T, body string) domain.ChatResponse {
		t.Helper()
		w := doRequest(router, http.MethodPost, "/api/v1/chat", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var response domain.ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		return response
	}

	t.Run("short message asks for clarification", func(t *testing.T) {
		response := chat(t, `{"message": "hi"}`)

		assert.NotEmpty(t, response.SessionID)
		assert.Equal(t, domain.ChatTypeText, response.ChatType)
		assert.Equal(t, domain.LocalModel, response.ModelUsed)
		assert.Equal(t, domain.LocalSystem, response.SystemUsed)
		assert.Nil(t, response.Action)
	})

	t.Run("add to cart returns the product action", func(t *testing.T) {
		response := chat(t, `{"message": "add to cart Wireless Headphones", "sessionId": "s-1", "chatType": "AUDIO"}`)

		assert.Equal(t, "s-1", response.SessionID)
		assert.Equal(t, domain.ChatTypeAudio, response.ChatType)
		require.NotNil(t, response.Action)
		assert.Equal(t, domain.ActionAddToCart, response.Action.Type)
		require.NotNil(t, response.Action.Product)
		assert.Equal(t, "1", response.Action.Product.ID)
		assert.Contains(t, response.Content, "You now have 1 items in your cart")
	})

	t.Run("cart status reads the client state", func(t *testing.T) {
		body := `{"message": "what is in my cart?", "cart": [{"product": {"id": "7", "name": "Running Shoes", "price": 89.99}, "quantity": 2}]}`
		response := chat(t, body)

		assert.Contains(t, response.Content, "You have 2 items in your cart worth $179.98")
	})

	t.Run("missing message is rejected", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/v1/chat", `{"sessionId": "s-1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMockLLMEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/ai/llm", `{"message": "find headphones", "messages": []}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reply domain.RemoteReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.Content)
	assert.Equal(t, domain.DefaultRemoteModel, reply.ModelUsed)
	assert.Equal(t, domain.DefaultRemoteSystem, reply.SystemUsed)
	require.NotNil(t, reply.Action)
	assert.Equal(t, domain.ActionSearch, reply.Action.Type)

	var data domain.RemoteSearchData
	require.NoError(t, json.Unmarshal(reply.Action.Data, &data))
	assert.Equal(t, "headphones", data.Query)

	w = doRequest(router, http.MethodPost, "/api/v1/ai/llm", `{"message": "  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingRepository struct{}

func (failingRepository) ListProducts(context.Context) ([]domain.Product, error) {
	return nil, errors.New("connection refused")
}

func TestCatalogUnavailable(t *testing.T) {
	router := setupRouterWithRepo(t, failingRepository{})

	for _, path := range []string{"/api/v1/products", "/api/v1/products/suggestions", "/api/v1/products/1"} {
		w := doRequest(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadGateway, w.Code, path)
	}

	w := doRequest(router, http.MethodPost, "/api/v1/chat", `{"message": "wireless headphones"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUnconfiguredServices(t *testing.T) {
	router := SetupRouter(testConfig(), NewHandler(nil, nil, nil))

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/products", ""},
		{http.MethodPost, "/api/v1/products/search", `{}`},
		{http.MethodPost, "/api/v1/chat", `{"message": "hello there"}`},
		{http.MethodPost, "/api/v1/ai/llm", `{"message": "hello there"}`},
	}

	for _, tt := range tests {
		w := doRequest(router, tt.method, tt.path, tt.body)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: Status = %d, want %d", tt.method, tt.path, w.Code, http.StatusServiceUnavailable)
		}
		if !strings.Contains(w.Body.String(), "not configured") {
			t.Errorf("%s %s: body = %s, want 'not configured'", tt.method, tt.path, w.Body.String())
		}
	}
}

func TestCORSOnAPIRoutes(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
