package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory-tracker/config"
	"inventory-tracker/internal/delivery/dto"
	"inventory-tracker/internal/delivery/http/handler"
	"inventory-tracker/internal/delivery/http/middleware"
	"inventory-tracker/internal/repository"
	"inventory-tracker/internal/usecase"
	"inventory-tracker/pkg/jwt"
	"inventory-tracker/pkg/response"
	"inventory-tracker/pkg/validator"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

func setupRouter(t *testing.T, protect bool) http.Handler {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	productRepo := repository.NewMemoryProductRepository()
	sessionRepo := repository.NewMemorySessionRepository()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour})
	v := validator.NewValidator()

	productUsecase := usecase.NewProductUsecase(log, productRepo)
	authUsecase := usecase.NewAuthUsecase(log, config.AuthConfig{Username: "admin", PasswordHash: string(hash)}, sessionRepo, jwtService)

	return NewRouter(
		handler.NewProductHandler(productUsecase, v),
		handler.NewAuthHandler(authUsecase, v),
		handler.NewHealthHandler(log, productRepo, config.StoreDriverMemory),
		middleware.NewAuthMiddleware(authUsecase),
		middleware.NewCORSMiddleware("*"),
		middleware.NewLoggingMiddleware(log),
		protect,
	).Setup()
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
}

func TestProductLifecycleScenario(t *testing.T) {
	h := setupRouter(t, false)

	rr := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","count":5}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body)
	}
	var created dto.ProductResponse
	decode(t, rr, &created)
	if created.Name != "Widget" || created.Count.String() != "5" {
		t.Fatalf("unexpected created product: %+v", created)
	}

	rr = do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","count":"3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body)
	}
	var incremented dto.ProductResponse
	decode(t, rr, &incremented)
	if incremented.Count.String() != "8" || incremented.ID != created.ID {
		t.Fatalf("unexpected incremented product: %+v", incremented)
	}

	rr = do(t, h, http.MethodGet, "/api/products?search=widget", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var list dto.ProductListResponse
	decode(t, rr, &list)
	if list.TotalItems != 1 || list.TotalPages != 1 || list.CurrentPage != 1 || len(list.Products) != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}

	rr = do(t, h, http.MethodPut, "/api/products", `{"name":"Widget","newName":"Gadget"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body)
	}
	var renamed dto.ProductResponse
	decode(t, rr, &renamed)
	if renamed.Name != "Gadget" || renamed.Count.String() != "8" {
		t.Fatalf("unexpected renamed product: %+v", renamed)
	}

	rr = do(t, h, http.MethodDelete, "/api/products", `{"productName":"Gadget"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body)
	}
	var msg response.MessageResponse
	decode(t, rr, &msg)
	if msg.Message != "Product deleted successfully" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	rr = do(t, h, http.MethodGet, "/api/products?search=Gadget", "")
	decode(t, rr, &list)
	if list.TotalItems != 0 || len(list.Products) != 0 || list.TotalPages != 0 {
		t.Fatalf("expected empty result, got %+v", list)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"products":[]`)) {
		t.Fatalf("expected empty products array, got %s", rr.Body)
	}
}

func TestProductErrors(t *testing.T) {
	h := setupRouter(t, false)
	do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","count":8}`)
	do(t, h, http.MethodPost, "/api/products", `{"name":"Bolt","count":1}`)

	tests := []struct {
		name    string
		method  string
		body    string
		status  int
		message string
	}{
		{"create missing count", http.MethodPost, `{"name":"x"}`, http.StatusBadRequest, "Invalid input"},
		{"create missing name", http.MethodPost, `{"count":1}`, http.StatusBadRequest, "Invalid input"},
		{"create non-numeric count", http.MethodPost, `{"name":"x","count":"abc"}`, http.StatusBadRequest, "Invalid input"},
		{"create long name", http.MethodPost, `{"name":"` + strings.Repeat("n", 256) + `","count":1}`, http.StatusBadRequest, "Invalid input"},
		{"update long new name", http.MethodPut, `{"name":"Widget","newName":"` + strings.Repeat("n", 256) + `"}`, http.StatusBadRequest, "Invalid input"},
		{"create too large", http.MethodPost, `{"name":"x","count":1e25}`, http.StatusBadRequest, "Invalid input"},
		{"create huge exponent", http.MethodPost, `{"name":"x","count":"1e400"}`, http.StatusBadRequest, "Invalid input"},
		{"update too large", http.MethodPut, `{"name":"Widget","count":-123456789012345678901}`, http.StatusBadRequest, "Invalid input"},
		{"create too precise", http.MethodPost, `{"name":"x","count":"0.0000000000000000001"}`, http.StatusBadRequest, "Invalid input"},
		{"create malformed", http.MethodPost, `{"name":`, http.StatusBadRequest, "Request body contains badly-formed JSON"},
		{"create two objects", http.MethodPost, `{"name":"x","count":1}{}`, http.StatusBadRequest, "Request body must only contain a single JSON object"},
		{"update nothing", http.MethodPut, `{"name":"Widget"}`, http.StatusBadRequest, "Invalid input"},
		{"update same count", http.MethodPut, `{"name":"Widget","count":8.0}`, http.StatusBadRequest, "At least one change is required"},
		{"update unknown", http.MethodPut, `{"name":"ghost","count":1}`, http.StatusNotFound, "Product not found"},
		{"update rename conflict", http.MethodPut, `{"name":"Widget","newName":"Bolt"}`, http.StatusConflict, "Product name already exists"},
		{"delete missing name", http.MethodDelete, `{}`, http.StatusBadRequest, "Invalid input"},
		{"delete unknown", http.MethodDelete, `{"productName":"ghost"}`, http.StatusNotFound, "Product not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, "/api/products", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body)
			}
			var e response.ErrorResponse
			decode(t, rr, &e)
			if e.Error != tt.message {
				t.Fatalf("expected error %q, got %q", tt.message, e.Error)
			}
		})
	}
}

func TestRequestBodyLimits(t *testing.T) {
	h := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`name=x`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}

	big := `{"name":"` + strings.Repeat("a", 2<<20) + `","count":1}`
	rr = do(t, h, http.MethodPost, "/api/products", big)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestListQueryFallbacks(t *testing.T) {
	h := setupRouter(t, false)
	for i := 0; i < 12; i++ {
		do(t, h, http.MethodPost, "/api/products", `{"name":"item`+string(rune('a'+i))+`","count":1}`)
	}

	rr := do(t, h, http.MethodGet, "/api/products?page=abc&limit=-4", "")
	var list dto.ProductListResponse
	decode(t, rr, &list)
	if list.CurrentPage != 1 || len(list.Products) != 10 || list.TotalPages != 2 || list.TotalItems != 12 {
		t.Fatalf("unexpected fallback list: %+v", list)
	}

	rr = do(t, h, http.MethodGet, "/api/products?page=2&limit=5", "")
	decode(t, rr, &list)
	if list.CurrentPage != 2 || len(list.Products) != 5 || list.TotalPages != 3 || list.Products[0].Name != "itemf" {
		t.Fatalf("unexpected second page: %+v", list)
	}

	for _, page := range []string{"9223372036854775807", "922337203685477582"} {
		rr = do(t, h, http.MethodGet, "/api/products?page="+page, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("page %s: expected 200, got %d: %s", page, rr.Code, rr.Body)
		}
		decode(t, rr, &list)
		if len(list.Products) != 0 || list.TotalItems != 12 {
			t.Fatalf("page %s: expected an empty page, got %+v", page, list)
		}
	}

	rr = do(t, h, http.MethodGet, "/api/products?name=itemc", "")
	decode(t, rr, &list)
	if list.TotalItems != 1 || list.Products[0].Name != "itemc" {
		t.Fatalf("unexpected exact match: %+v", list)
	}
}

func TestAuthFlow(t *testing.T) {
	h := setupRouter(t, true)

	rr := do(t, h, http.MethodGet, "/api/products", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/auth/login", `{"username":"admin","password":"s3cret"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body)
	}
	var token dto.TokenResponse
	decode(t, rr, &token)
	bearer := "Bearer " + token.AccessToken

	rr = do(t, h, http.MethodGet, "/api/auth/session", "", "Authorization", bearer)
	var session dto.SessionResponse
	decode(t, rr, &session)
	if rr.Code != http.StatusOK || !session.Authenticated || session.Username != "admin" {
		t.Fatalf("unexpected session: %d %+v", rr.Code, session)
	}

	rr = do(t, h, http.MethodGet, "/api/products", "", "Authorization", bearer)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodPost, "/api/auth/logout", "", "Authorization", bearer)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/api/auth/session", "", "Authorization", bearer)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}
}

func TestProductsArePublicByDefault(t *testing.T) {
	h := setupRouter(t, false)
	rr := do(t, h, http.MethodGet, "/api/products", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/api/auth/session", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for session without token, got %d", rr.Code)
	}
}

func TestHealthAndCORS(t *testing.T) {
	h := setupRouter(t, false)

	rr := do(t, h, http.MethodGet, "/api/health", "")
	var health dto.HealthResponse
	decode(t, rr, &health)
	if rr.Code != http.StatusOK || health.Status != "ok" || health.Store != config.StoreDriverMemory {
		t.Fatalf("unexpected health: %d %+v", rr.Code, health)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}

	rr = do(t, h, http.MethodOptions, "/api/products", "", "Origin", "http://example.com")
	if rr.Code != http.StatusOK || rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight: %d %v", rr.Code, rr.Header())
	}

	rr = do(t, h, http.MethodGet, "/api/health", "", "X-Request-Id", "abc")
	if rr.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("expected request id to be echoed")
	}
}
