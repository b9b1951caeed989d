package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/api"
	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
	"storefront/internal/adapter/repository"
	"storefront/internal/infrastructure/firebase"
	"storefront/internal/infrastructure/websocket"
	"storefront/internal/usecase"
	"storefront/internal/view"
	"storefront/pkg/errors"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(ctx context.Context, token string) (*firebase.Identity, error) {
	switch token {
	case "admin-token":
		return &firebase.Identity{UID: "admin", Claims: map[string]interface{}{"admin": true}}, nil
	case "user-token":
		return &firebase.Identity{UID: "user", Claims: map[string]interface{}{}}, nil
	default:
		return nil, assert.AnError
	}
}

type okProber struct{}

func (okProber) Probe(ctx context.Context, url string) error { return nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	e      *echo.Echo
	cache  *usecase.CatalogCache
	admin  *usecase.AdminMutator
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryDocumentStore()
	repository.SeedDemoCatalog(store)
	products := repository.NewProductRepository(store)

	cache := usecase.NewCatalogCache(products, "pt-BR")
	require.NoError(t, cache.Hydrate(context.Background()))

	wsManager := websocket.NewManager()
	readiness := usecase.AlwaysReady()
	sessions := usecase.NewSessionRegistry(usecase.SessionDeps{
		Products:    products,
		Snapshots:   repository.NewMemoryCartSnapshotRepository(),
		Readiness:   readiness,
		Notifier:    wsManager,
		Prober:      okProber{},
		ReadyWithin: time.Second,
	})
	admin := usecase.NewAdminMutator(products, cache, nil, wsManager)
	t.Cleanup(admin.Wait)

	handler.Setup(
		cache,
		products,
		admin,
		usecase.NewCheckoutMessage("R$", "BR", "5511999990000"),
		readiness,
		wsManager,
		view.NewRenderer("R$"),
		2,
	)

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e,
		middleware.NewSessionMiddleware(sessions, false),
		middleware.NewAuthMiddleware(stubVerifier{}),
		middleware.NewAdminMiddleware("admin"),
	)

	return &testServer{t: t, e: e, cache: cache, admin: admin}
}

func (s *testServer) do(method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			s.cookie = cookie
		}
	}

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"catalog_loaded":true`)
}

func TestCatalogKeepsGridStatePerSession(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodGet, "/v1/catalog", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.cookie, "first visit issues a session cookie")
	page := decode[view.CatalogPage](t, env)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.TotalPages)

	_, env = s.do(http.MethodGet, "/v1/catalog?sort=price-asc&page=2", "", "")
	page = decode[view.CatalogPage](t, env)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Moletom Básico", page.Products[0].Name)
	assert.Equal(t, "-21%", page.Products[0].Discount)

	_, env = s.do(http.MethodGet, "/v1/catalog", "", "")
	page = decode[view.CatalogPage](t, env)
	assert.Equal(t, 2, page.Page, "the session remembers its page")

	_, env = s.do(http.MethodGet, "/v1/catalog?category=sale", "", "")
	page = decode[view.CatalogPage](t, env)
	assert.Equal(t, 1, page.Page, "a new filter restarts at page 1")
	assert.Equal(t, 1, page.Total)

	rec, env = s.do(http.MethodGet, "/v1/catalog?sort=random", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeValidation, env.Error.Code)
}

func TestDetailAndCartFlow(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodGet, "/v1/detail?id=moletom-basico", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[view.DetailView](t, env)
	assert.Equal(t, "rendered", detail.State)
	assert.Equal(t, "Preto", detail.Selection.Color)
	assert.Equal(t, "P", detail.Selection.Size)
	assert.Equal(t, "Últimas unidades", detail.Sizes[0].Hint)

	_, env = s.do(http.MethodPost, "/v1/detail/color", `{"color":"Cinza"}`, "")
	detail = decode[view.DetailView](t, env)
	assert.Equal(t, "G", detail.Selection.Size)

	rec, env = s.do(http.MethodPost, "/v1/detail/size", `{"size":"GG"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "sold out under Cinza")

	_, _ = s.do(http.MethodPost, "/v1/detail/quantity", `{"quantity":42}`, "")
	rec, env = s.do(http.MethodPost, "/v1/detail/cart", "", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	cart := decode[view.CartView](t, env)
	assert.Equal(t, 10, cart.ItemCount, "quantity was clamped")

	_, env = s.do(http.MethodPost, "/v1/cart/items", `{"product_id":"bone-aba-curva","size":"U","color":"Azul"}`, "")
	cart = decode[view.CartView](t, env)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "R$ 54,90", cart.Lines[1].Price, "variant price override")

	key := cart.Lines[0].Key
	_, env = s.do(http.MethodPatch, "/v1/cart/items/"+key, `{"delta":-9}`, "")
	cart = decode[view.CartView](t, env)
	assert.Equal(t, 1, cart.Lines[0].Quantity)

	_, env = s.do(http.MethodPatch, "/v1/cart/items/"+key, `{"delta":-1}`, "")
	cart = decode[view.CartView](t, env)
	require.Len(t, cart.Lines, 1, "quantity zero removes the line")

	rec, env = s.do(http.MethodPost, "/v1/cart/checkout", `{"customer_name":"Ana","postal_code":"123","payment_method":"pix"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(http.MethodPost, "/v1/cart/checkout", `{"customer_name":"Ana","postal_code":"01001-000","payment_method":"pix"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode[usecase.Order](t, env)
	assert.True(t, strings.HasPrefix(order.Link, "https://wa.me/5511999990000?text="))

	_, env = s.do(http.MethodGet, "/v1/cart", "", "")
	assert.True(t, decode[view.CartView](t, env).Empty)
}

func TestDetailErrors(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodGet, "/v1/detail?id=missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.CodeNotFound, env.Error.Code)

	rec, env = s.do(http.MethodGet, "/v1/detail", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decode[view.DetailView](t, env).State)

	rec, _ = s.do(http.MethodPost, "/v1/cart/items", `{"product_id":"nope","size":"M","color":"Preto"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.do(http.MethodPost, "/v1/cart/items", `{"product_id":"bone-aba-curva"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeValidation, env.Error.Code)
}

func TestAdminRequiresClaim(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(http.MethodGet, "/v1/admin/products", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/v1/admin/products", "", "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/v1/admin/products", "", "user-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(http.MethodGet, "/v1/admin/products", "", "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decode[view.AdminGrid](t, env).Total)
}

func TestAdminCreateWithStagedImages(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(http.MethodPost, "/v1/admin/images/begin", `{}`, "admin-token")
	assert.Empty(t, decode[map[string]interface{}](t, env)["images"])

	rec, _ := s.do(http.MethodPost, "/v1/admin/images/gradient", `{"gradient":"#fff"}`, "admin-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodPost, "/v1/admin/images/gradient", `{"gradient":"linear-gradient(#fff, #000)"}`, "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodDelete, "/v1/admin/images/0", "", "admin-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "the buffer never goes empty")

	rec, env = s.do(http.MethodPost, "/v1/admin/products", `{"name":"Meia","category":"acessorios","price":19.9}`, "admin-token")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[view.ProductCard](t, env)
	require.NotNil(t, card.Cover)
	assert.Equal(t, "linear-gradient(#fff, #000)", card.Cover.Background)

	_, ok := s.cache.Get(card.ID)
	assert.True(t, ok, "visible before the reconciling fetch")

	rec, _ = s.do(http.MethodPost, "/v1/admin/products", `{"category":"x","price":1}`, "admin-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateAndDelete(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodPut, "/v1/admin/products/camiseta-logo", `{"price":69.9,"old_price":79.9}`, "admin-token")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "-13%", decode[view.ProductCard](t, env).Discount)

	rec, _ = s.do(http.MethodPut, "/v1/admin/products/camiseta-logo", `{}`, "admin-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(http.MethodDelete, "/v1/admin/products/camiseta-logo", "", "admin-token")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := s.cache.Get("camiseta-logo")
	assert.False(t, ok)

	rec, _ = s.do(http.MethodDelete, "/v1/admin/products/camiseta-logo", "", "admin-token")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
