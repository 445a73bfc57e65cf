package httpserver

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

func TestAdminGuardOnCategoryMutations(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.createUser(t, "user", models.RoleUser)
	adminToken := env.createUser(t, "admin", models.RoleAdmin)

	body := transport.CategoryRequest{Name: "Сварочные аппараты"}

	rec := env.doJSON(http.MethodPost, "/categories", body, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodPost, "/categories", body, userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(http.MethodPost, "/categories", body, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)

	// listing stays public
	rec = env.doJSON(http.MethodGet, "/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decodeJSON[[]transport.CategoryView](t, rec)
	require.Len(t, cats, 1)
}

func TestGarbageBearerTokenIsTreatedAsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodGet, "/products", nil, "garbage.token")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPost, "/categories", transport.CategoryRequest{Name: "x"}, "garbage.token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryMultipartCreateStoresImage(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.createUser(t, "admin", models.RoleAdmin)

	rec := env.doMultipart(t, http.MethodPost, "/categories",
		map[string]string{"name": "Маски", "description": "Защита"},
		"image", "mask.png", []byte("png-bytes"), adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, env.Store.Len())

	cat := decodeJSON[transport.CategoryView](t, rec)
	require.Equal(t, "Маски", cat.Name)
	require.NotNil(t, cat.ImageURL)
}

func TestProductListQueryParamRunsSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cat := &models.Category{Name: "c"}
	require.NoError(t, env.Repo.CreateCategory(ctx, cat))
	for _, name := range []string{"Сварочная маска", "Электроды"} {
		require.NoError(t, env.Repo.CreateProduct(ctx, &models.Product{Name: name, CategoryID: cat.ID}))
	}

	rec := env.doJSON(http.MethodGet, "/products?query=маска", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	found := decodeJSON[[]transport.ProductView](t, rec)
	require.Len(t, found, 1)
	require.Equal(t, "Сварочная маска", found[0].Name)

	rec = env.doJSON(http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decodeJSON[[]transport.ProductView](t, rec)
	require.Len(t, all, 2)
}

func TestRegisterDuplicateUsernameAnswers400(t *testing.T) {
	env := newTestEnv(t)
	body := transport.RegisterRequest{Username: "ivan", Password: "secret"}

	rec := env.doJSON(http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPost, "/auth/register", body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, "duplicates answer 400, not 409")
}

func TestProductCreateValidatesCategory(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.createUser(t, "admin", models.RoleAdmin)

	rec := env.doMultipart(t, http.MethodPost, "/products",
		map[string]string{"name": "Инвертор", "price": "15000", "categoryId": "42"},
		"", "", nil, adminToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderEndpointsArePublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/orders", transport.CreateOrderRequest{
		Items: []transport.OrderItemRequest{{ID: 1, Name: "Электроды", Quantity: 2}},
		CustomerInfo: transport.CustomerInfo{
			FirstName: "Иван", LastName: "Петров",
			Email: "ivan@example.com", Phone: "+79001234567",
		},
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	order := decodeJSON[models.Order](t, rec)
	require.Regexp(t, `^ORD-\d{6}-[0-9A-F]{8}$`, order.OrderNumber)
	require.Equal(t, models.OrderStatusPending, order.Status)

	rec = env.doJSON(http.MethodPut, "/orders/1/status?status=shipped", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeJSON[models.Order](t, rec)
	require.Equal(t, models.OrderStatusShipped, updated.Status)

	rec = env.doJSON(http.MethodGet, "/orders/number/"+order.OrderNumber, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, "/orders/statuses", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	statuses := decodeJSON[[]transport.OrderStatusView](t, rec)
	require.Len(t, statuses, 6)
}

func TestAuthRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/auth/register", transport.RegisterRequest{
		Username: "ivan", Password: "secret",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPost, "/auth/login-user", transport.LoginRequest{
		Username: "ivan", Password: "secret",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decodeJSON[transport.TokenResponse](t, rec)
	require.NotEmpty(t, pair.Token)
	require.NotEmpty(t, pair.RefreshToken)

	rec = env.doJSON(http.MethodGet, "/users/me", nil, pair.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeJSON[models.User](t, rec)
	require.Equal(t, "ivan", me.Username)
	require.Equal(t, models.RoleUser, me.Role)

	rec = env.doJSON(http.MethodGet, "/users/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodPost, "/auth/refresh", transport.RefreshRequest{
		RefreshToken: pair.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFilesUploadDownloadDelete(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.createUser(t, "admin", models.RoleAdmin)

	rec := env.doMultipart(t, http.MethodPost, "/api/files/upload",
		nil, "file", "doc.pdf", []byte("pdf-bytes"), "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doMultipart(t, http.MethodPost, "/api/files/upload",
		nil, "file", "doc.pdf", []byte("pdf-bytes"), adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeJSON[map[string]string](t, rec)
	key := resp["key"]
	require.NotEmpty(t, key)

	rec = env.doJSON(http.MethodGet, "/api/files/"+key, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "pdf-bytes", rec.Body.String())

	rec = env.doJSON(http.MethodGet, "/api/files/"+key+"/url", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodDelete, "/api/files/"+key, nil, adminToken)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/files/"+key, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCarouselReorderEndpoint(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.createUser(t, "admin", models.RoleAdmin)
	ctx := context.Background()

	var ids []uint
	for _, title := range []string{"a", "b"} {
		slide := models.CarouselSlide{Title: title, ImageRef: "http://cdn/" + title, IsActive: true, Position: len(ids) + 1}
		require.NoError(t, env.Repo.CreateSlide(ctx, &slide))
		ids = append(ids, slide.ID)
	}

	rec := env.doJSON(http.MethodPut, "/api/carousel/slides/reorder", []uint{ids[1], ids[0]}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeJSON[[]transport.SlideView](t, rec)
	require.Len(t, got, 2)
	require.Equal(t, "b", got[0].Title)
	require.Equal(t, "a", got[1].Title)

	rec = env.doJSON(http.MethodPut, "/api/carousel/slides/reorder", []uint{ids[0]}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
