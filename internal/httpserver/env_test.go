package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/hash"
	authmw "github.com/Skotchmaster/weld_shop/internal/middleware/auth"
	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/service"
	"github.com/Skotchmaster/weld_shop/internal/storage"
	"github.com/Skotchmaster/weld_shop/internal/tokens"
)

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Store  *storage.MemStore
	Tokens *tokens.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Category{}, &models.Product{}, &models.ProductImage{},
		&models.CarouselSlide{}, &models.Order{}, &models.OrderItem{}, &models.User{},
	))

	r := repo.New(db)
	store := storage.NewMemStore()
	assets := service.NewAssetCoordinator(store)
	tokenSvc := tokens.NewService([]byte("test-secret"), time.Hour, 14*24*time.Hour)
	productSvc := &service.ProductService{Repo: r, Assets: assets}

	e := echo.New()
	Register(e, &Deps{
		Gate:     &authmw.Gate{Tokens: tokenSvc},
		Auth:     &AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: tokenSvc}},
		Category: &CategoryHTTP{Svc: &service.CategoryService{Repo: r, Assets: assets}},
		Product: &ProductHTTP{
			Svc: productSvc,
			Csv: &service.CsvService{Repo: r, Assets: assets, Catalog: productSvc},
		},
		Carousel: &CarouselHTTP{Svc: &service.CarouselService{Repo: r, Assets: assets}},
		Order:    &OrderHTTP{Svc: &service.OrderService{Repo: r}},
		Files:    &FilesHTTP{Store: store},
	})

	return &testEnv{E: e, DB: db, Repo: r, Store: store, Tokens: tokenSvc}
}

// createUser inserts a user row directly and returns a valid access
// token for it.
func (env *testEnv) createUser(t *testing.T, username, role string) string {
	t.Helper()
	encoded, err := hash.HashPassword("secret")
	require.NoError(t, err)
	require.NoError(t, env.Repo.CreateUser(context.Background(), &models.User{
		Username: username, PasswordHash: encoded, Role: role,
	}))
	token, err := env.Tokens.GenerateToken(username, tokens.RoleClaim(role))
	require.NoError(t, err)
	return token
}

func (env *testEnv) doJSON(method, path string, body any, bearer string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// doMultipart builds a multipart request with string fields and one
// optional file part.
func (env *testEnv) doMultipart(t *testing.T, method, path string, fields map[string]string, fileField, filename string, fileData []byte, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
