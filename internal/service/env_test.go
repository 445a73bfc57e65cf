package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/storage"
)

type testEnv struct {
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Store  *storage.MemStore
	Assets *AssetCoordinator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.CarouselSlide{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
	))

	store := storage.NewMemStore()
	return &testEnv{
		DB:     db,
		Repo:   repo.New(db),
		Store:  store,
		Assets: NewAssetCoordinator(store),
	}
}

func (env *testEnv) createCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	cat := &models.Category{Name: name}
	require.NoError(t, env.Repo.CreateCategory(context.Background(), cat))
	return cat
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
