package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/models"
)

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListProductsByCategory(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var prod models.Product
	if err := r.DB.WithContext(ctx).Preload("Images").First(&prod, id).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Images").Save(prod).Error
}

// DeleteProduct removes the product and its image rows in one
// transaction.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// MoveProduct reassigns one product to the given category. Missing
// products report gorm.ErrRecordNotFound so bulk callers can skip them.
func (r *GormRepo) MoveProduct(ctx context.Context, id, categoryID uint) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("category_id", categoryID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchProducts ranks with the russian text configuration on Postgres.
// Other dialects (the test database) degrade to a case-insensitive
// substring match over name and description.
func (r *GormRepo) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	items := []models.Product{}

	if r.DB.Dialector.Name() == "postgres" {
		const fts = `to_tsvector('russian', coalesce(name,'') || ' ' || coalesce(description,''))
			@@ plainto_tsquery('russian', ?)`
		err := r.DB.WithContext(ctx).
			Model(&models.Product{}).
			Where(fts, query).
			Order(gorm.Expr(`ts_rank(
				to_tsvector('russian', coalesce(name,'') || ' ' || coalesce(description,'')),
				plainto_tsquery('russian', ?)
			) DESC, id ASC`, query)).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
		return items, nil
	}

	like := "%" + query + "%"
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListProductImages(ctx context.Context, productID uint) ([]models.ProductImage, error) {
	var items []models.ProductImage
	if err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("display_order ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProductImage(ctx context.Context, imageID uint) (*models.ProductImage, error) {
	var img models.ProductImage
	if err := r.DB.WithContext(ctx).First(&img, imageID).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// AddProductImage inserts the row and, when the new image is primary,
// demotes any previous primary inside the same transaction. At most one
// primary image per product.
func (r *GormRepo) AddProductImage(ctx context.Context, img *models.ProductImage) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if img.IsPrimary {
			if err := tx.Model(&models.ProductImage{}).
				Where("product_id = ? AND is_primary = ?", img.ProductID, true).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(img).Error
	})
}

func (r *GormRepo) RemoveProductImage(ctx context.Context, imageID uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.ProductImage{}, imageID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
