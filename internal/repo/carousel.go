package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/models"
)

func (r *GormRepo) ListSlides(ctx context.Context) ([]models.CarouselSlide, error) {
	var items []models.CarouselSlide
	if err := r.DB.WithContext(ctx).Order("slide_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListActiveSlides(ctx context.Context) ([]models.CarouselSlide, error) {
	var items []models.CarouselSlide
	if err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("slide_order ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetSlide(ctx context.Context, id uint) (*models.CarouselSlide, error) {
	var slide models.CarouselSlide
	if err := r.DB.WithContext(ctx).First(&slide, id).Error; err != nil {
		return nil, err
	}
	return &slide, nil
}

func (r *GormRepo) MaxSlidePosition(ctx context.Context) (int, error) {
	var max *int
	err := r.DB.WithContext(ctx).
		Model(&models.CarouselSlide{}).
		Select("MAX(slide_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *GormRepo) CreateSlide(ctx context.Context, slide *models.CarouselSlide) error {
	return r.DB.WithContext(ctx).Create(slide).Error
}

func (r *GormRepo) SaveSlide(ctx context.Context, slide *models.CarouselSlide) error {
	return r.DB.WithContext(ctx).Save(slide).Error
}

func (r *GormRepo) DeleteSlide(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.CarouselSlide{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetSlidePosition updates one slide's order slot. Missing slides
// report gorm.ErrRecordNotFound so reorder can skip them.
func (r *GormRepo) SetSlidePosition(ctx context.Context, id uint, position int) error {
	res := r.DB.WithContext(ctx).
		Model(&models.CarouselSlide{}).
		Where("id = ?", id).
		Update("slide_order", position)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
