package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type CategoryService struct {
	Repo   *repo.GormRepo
	Assets *AssetCoordinator
}

func (s *CategoryService) toView(ctx context.Context, cat *models.Category) transport.CategoryView {
	view := transport.CategoryView{
		ID:               cat.ID,
		Name:             cat.Name,
		Description:      cat.Description,
		ImageURL:         s.Assets.Resolve(ctx, cat.ImageRef),
		ParentCategoryID: cat.ParentCategoryID,
	}
	if cat.ParentCategoryID != nil {
		if parent, err := s.Repo.GetCategory(ctx, *cat.ParentCategoryID); err == nil {
			view.ParentCategoryName = parent.Name
		}
	}
	return view
}

func (s *CategoryService) toViews(ctx context.Context, cats []models.Category) []transport.CategoryView {
	views := make([]transport.CategoryView, len(cats))
	for i := range cats {
		views[i] = s.toView(ctx, &cats[i])
	}
	return views
}

func (s *CategoryService) FindAll(ctx context.Context) ([]transport.CategoryView, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, cats), nil
}

func (s *CategoryService) FindRoots(ctx context.Context) ([]transport.CategoryView, error) {
	cats, err := s.Repo.ListRootCategories(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, cats), nil
}

func (s *CategoryService) FindSubcategories(ctx context.Context, parentID uint) ([]transport.CategoryView, error) {
	cats, err := s.Repo.ListSubcategories(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, cats), nil
}

func (s *CategoryService) FindByID(ctx context.Context, id uint) (*transport.CategoryView, error) {
	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil, err
	}
	view := s.toView(ctx, cat)
	return &view, nil
}

func (s *CategoryService) validateParent(ctx context.Context, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, *parentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: parent category %d not found", ErrValidation, *parentID)
		}
		return err
	}
	return nil
}

// Create persists the category. image, when non-nil, is uploaded first
// and the resulting key stored; a failed insert compensates with a
// store delete.
func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest, image *UploadedFile) (*transport.CategoryView, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.validateParent(ctx, req.ParentCategoryID); err != nil {
		return nil, err
	}

	cat := models.Category{
		Name:             req.Name,
		Description:      req.Description,
		ImageRef:         req.ImageURL,
		ParentCategoryID: req.ParentCategoryID,
	}

	var uploadedKey string
	if image != nil {
		key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		cat.ImageRef = &key
	}

	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		if uploadedKey != "" {
			s.Assets.Compensate(ctx, uploadedKey)
		}
		return nil, err
	}

	view := s.toView(ctx, &cat)
	return &view, nil
}

// Update replaces the category fields. A new image swaps the stored
// key and best-effort deletes the previous object.
func (s *CategoryService) Update(ctx context.Context, id uint, req transport.CategoryRequest, image *UploadedFile) (*transport.CategoryView, error) {
	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.ParentCategoryID != nil && *req.ParentCategoryID == id {
		return nil, fmt.Errorf("%w: category cannot be its own parent", ErrValidation)
	}
	if err := s.validateParent(ctx, req.ParentCategoryID); err != nil {
		return nil, err
	}

	oldRef := cat.ImageRef
	cat.Name = req.Name
	cat.Description = req.Description
	cat.ParentCategoryID = req.ParentCategoryID
	if req.ImageURL != nil {
		cat.ImageRef = req.ImageURL
	}

	if image != nil {
		key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
		if err != nil {
			return nil, err
		}
		cat.ImageRef = &key
	}

	if err := s.Repo.SaveCategory(ctx, cat); err != nil {
		if image != nil && cat.ImageRef != nil {
			s.Assets.Compensate(ctx, *cat.ImageRef)
		}
		return nil, err
	}

	if image != nil && oldRef != nil && *oldRef != "" {
		s.Assets.RemoveRef(ctx, *oldRef)
	}

	view := s.toView(ctx, cat)
	return &view, nil
}

// Delete removes the row, then best-effort deletes the image object.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "category.delete", "id", id)

	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return err
	}

	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	if cat.ImageRef != nil && *cat.ImageRef != "" {
		s.Assets.RemoveRef(ctx, *cat.ImageRef)
	}
	l.Info("category deleted", "name", cat.Name)
	return nil
}
