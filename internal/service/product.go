package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/events"
	"github.com/Skotchmaster/weld_shop/internal/logging"
	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/search"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type ProductService struct {
	Repo   *repo.GormRepo
	Assets *AssetCoordinator
	Events *events.Producer
	Search *search.Index
}

// BulkResult reports how many of a batch succeeded; rows that no longer
// exist are skipped, not failed.
type BulkResult struct {
	Deleted int `json:"deletedCount,omitempty"`
	Moved   int `json:"movedCount,omitempty"`
	Skipped int `json:"skippedCount"`
}

func (s *ProductService) toView(ctx context.Context, p *models.Product) transport.ProductView {
	view := transport.ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		ImageURL:       s.Assets.Resolve(ctx, p.ImageRef),
		Specifications: p.Specifications,
		CategoryID:     p.CategoryID,
	}
	for i := range p.Images {
		view.Images = append(view.Images, s.imageView(ctx, &p.Images[i]))
	}
	return view
}

func (s *ProductService) imageView(ctx context.Context, img *models.ProductImage) transport.ProductImageView {
	resolved := ""
	if u := s.Assets.Resolve(ctx, &img.ImageRef); u != nil {
		resolved = *u
	}
	return transport.ProductImageView{
		ID:           img.ID,
		ProductID:    img.ProductID,
		ImageURL:     resolved,
		DisplayOrder: img.DisplayOrder,
		IsPrimary:    img.IsPrimary,
	}
}

func (s *ProductService) toViews(ctx context.Context, items []models.Product) []transport.ProductView {
	views := make([]transport.ProductView, len(items))
	for i := range items {
		views[i] = s.toView(ctx, &items[i])
	}
	return views
}

func (s *ProductService) publish(ctx context.Context, action string, p *models.Product) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.TopicProducts, fmt.Sprint(p.ID), map[string]any{
		"action":     action,
		"id":         p.ID,
		"name":       p.Name,
		"categoryId": p.CategoryID,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", events.TopicProducts, "error", err)
	}
}

func (s *ProductService) mirror(ctx context.Context, p *models.Product) {
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search index update failed", "id", p.ID, "error", err)
	}
}

func (s *ProductService) FindAll(ctx context.Context) ([]transport.ProductView, error) {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, items), nil
}

func (s *ProductService) FindByCategory(ctx context.Context, categoryID uint) ([]transport.ProductView, error) {
	items, err := s.Repo.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, items), nil
}

func (s *ProductService) FindByID(ctx context.Context, id uint) (*transport.ProductView, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	view := s.toView(ctx, p)
	return &view, nil
}

// FullTextSearch consults the mirror index first and falls back to the
// database when the mirror is disabled or unreachable. Blank queries
// return the whole catalog.
func (s *ProductService) FullTextSearch(ctx context.Context, query string) ([]transport.ProductView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.FindAll(ctx)
	}

	if ids, err := s.Search.Search(ctx, query); err == nil {
		items := make([]models.Product, 0, len(ids))
		for _, id := range ids {
			p, err := s.Repo.GetProduct(ctx, id)
			if err != nil {
				continue
			}
			items = append(items, *p)
		}
		return s.toViews(ctx, items), nil
	}

	items, err := s.Repo.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, items), nil
}

func (s *ProductService) validate(ctx context.Context, req transport.ProductRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if req.CategoryID == 0 {
		return fmt.Errorf("%w: categoryId required", ErrValidation)
	}
	if _, err := s.Repo.GetCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d not found", ErrValidation, req.CategoryID)
		}
		return err
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, req transport.ProductRequest, image *UploadedFile) (*transport.ProductView, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	prod := models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		ImageRef:       req.ImageURL,
		Specifications: req.Specifications,
		CategoryID:     req.CategoryID,
	}

	var uploadedKey string
	if image != nil {
		key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		prod.ImageRef = &key
	}

	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		if uploadedKey != "" {
			s.Assets.Compensate(ctx, uploadedKey)
		}
		return nil, err
	}

	s.mirror(ctx, &prod)
	s.publish(ctx, "created", &prod)

	view := s.toView(ctx, &prod)
	return &view, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, req transport.ProductRequest, image *UploadedFile) (*transport.ProductView, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	oldRef := prod.ImageRef
	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price
	prod.Specifications = req.Specifications
	prod.CategoryID = req.CategoryID
	if req.ImageURL != nil {
		prod.ImageRef = req.ImageURL
	}

	if image != nil {
		key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
		if err != nil {
			return nil, err
		}
		prod.ImageRef = &key
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		if image != nil && prod.ImageRef != nil {
			s.Assets.Compensate(ctx, *prod.ImageRef)
		}
		return nil, err
	}

	if image != nil && oldRef != nil && *oldRef != "" {
		s.Assets.RemoveRef(ctx, *oldRef)
	}

	s.mirror(ctx, prod)
	s.publish(ctx, "updated", prod)

	view := s.toView(ctx, prod)
	return &view, nil
}

// Delete removes the product row together with its image rows, then
// best-effort deletes every owned object.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if prod.ImageRef != nil && *prod.ImageRef != "" {
		s.Assets.RemoveRef(ctx, *prod.ImageRef)
	}
	for i := range prod.Images {
		s.Assets.RemoveRef(ctx, prod.Images[i].ImageRef)
	}

	if err := s.Search.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search index delete failed", "id", id, "error", err)
	}
	s.publish(ctx, "deleted", prod)
	return nil
}

// DeleteMany deletes each id independently: a missing product or a
// storage-side failure is logged and skipped, never aborting the loop.
func (s *ProductService) DeleteMany(ctx context.Context, ids []uint) (BulkResult, error) {
	res := BulkResult{}
	for _, id := range ids {
		err := s.Delete(ctx, id)
		switch {
		case err == nil:
			res.Deleted++
		case errors.Is(err, ErrNotFound):
			res.Skipped++
		default:
			logging.FromContext(ctx).Warn("bulk delete element failed", "id", id, "error", err)
			res.Skipped++
		}
	}
	return res, nil
}

// MoveMany reassigns products to the target category, skipping ids that
// no longer exist. The target must exist.
func (s *ProductService) MoveMany(ctx context.Context, req transport.BulkMoveRequest) (BulkResult, error) {
	if _, err := s.Repo.GetCategory(ctx, req.TargetCategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BulkResult{}, fmt.Errorf("%w: category %d not found", ErrValidation, req.TargetCategoryID)
		}
		return BulkResult{}, err
	}

	res := BulkResult{}
	for _, id := range req.ProductIDs {
		err := s.Repo.MoveProduct(ctx, id, req.TargetCategoryID)
		switch {
		case err == nil:
			res.Moved++
		case errors.Is(err, gorm.ErrRecordNotFound):
			res.Skipped++
		default:
			logging.FromContext(ctx).Warn("bulk move element failed", "id", id, "error", err)
			res.Skipped++
		}
	}
	return res, nil
}

func (s *ProductService) ListImages(ctx context.Context, productID uint) ([]transport.ProductImageView, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}
	imgs, err := s.Repo.ListProductImages(ctx, productID)
	if err != nil {
		return nil, err
	}
	views := make([]transport.ProductImageView, len(imgs))
	for i := range imgs {
		views[i] = s.imageView(ctx, &imgs[i])
	}
	return views, nil
}

// AddImage uploads the file and appends it to the product gallery. A
// primary flag demotes any existing primary image.
func (s *ProductService) AddImage(ctx context.Context, productID uint, image *UploadedFile, displayOrder int, isPrimary bool) (*transport.ProductImageView, error) {
	if image == nil {
		return nil, fmt.Errorf("%w: file required", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
	if err != nil {
		return nil, err
	}

	img := models.ProductImage{
		ProductID:    productID,
		ImageRef:     key,
		DisplayOrder: displayOrder,
		IsPrimary:    isPrimary,
	}
	if err := s.Repo.AddProductImage(ctx, &img); err != nil {
		s.Assets.Compensate(ctx, key)
		return nil, err
	}

	view := s.imageView(ctx, &img)
	return &view, nil
}

func (s *ProductService) RemoveImage(ctx context.Context, imageID uint) error {
	img, err := s.Repo.GetProductImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: image %d", ErrNotFound, imageID)
		}
		return err
	}
	if err := s.Repo.RemoveProductImage(ctx, imageID); err != nil {
		return err
	}
	s.Assets.RemoveRef(ctx, img.ImageRef)
	return nil
}

// CleanupPresignedURLs rewrites product references that were stored as
// full query-bearing URLs back to bare object keys. Rows whose URL
// yields no key with a file extension are left untouched and counted
// as skipped.
func (s *ProductService) CleanupPresignedURLs(ctx context.Context) (fixed, skipped int, err error) {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return 0, 0, err
	}

	l := logging.FromContext(ctx).With("svc", "product.cleanup")
	for i := range items {
		p := &items[i]
		if p.ImageRef == nil {
			continue
		}
		ref := *p.ImageRef
		if !strings.HasPrefix(ref, "http") || !strings.Contains(ref, "?") {
			continue
		}
		key := RefKey(ref)
		if key == "" || path.Ext(key) == "" {
			l.Warn("unrecognizable image reference", "id", p.ID, "ref", ref)
			skipped++
			continue
		}
		p.ImageRef = &key
		if err := s.Repo.SaveProduct(ctx, p); err != nil {
			return fixed, skipped, err
		}
		fixed++
	}
	return fixed, skipped, nil
}
