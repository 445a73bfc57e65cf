package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/weld_shop/internal/models"
	"github.com/Skotchmaster/weld_shop/internal/repo"
	"github.com/Skotchmaster/weld_shop/internal/transport"
)

type CarouselService struct {
	Repo   *repo.GormRepo
	Assets *AssetCoordinator
}

func (s *CarouselService) toView(ctx context.Context, slide *models.CarouselSlide) transport.SlideView {
	resolved := ""
	if u := s.Assets.Resolve(ctx, &slide.ImageRef); u != nil {
		resolved = *u
	}
	return transport.SlideView{
		ID:       slide.ID,
		ImageURL: resolved,
		Title:    slide.Title,
		Subtitle: slide.Subtitle,
		LinkURL:  slide.LinkURL,
		IsActive: slide.IsActive,
		Order:    slide.Position,
	}
}

func (s *CarouselService) toViews(ctx context.Context, slides []models.CarouselSlide) []transport.SlideView {
	views := make([]transport.SlideView, len(slides))
	for i := range slides {
		views[i] = s.toView(ctx, &slides[i])
	}
	return views
}

func (s *CarouselService) FindAll(ctx context.Context) ([]transport.SlideView, error) {
	slides, err := s.Repo.ListSlides(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, slides), nil
}

func (s *CarouselService) FindActive(ctx context.Context) ([]transport.SlideView, error) {
	slides, err := s.Repo.ListActiveSlides(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, slides), nil
}

func (s *CarouselService) FindByID(ctx context.Context, id uint) (*transport.SlideView, error) {
	slide, err := s.Repo.GetSlide(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slide %d", ErrNotFound, id)
		}
		return nil, err
	}
	view := s.toView(ctx, slide)
	return &view, nil
}

// Create appends the slide after the current last position unless the
// request pins an explicit order. Either an uploaded file or an imageUrl
// must be present.
func (s *CarouselService) Create(ctx context.Context, req transport.SlideRequest, image *UploadedFile) (*transport.SlideView, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}
	if image == nil && req.ImageURL == "" {
		return nil, fmt.Errorf("%w: image required", ErrValidation)
	}

	slide := models.CarouselSlide{
		ImageRef: req.ImageURL,
		Title:    req.Title,
		Subtitle: req.Subtitle,
		LinkURL:  req.LinkURL,
		IsActive: true,
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}

	if req.Order != nil {
		slide.Position = *req.Order
	} else {
		max, err := s.Repo.MaxSlidePosition(ctx)
		if err != nil {
			return nil, err
		}
		slide.Position = max + 1
	}

	var uploadedKey string
	if image != nil {
		key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		slide.ImageRef = key
	}

	if err := s.Repo.CreateSlide(ctx, &slide); err != nil {
		if uploadedKey != "" {
			s.Assets.Compensate(ctx, uploadedKey)
		}
		return nil, err
	}

	view := s.toView(ctx, &slide)
	return &view, nil
}

func (s *CarouselService) Update(ctx context.Context, id uint, req transport.SlideRequest, image *UploadedFile) (*transport.SlideView, error) {
	slide, err := s.Repo.GetSlide(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: slide %d", ErrNotFound, id)
		}
		return nil, err
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}

	oldRef := slide.ImageRef
	slide.Title = req.Title
	slide.Subtitle = req.Subtitle
	slide.LinkURL = req.LinkURL
	if req.ImageURL != "" {
		slide.ImageRef = req.ImageURL
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}
	if req.Order != nil {
		slide.Position = *req.Order
	}

	if image != nil {
		key, err := s.Assets.Upload(ctx, image.Data, image.Filename, image.ContentType)
		if err != nil {
			return nil, err
		}
		slide.ImageRef = key
	}

	if err := s.Repo.SaveSlide(ctx, slide); err != nil {
		if image != nil {
			s.Assets.Compensate(ctx, slide.ImageRef)
		}
		return nil, err
	}

	if image != nil && oldRef != "" {
		s.Assets.RemoveRef(ctx, oldRef)
	}

	view := s.toView(ctx, slide)
	return &view, nil
}

func (s *CarouselService) Delete(ctx context.Context, id uint) error {
	slide, err := s.Repo.GetSlide(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: slide %d", ErrNotFound, id)
		}
		return err
	}
	if err := s.Repo.DeleteSlide(ctx, id); err != nil {
		return err
	}
	if slide.ImageRef != "" {
		s.Assets.RemoveRef(ctx, slide.ImageRef)
	}
	return nil
}

// Reorder assigns positions 1..N following the given id sequence. Ids
// that vanished are skipped without disturbing the remaining numbering.
// Returns the full ordered list afterwards.
func (s *CarouselService) Reorder(ctx context.Context, ids []uint) ([]transport.SlideView, error) {
	pos := 1
	for _, id := range ids {
		err := s.Repo.SetSlidePosition(ctx, id, pos)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		pos++
	}
	return s.FindAll(ctx)
}
