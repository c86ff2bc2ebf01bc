package product

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/avdeyev/storefront/internal/events"
)

// Sentinel errors for catalog validation.
var (
	ErrEmptyName       = errors.New("product name required")
	ErrInvalidPrice    = errors.New("original price must be greater than 0")
	ErrInvalidDiscount = errors.New("discount percentage must not be negative")
)

// Service encapsulates catalog business logic: validation, discount-price
// computation, and slug assignment on create.
type Service struct {
	repo    Repository
	slugger *Slugger
	events  events.Publisher
}

// NewService creates a catalog Service.
func NewService(repo Repository, slugger *Slugger, pub events.Publisher) *Service {
	return &Service{
		repo:    repo,
		slugger: slugger,
		events:  pub,
	}
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// GetBySlug returns a single product by its public slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// Create validates the product, computes its discount price, assigns a fresh
// encrypted slug, and persists it.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := validate(p); err != nil {
		return err
	}
	p.ApplyDiscount()

	slug, err := s.uniqueSlug(ctx, p.Name)
	if err != nil {
		return errors.Wrap(err, "derive slug")
	}
	p.Slug = slug

	if err := s.repo.Create(ctx, p); err != nil {
		return errors.Wrap(err, "create product")
	}

	s.publish(ctx, events.Event{
		"type":       "product_created",
		"product_id": p.ID,
		"name":       p.Name,
	})
	return nil
}

// Update validates and persists changes to an existing product, keeping its
// slug and recomputing the discount price. The discount price therefore stays
// consistent even when only the percentage changed.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := validate(p); err != nil {
		return err
	}
	p.ApplyDiscount()

	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		"type":       "product_updated",
		"product_id": p.ID,
		"name":       p.Name,
	})
	return nil
}

// Delete removes the product addressed by slug.
func (s *Service) Delete(ctx context.Context, slug string) error {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return errors.Wrap(err, "delete product")
	}

	s.publish(ctx, events.Event{
		"type":       "product_deleted",
		"product_id": p.ID,
	})
	return nil
}

// uniqueSlug derives a slug and retries once with a fresh salt on the
// unlikely collision with an existing product.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	slug, err := s.slugger.Derive(name)
	if err != nil {
		return "", err
	}

	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return "", errors.Wrap(err, "check slug")
	}
	if exists {
		return s.slugger.Derive(name)
	}
	return slug, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	id, _ := event["product_id"].(int64)
	if err := s.events.Publish(ctx, events.TopicProducts, formatID(id), event); err != nil {
		zctx.From(ctx).Warn("Publish product event", zap.Error(err))
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func validate(p *Product) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if !p.OriginalPrice.IsPositive() {
		return ErrInvalidPrice
	}
	if p.DiscountPercentage.IsNegative() {
		return ErrInvalidDiscount
	}
	return nil
}
