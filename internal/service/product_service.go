package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-commerce-api/internal/model"
	"go-commerce-api/pkg/apierror"
)

type ProductStore interface {
	FindByID(ctx context.Context, id string) (model.Product, error)
	Search(ctx context.Context, q model.ProductQuery) ([]model.Product, int64, error)
	FindFeatured(ctx context.Context, limit int) ([]model.Product, error)
	Create(ctx context.Context, p model.Product) error
	Replace(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Search(ctx context.Context, q model.ProductQuery) ([]model.ProductView, int64, error) {
	products, total, err := s.products.Search(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return views(products), total, nil
}

func (s *ProductService) Featured(ctx context.Context, limit int) ([]model.ProductView, error) {
	products, err := s.products.FindFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	return views(products), nil
}

// Get returns the product and bumps its view counter out of band, the way
// the storefront expects: the response never waits on the counter write.
func (s *ProductService) Get(ctx context.Context, id string) (model.ProductView, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.ProductView{}, err
	}

	go func(ctx context.Context) {
		if err := s.products.IncrementViews(ctx, product.ID); err != nil {
			slog.Warn("failed to record product view", "product_id", product.ID, "error", err)
		}
	}(context.WithoutCancel(ctx))

	return product.View(), nil
}

func (s *ProductService) Create(ctx context.Context, actorID string, req model.ProductRequest) (model.ProductView, error) {
	if err := validateProduct(req); err != nil {
		return model.ProductView{}, err
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:               uuid.NewString(),
		Name:             strings.TrimSpace(req.Name),
		Description:      strings.TrimSpace(req.Description),
		ShortDescription: strings.TrimSpace(req.ShortDescription),
		Price:            req.Price,
		ComparePrice:     req.ComparePrice,
		Cost:             req.Cost,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
		Tags:             normalizeTags(req.Tags),
		Brand:            strings.TrimSpace(req.Brand),
		Images:           normalizeImages(req.Images),
		Inventory:        req.Inventory,
		Status:           req.Status,
		Visibility:       req.Visibility,
		Featured:         req.Featured,
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	product.Slug = model.Slugify(product.Name)
	product.Inventory.SKU = strings.ToUpper(strings.TrimSpace(product.Inventory.SKU))
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	if product.Visibility == "" {
		product.Visibility = model.VisibilityVisible
	}
	if product.Inventory.LowStockThreshold == 0 {
		product.Inventory.LowStockThreshold = 10
	}
	if product.Status == model.ProductStatusActive {
		product.PublishedAt = &now
	}

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, model.ErrSKUTaken) {
			return model.ProductView{}, apierror.Conflict("a product with this SKU already exists", product.Inventory.SKU)
		}
		return model.ProductView{}, err
	}
	return product.View(), nil
}

func (s *ProductService) Update(ctx context.Context, actorID string, id string, req model.ProductRequest) (model.ProductView, error) {
	if err := validateProduct(req); err != nil {
		return model.ProductView{}, err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.ProductView{}, err
	}

	now := time.Now().UTC()
	updated := existing
	updated.Name = strings.TrimSpace(req.Name)
	updated.Slug = model.Slugify(updated.Name)
	updated.Description = strings.TrimSpace(req.Description)
	updated.ShortDescription = strings.TrimSpace(req.ShortDescription)
	updated.Price = req.Price
	updated.ComparePrice = req.ComparePrice
	updated.Cost = req.Cost
	updated.Category = req.Category
	updated.Subcategory = req.Subcategory
	updated.Tags = normalizeTags(req.Tags)
	updated.Brand = strings.TrimSpace(req.Brand)
	updated.Images = normalizeImages(req.Images)
	updated.Inventory = req.Inventory
	updated.Inventory.SKU = strings.ToUpper(strings.TrimSpace(req.Inventory.SKU))
	if req.Status != "" {
		updated.Status = req.Status
	}
	if req.Visibility != "" {
		updated.Visibility = req.Visibility
	}
	updated.Featured = req.Featured
	updated.UpdatedBy = actorID
	updated.UpdatedAt = now
	if updated.Status == model.ProductStatusActive && updated.PublishedAt == nil {
		updated.PublishedAt = &now
	}

	if err := s.products.Replace(ctx, updated); err != nil {
		if errors.Is(err, model.ErrSKUTaken) {
			return model.ProductView{}, apierror.Conflict("a product with this SKU already exists", updated.Inventory.SKU)
		}
		return model.ProductView{}, err
	}
	return updated.View(), nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

func validateProduct(req model.ProductRequest) error {
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 100 {
		return apierror.Validation("name must be between 2 and 100 characters", "name")
	}
	desc := strings.TrimSpace(req.Description)
	if len(desc) < 10 || len(desc) > 2000 {
		return apierror.Validation("description must be between 10 and 2000 characters", "description")
	}
	if len(req.ShortDescription) > 200 {
		return apierror.Validation("short description cannot exceed 200 characters", "shortDescription")
	}
	if req.Price < 0 {
		return apierror.Validation("price cannot be negative", "price")
	}
	if req.ComparePrice != 0 && req.ComparePrice < req.Price {
		return apierror.Validation("compare price must be greater than or equal to price", "comparePrice")
	}
	if strings.TrimSpace(req.Category) == "" {
		return apierror.Validation("category is required", "category")
	}
	if strings.TrimSpace(req.Inventory.SKU) == "" {
		return apierror.Validation("inventory SKU is required", "inventory.sku")
	}
	if req.Inventory.Quantity < 0 {
		return apierror.Validation("inventory quantity cannot be negative", "inventory.quantity")
	}
	switch req.Status {
	case "", model.ProductStatusActive, model.ProductStatusInactive, model.ProductStatusDraft, model.ProductStatusArchived:
	default:
		return apierror.Validation("invalid product status", "status")
	}
	switch req.Visibility {
	case "", model.VisibilityVisible, model.VisibilityHidden, model.VisibilityCatalogOnly:
	default:
		return apierror.Validation("invalid product visibility", "visibility")
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeImages keeps at most one primary image, promoting the first when
// none is flagged.
func normalizeImages(images []model.ProductImage) []model.ProductImage {
	if len(images) == 0 {
		return nil
	}
	out := make([]model.ProductImage, len(images))
	copy(out, images)

	seenPrimary := false
	for i := range out {
		if out[i].IsPrimary {
			if seenPrimary {
				out[i].IsPrimary = false
			}
			seenPrimary = true
		}
	}
	if !seenPrimary {
		out[0].IsPrimary = true
	}
	return out
}

func views(products []model.Product) []model.ProductView {
	out := make([]model.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, p.View())
	}
	return out
}
