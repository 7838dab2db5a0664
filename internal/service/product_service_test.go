package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-commerce-api/internal/model"
)

type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]model.Product
	viewed   chan string
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{
		products: map[string]model.Product{},
		viewed:   make(chan string, 8),
	}
}

func (f *fakeProductStore) FindByID(_ context.Context, id string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, model.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductStore) Search(_ context.Context, _ model.ProductQuery) ([]model.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProductStore) FindFeatured(_ context.Context, limit int) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0)
	for _, p := range f.products {
		if p.Featured && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductStore) Create(_ context.Context, p model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.products {
		if existing.Inventory.SKU == p.Inventory.SKU {
			return model.ErrSKUTaken
		}
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductStore) Replace(_ context.Context, p model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return model.ErrProductNotFound
	}
	for id, existing := range f.products {
		if id != p.ID && existing.Inventory.SKU == p.Inventory.SKU {
			return model.ErrSKUTaken
		}
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return model.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductStore) IncrementViews(_ context.Context, id string) error {
	f.mu.Lock()
	p, ok := f.products[id]
	if ok {
		p.ViewCount++
		f.products[id] = p
	}
	f.mu.Unlock()
	f.viewed <- id
	return nil
}

func validProductRequest() model.ProductRequest {
	return model.ProductRequest{
		Name:        "Wireless Keyboard",
		Description: "A compact low-latency wireless keyboard.",
		Price:       49.99,
		Category:    "electronics",
		Inventory:   model.Inventory{SKU: "kb-100", Quantity: 25, TrackQuantity: true},
	}
}

func TestProductService_Create(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)

	view, err := svc.Create(context.Background(), "admin-1", validProductRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "wireless-keyboard", view.Slug)
	assert.Equal(t, "KB-100", view.Inventory.SKU)
	assert.Equal(t, model.ProductStatusActive, view.Status)
	assert.Equal(t, model.VisibilityVisible, view.Visibility)
	assert.Equal(t, 10, view.Inventory.LowStockThreshold)
	assert.NotNil(t, view.PublishedAt)
	assert.Equal(t, "admin-1", view.CreatedBy)
	assert.Equal(t, model.StockInStock, view.StockStatus)
	assert.True(t, view.IsAvailable)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin-1", validProductRequest())
	require.NoError(t, err)

	second := validProductRequest()
	second.Name = "Another Keyboard"
	_, err = svc.Create(ctx, "admin-1", second)
	requireAPIError(t, err, "ALREADY_EXISTS", http.StatusConflict)
}

func TestProductService_Create_Validation(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*model.ProductRequest)
	}{
		{"short name", func(r *model.ProductRequest) { r.Name = "X" }},
		{"short description", func(r *model.ProductRequest) { r.Description = "too short" }},
		{"negative price", func(r *model.ProductRequest) { r.Price = -1 }},
		{"compare below price", func(r *model.ProductRequest) { r.ComparePrice = 10 }},
		{"missing category", func(r *model.ProductRequest) { r.Category = "" }},
		{"missing sku", func(r *model.ProductRequest) { r.Inventory.SKU = "" }},
		{"negative quantity", func(r *model.ProductRequest) { r.Inventory.Quantity = -1 }},
		{"bad status", func(r *model.ProductRequest) { r.Status = "bogus" }},
		{"bad visibility", func(r *model.ProductRequest) { r.Visibility = "bogus" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validProductRequest()
			tc.mutate(&req)
			_, err := svc.Create(ctx, "admin-1", req)
			requireAPIError(t, err, "VALIDATION_ERROR", http.StatusBadRequest)
		})
	}
}

func TestProductService_Create_NormalizesImagesAndTags(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)

	req := validProductRequest()
	req.Tags = []string{" Mechanical ", "WIRELESS", ""}
	req.Images = []model.ProductImage{
		{URL: "https://cdn.example.com/a.jpg"},
		{URL: "https://cdn.example.com/b.jpg"},
	}

	view, err := svc.Create(context.Background(), "admin-1", req)
	require.NoError(t, err)

	assert.Equal(t, []string{"mechanical", "wireless"}, view.Tags)
	require.NotNil(t, view.PrimaryImage)
	assert.Equal(t, "https://cdn.example.com/a.jpg", view.PrimaryImage.URL)
	assert.True(t, view.Images[0].IsPrimary)
	assert.False(t, view.Images[1].IsPrimary)
}

func TestProductService_Get_RecordsView(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin-1", validProductRequest())
	require.NoError(t, err)

	view, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)

	// The view counter is bumped out of band.
	select {
	case id := <-store.viewed:
		assert.Equal(t, created.ID, id)
	case <-time.After(time.Second):
		t.Fatal("view count was never recorded")
	}

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestProductService_Update(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin-1", validProductRequest())
	require.NoError(t, err)

	req := validProductRequest()
	req.Name = "Wireless Keyboard Pro"
	req.Price = 79.99
	req.ComparePrice = 99.99
	updated, err := svc.Update(ctx, "admin-2", created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, "wireless-keyboard-pro", updated.Slug)
	assert.Equal(t, "admin-2", updated.UpdatedBy)
	assert.Equal(t, "admin-1", updated.CreatedBy)
	assert.Equal(t, 20, updated.DiscountPercentage)

	_, err = svc.Update(ctx, "admin-2", "missing", req)
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestProductService_Delete(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin-1", validProductRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), model.ErrProductNotFound)
}
