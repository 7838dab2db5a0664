package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-commerce-api/internal/database"
	"go-commerce-api/internal/model"
)

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{col: db.Products()}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Product{}, model.ErrProductNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// Search runs the storefront query: only active, visible products, filtered
// and paginated. A text search term switches the sort to relevance unless an
// explicit sort was requested.
func (r *ProductRepository) Search(ctx context.Context, q model.ProductQuery) ([]model.Product, int64, error) {
	filter := bson.M{
		"status":     model.ProductStatusActive,
		"visibility": model.VisibilityVisible,
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Brand != "" {
		filter["brand"] = bson.M{"$regex": q.Brand, "$options": "i"}
	}
	if len(q.Tags) > 0 {
		filter["tags"] = bson.M{"$in": q.Tags}
	}
	price := bson.M{}
	if q.MinPrice > 0 {
		price["$gte"] = q.MinPrice
	}
	if q.MaxPrice > 0 {
		price["$lte"] = q.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	findOpts := options.Find().
		SetSort(sortSpec(q.Sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]model.Product, 0, limit)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) FindFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit < 1 {
		limit = 10
	}

	cursor, err := r.col.Find(ctx,
		bson.M{
			"featured":   true,
			"status":     model.ProductStatusActive,
			"visibility": model.VisibilityVisible,
		},
		options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("find featured products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]model.Product, 0, limit)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode featured products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p model.Product) error {
	_, err := r.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrSKUTaken
	}
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Replace(ctx context.Context, p model.Product) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrSKUTaken
	}
	if err != nil {
		return fmt.Errorf("replace product: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// IncrementViews bumps the view counter without read-modify-write.
func (r *ProductRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return fmt.Errorf("increment product views: %w", err)
	}
	return nil
}

func sortSpec(sort string) bson.D {
	switch sort {
	case "price":
		return bson.D{{Key: "price", Value: 1}}
	case "-price":
		return bson.D{{Key: "price", Value: -1}}
	case "name":
		return bson.D{{Key: "name", Value: 1}}
	case "-sales":
		return bson.D{{Key: "sales_count", Value: -1}}
	case "-rating":
		return bson.D{{Key: "rating.average", Value: -1}}
	case "created_at":
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
