package model

import (
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
	ProductStatusDraft    = "draft"
	ProductStatusArchived = "archived"
)

const (
	VisibilityVisible     = "visible"
	VisibilityHidden      = "hidden"
	VisibilityCatalogOnly = "catalog-only"
)

const (
	StockInStock    = "in-stock"
	StockLowStock   = "low-stock"
	StockOutOfStock = "out-of-stock"
)

type ProductImage struct {
	URL       string `bson:"url" json:"url"`
	Alt       string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool   `bson:"is_primary" json:"is_primary"`
}

type Inventory struct {
	SKU               string `bson:"sku" json:"sku"`
	Barcode           string `bson:"barcode,omitempty" json:"barcode,omitempty"`
	Quantity          int    `bson:"quantity" json:"quantity"`
	LowStockThreshold int    `bson:"low_stock_threshold" json:"low_stock_threshold"`
	TrackQuantity     bool   `bson:"track_quantity" json:"track_quantity"`
}

type Rating struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID               string         `bson:"_id" json:"id"`
	Name             string         `bson:"name" json:"name"`
	Slug             string         `bson:"slug" json:"slug"`
	Description      string         `bson:"description" json:"description"`
	ShortDescription string         `bson:"short_description,omitempty" json:"short_description,omitempty"`
	Price            float64        `bson:"price" json:"price"`
	ComparePrice     float64        `bson:"compare_price,omitempty" json:"compare_price,omitempty"`
	Cost             float64        `bson:"cost,omitempty" json:"-"`
	Category         string         `bson:"category" json:"category"`
	Subcategory      string         `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Tags             []string       `bson:"tags,omitempty" json:"tags,omitempty"`
	Brand            string         `bson:"brand,omitempty" json:"brand,omitempty"`
	Images           []ProductImage `bson:"images,omitempty" json:"images,omitempty"`
	Inventory        Inventory      `bson:"inventory" json:"inventory"`
	Status           string         `bson:"status" json:"status"`
	Visibility       string         `bson:"visibility" json:"visibility"`
	Featured         bool           `bson:"featured" json:"featured"`
	SalesCount       int64          `bson:"sales_count" json:"sales_count"`
	ViewCount        int64          `bson:"view_count" json:"view_count"`
	Rating           Rating         `bson:"rating" json:"rating"`
	PublishedAt      *time.Time     `bson:"published_at,omitempty" json:"published_at,omitempty"`
	CreatedBy        string         `bson:"created_by" json:"created_by"`
	UpdatedBy        string         `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	CreatedAt        time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updated_at"`
}

// PrimaryImage returns the image flagged as primary, falling back to the
// first one.
func (p Product) PrimaryImage() *ProductImage {
	if len(p.Images) == 0 {
		return nil
	}
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return &p.Images[0]
}

func (p Product) StockStatus() string {
	if !p.Inventory.TrackQuantity {
		return StockInStock
	}
	if p.Inventory.Quantity <= 0 {
		return StockOutOfStock
	}
	if p.Inventory.Quantity <= p.Inventory.LowStockThreshold {
		return StockLowStock
	}
	return StockInStock
}

// DiscountPercentage derives the markdown from the compare price, rounded to
// whole percent. Zero when no discount applies.
func (p Product) DiscountPercentage() int {
	if p.ComparePrice > p.Price && p.ComparePrice > 0 {
		return int(math.Round((p.ComparePrice - p.Price) / p.ComparePrice * 100))
	}
	return 0
}

func (p Product) IsAvailable() bool {
	return p.Status == ProductStatusActive &&
		p.Visibility == VisibilityVisible &&
		(p.StockStatus() != StockOutOfStock || !p.Inventory.TrackQuantity)
}

// ProductView is the catalog-facing projection: the document plus the
// computed fields the storefront renders.
type ProductView struct {
	Product
	PrimaryImage       *ProductImage `json:"primary_image,omitempty"`
	StockStatus        string        `json:"stock_status"`
	DiscountPercentage int           `json:"discount_percentage"`
	IsAvailable        bool          `json:"is_available"`
}

func (p Product) View() ProductView {
	return ProductView{
		Product:            p,
		PrimaryImage:       p.PrimaryImage(),
		StockStatus:        p.StockStatus(),
		DiscountPercentage: p.DiscountPercentage(),
		IsAvailable:        p.IsAvailable(),
	}
}

// ProductQuery is the parsed catalog search/browse request.
type ProductQuery struct {
	Search   string
	Category string
	Brand    string
	Tags     []string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Page     int
	Limit    int
}

var slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSpaces = regexp.MustCompile(`[\s-]+`)

// Slugify derives a URL slug from a product name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
