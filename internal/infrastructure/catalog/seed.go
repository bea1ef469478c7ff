// Package catalog provides the product sources the catalog service can load
// from: a built-in demo catalog, a YAML/JSON file, the product REST backend
// and Postgres.
package catalog

import (
	"context"
	"time"

	"github.com/shopassist/backend/internal/domain"
)

// SeedRepository serves a fixed in-memory demo catalog
type SeedRepository struct {
	products []domain.Product
}

// NewSeedRepository returns a repository over the built-in demo catalog
func NewSeedRepository() *SeedRepository {
	return &SeedRepository{products: seedProducts()}
}

// ListProducts returns a copy of the demo catalog
func (r *SeedRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

var _ domain.CatalogRepository = (*SeedRepository)(nil)

func seedProducts() []domain.Product {
	day := func(month time.Month, d int) time.Time {
		return time.Date(2024, month, d, 9, 0, 0, 0, time.UTC)
	}
	price := func(v float64) *float64 { return &v }

	products := []domain.Product{
		{
			ID:            "1",
			Name:          "Wireless Headphones",
			Description:   "Over-ear bluetooth headphones with active noise cancellation and 30 hour battery life",
			Price:         199.99,
			OriginalPrice: price(249.99),
			Category:      "Electronics",
			Brand:         "AudioTech",
			Images:        []string{"/images/products/wireless-headphones.jpg"},
			Tags:          []string{"wireless", "bluetooth", "audio", "noise-canceling"},
			Stock:         45,
			Rating:        4.5,
			ReviewCount:   128,
			CreatedAt:     day(time.January, 15),
		},
		{
			ID:          "2",
			Name:        "Gaming Keyboard",
			Description: "Mechanical RGB keyboard with hot-swappable switches",
			Price:       149.99,
			Category:    "Electronics",
			Brand:       "GameGear",
			Images:      []string{"/images/products/gaming-keyboard.jpg"},
			Tags:        []string{"gaming", "keyboard", "mechanical", "rgb"},
			Stock:       30,
			Rating:      4.7,
			ReviewCount: 89,
			CreatedAt:   day(time.February, 3),
		},
		{
			ID:          "3",
			Name:        "Smart Watch",
			Description: "Fitness tracking smartwatch with heart rate monitor and GPS",
			Price:       249.99,
			Category:    "Electronics",
			Brand:       "TechBrand",
			Images:      []string{"/images/products/smart-watch.jpg"},
			Tags:        []string{"wearable", "fitness", "smartwatch", "gps"},
			Stock:       20,
			Rating:      4.3,
			ReviewCount: 210,
			CreatedAt:   day(time.March, 10),
		},
		{
			ID:            "4",
			Name:          "Laptop Pro 15",
			Description:   "15 inch laptop for work and creative apps with 16GB RAM",
			Price:         1299.99,
			OriginalPrice: price(1499.99),
			Category:      "Electronics",
			Brand:         "TechBrand",
			Images:        []string{"/images/products/laptop-pro-15.jpg"},
			Tags:          []string{"laptop", "computer", "portable", "work"},
			Stock:         12,
			Rating:        4.8,
			ReviewCount:   64,
			CreatedAt:     day(time.April, 1),
		},
		{
			ID:          "5",
			Name:        "Sony WH-1000XM5 Headphones",
			Description: "Industry-leading noise canceling wireless headphones",
			Price:       399.99,
			Category:    "Electronics",
			Brand:       "Sony",
			Images:      []string{"/images/products/sony-wh1000xm5.jpg"},
			Tags:        []string{"headphones", "wireless", "noise-canceling", "audio"},
			Stock:       30,
			Rating:      4.9,
			ReviewCount: 342,
			CreatedAt:   day(time.May, 20),
		},
		{
			ID:          "6",
			Name:        "Samsung Galaxy S24",
			Description: "Android smartphone with AI camera features",
			Price:       799.99,
			Category:    "Electronics",
			Brand:       "Samsung",
			Images:      []string{"/images/products/galaxy-s24.jpg"},
			Tags:        []string{"smartphone", "android", "camera", "5g"},
			Stock:       40,
			Rating:      4.6,
			ReviewCount: 187,
			CreatedAt:   day(time.June, 2),
		},
		{
			ID:          "7",
			Name:        "Running Shoes",
			Description: "Lightweight cushioned running shoes for daily training",
			Price:       89.99,
			Category:    "Fashion",
			Brand:       "Stride",
			Images:      []string{"/images/products/running-shoes.jpg"},
			Tags:        []string{"shoes", "running", "sports", "sneakers"},
			Stock:       100,
			Rating:      4.4,
			ReviewCount: 156,
			CreatedAt:   day(time.January, 28),
		},
		{
			ID:          "8",
			Name:        "Classic Denim Jeans",
			Description: "Straight fit jeans in rigid indigo denim",
			Price:       59.99,
			Category:    "Fashion",
			Brand:       "Levi's",
			Images:      []string{"/images/products/denim-jeans.jpg"},
			Tags:        []string{"jeans", "denim", "casual", "clothing"},
			Stock:       75,
			Rating:      4.2,
			ReviewCount: 98,
			CreatedAt:   day(time.February, 14),
		},
		{
			ID:          "9",
			Name:        "Fleece Jacket",
			Description: "Warm recycled fleece jacket for cool weather",
			Price:       99.00,
			Category:    "Fashion",
			Brand:       "Patagonia",
			Images:      []string{"/images/products/fleece-jacket.jpg"},
			Tags:        []string{"jacket", "fleece", "outdoor", "clothing"},
			Stock:       0,
			Rating:      4.6,
			ReviewCount: 73,
			CreatedAt:   day(time.September, 5),
		},
		{
			ID:          "10",
			Name:        "Ergonomic Office Chair",
			Description: "Adjustable office chair with lumbar support",
			Price:       299.99,
			Category:    "Home",
			Brand:       "SitWell",
			Images:      []string{"/images/products/office-chair.jpg"},
			Tags:        []string{"furniture", "office", "chair", "ergonomic"},
			Stock:       18,
			Rating:      4.1,
			ReviewCount: 45,
			CreatedAt:   day(time.March, 22),
		},
		{
			ID:          "11",
			Name:        "Cordless Vacuum",
			Description: "Lightweight cordless stick vacuum with laser dust detection",
			Price:       649.99,
			Category:    "Home",
			Brand:       "Dyson",
			Images:      []string{"/images/products/cordless-vacuum.jpg"},
			Tags:        []string{"vacuum", "cordless", "cleaning", "home"},
			Stock:       20,
			Rating:      4.7,
			ReviewCount: 112,
			CreatedAt:   day(time.July, 8),
		},
		{
			ID:          "12",
			Name:        "Stand Mixer",
			Description: "Tilt-head stand mixer for baking and kitchen prep",
			Price:       329.99,
			Category:    "Home",
			Brand:       "KitchenAid",
			Images:      []string{"/images/products/stand-mixer.jpg"},
			Tags:        []string{"mixer", "kitchen", "baking", "appliance"},
			Stock:       15,
			Rating:      4.8,
			ReviewCount: 231,
			CreatedAt:   day(time.August, 19),
		},
		{
			ID:          "13",
			Name:        "Insulated Tumbler",
			Description: "30oz stainless steel tumbler that keeps drinks cold",
			Price:       45.00,
			Category:    "Sports",
			Brand:       "Yeti",
			Images:      []string{"/images/products/tumbler.jpg"},
			Tags:        []string{"tumbler", "insulated", "outdoor", "drinkware"},
			Stock:       200,
			Rating:      4.5,
			ReviewCount: 301,
			CreatedAt:   day(time.April, 17),
		},
		{
			ID:          "14",
			Name:        "Yoga Mat",
			Description: "Non-slip 6mm yoga mat with carrying strap",
			Price:       34.99,
			Category:    "Sports",
			Brand:       "FlexFit",
			Images:      []string{"/images/products/yoga-mat.jpg"},
			Tags:        []string{"yoga", "fitness", "exercise", "mat"},
			Stock:       90,
			Rating:      4.3,
			ReviewCount: 67,
			CreatedAt:   day(time.October, 1),
		},
		{
			ID:          "15",
			Name:        "Adjustable Dumbbells",
			Description: "Pair of adjustable dumbbells from 5 to 52.5 lbs",
			Price:       349.00,
			Category:    "Sports",
			Brand:       "FlexFit",
			Images:      []string{"/images/products/dumbbells.jpg"},
			Tags:        []string{"fitness", "weights", "strength", "home-gym"},
			Stock:       8,
			Rating:      4.6,
			ReviewCount: 54,
			CreatedAt:   day(time.November, 11),
		},
		{
			ID:          "16",
			Name:        "Atomic Habits",
			Description: "An easy and proven way to build good habits and break bad ones",
			Price:       18.99,
			Category:    "Books",
			Brand:       "Avery",
			Images:      []string{"/images/products/atomic-habits.jpg"},
			Tags:        []string{"book", "self-help", "habits", "productivity"},
			Stock:       150,
			Rating:      4.9,
			ReviewCount: 512,
			CreatedAt:   day(time.December, 2),
		},
	}

	for i := range products {
		products[i].UpdatedAt = products[i].CreatedAt
	}
	return products
}
