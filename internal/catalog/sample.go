package catalog

import "github.com/shopspring/decimal"

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func originalPrice(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// Sample returns the bundled demo catalog.
func Sample() Static {
	return Static{
		{
			ID:            1,
			Name:          "Premium Leather Backpack",
			Category:      "Backpacks",
			Price:         price(8500),
			OriginalPrice: originalPrice(12000),
			Image:         "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?q=80&w=500",
			Badge:         "sale",
			Rating:        4.5,
			Reviews:       128,
			Description:   "Handcrafted genuine leather backpack with multiple compartments",
		},
		{
			ID:          2,
			Name:        "Designer Handbag Collection",
			Category:    "Handbags",
			Price:       price(6500),
			Image:       "https://images.unsplash.com/photo-1584917865442-de89df76afd3?q=80&w=500",
			Badge:       "new",
			Rating:      4.8,
			Reviews:     89,
			Description: "Elegant designer handbag perfect for any occasion",
		},
		{
			ID:            3,
			Name:          "Professional Laptop Bag",
			Category:      "Backpacks",
			Price:         price(4500),
			OriginalPrice: originalPrice(5500),
			Image:         "https://images.unsplash.com/photo-1594633312681-425c7b97ccd1?q=80&w=500",
			Badge:         "sale",
			Rating:        4.3,
			Reviews:       67,
			Description:   "Durable laptop bag with padded compartment and organization",
		},
		{
			ID:          4,
			Name:        "Travel Duffel Bag",
			Category:    "Travel Bags",
			Price:       price(7200),
			Image:       "https://images.unsplash.com/photo-1553877522-43269d4ea984?q=80&w=500",
			Badge:       "new",
			Rating:      4.6,
			Reviews:     94,
			Description: "Spacious travel duffel bag with wheels and retractable handle",
		},
		{
			ID:          5,
			Name:        "Classic Wallet Set",
			Category:    "Wallets",
			Price:       price(2500),
			Image:       "https://images.unsplash.com/photo-1627123424574-724758594e93?q=80&w=500",
			Rating:      4.4,
			Reviews:     156,
			Description: "Premium leather wallet with card slots and coin pocket",
		},
		{
			ID:            6,
			Name:          "Crossbody Messenger Bag",
			Category:      "Crossbody Bags",
			Price:         price(3800),
			OriginalPrice: originalPrice(4500),
			Image:         "https://images.unsplash.com/photo-1551698618-1dfe5d97d256?q=80&w=500",
			Badge:         "sale",
			Rating:        4.2,
			Reviews:       73,
			Description:   "Stylish crossbody bag perfect for daily commute",
		},
	}
}
