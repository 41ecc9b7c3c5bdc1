package catalog

// defaultProducts is the built-in catalog used when no catalog file is
// configured. Prices and aspect ratios mirror the storefront listings.
var defaultProducts = []ProductVariant{
	{
		ID:          "cutting-board-rect",
		Name:        "Cutting Board - Rectangle",
		Description: "Premium hardwood cutting board with **custom map engraving**.",
		BasePrice:   79.99,
		Sizes: []SizeOption{
			{ID: "small", Name: "Small", Dimensions: `12" × 8"`, AspectRatio: "2.62:1", Price: 79.99},
			{ID: "medium", Name: "Medium", Dimensions: `16" × 10"`, AspectRatio: "2.62:1", Price: 99.99},
			{ID: "large", Name: "Large", Dimensions: `20" × 12"`, AspectRatio: "2.62:1", Price: 129.99},
		},
	},
	{
		ID:          "cutting-board-round",
		Name:        "Cutting Board - Round",
		Description: "Elegant round cutting board perfect for serving and display.",
		BasePrice:   69.99,
		Sizes: []SizeOption{
			{ID: "small", Name: "Small", Dimensions: `10" diameter`, AspectRatio: "1.38:1", Price: 69.99},
			{ID: "medium", Name: "Medium", Dimensions: `12" diameter`, AspectRatio: "1.38:1", Price: 89.99},
			{ID: "large", Name: "Large", Dimensions: `14" diameter`, AspectRatio: "1.38:1", Price: 109.99},
		},
	},
	{
		ID:          "ornament-circle",
		Name:        "Ornament - Circle",
		Description: "Beautiful wooden ornament with custom map design.",
		BasePrice:   24.99,
		Sizes: []SizeOption{
			{ID: "small", Name: "Small", Dimensions: `3" diameter`, AspectRatio: "1.38:1", Price: 24.99},
			{ID: "medium", Name: "Medium", Dimensions: `4" diameter`, AspectRatio: "1.38:1", Price: 34.99},
		},
	},
	{
		ID:          "ornament-rect",
		Name:        "Ornament - Rectangle",
		Description: "Classic rectangular ornament with personalized engraving.",
		BasePrice:   29.99,
		Sizes: []SizeOption{
			{ID: "small", Name: "Small", Dimensions: `4" × 3"`, AspectRatio: "2.62:1", Price: 29.99},
			{ID: "medium", Name: "Medium", Dimensions: `5" × 4"`, AspectRatio: "2.62:1", Price: 39.99},
		},
	},
	{
		ID:          "candle-square",
		Name:        "Candle - Square",
		Description: "Premium soy candle with custom map label design.",
		BasePrice:   49.99,
		Sizes: []SizeOption{
			{ID: "small", Name: "Small", Dimensions: `3" × 3"`, AspectRatio: "3.10:1", Price: 49.99},
			{ID: "medium", Name: "Medium", Dimensions: `4" × 4"`, AspectRatio: "3.10:1", Price: 64.99},
			{ID: "large", Name: "Large", Dimensions: `5" × 5"`, AspectRatio: "3.10:1", Price: 79.99},
		},
	},
	{
		ID:          "candle-round",
		Name:        "Candle - Round",
		Description: "Elegant round candle with custom map design.",
		BasePrice:   44.99,
		Sizes: []SizeOption{
			{ID: "small", Name: "Small", Dimensions: `3" diameter`, AspectRatio: "1.38:1", Price: 44.99},
			{ID: "medium", Name: "Medium", Dimensions: `4" diameter`, AspectRatio: "1.38:1", Price: 59.99},
		},
	},
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultProducts)
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is
		// a programming error.
		panic(err)
	}
	return c
}
