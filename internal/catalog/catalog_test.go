package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/amgst/mapapp2/internal/errors"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()

	products := c.Products()
	if len(products) != 6 {
		t.Errorf("len(products) = %d, want 6", len(products))
	}
	for _, p := range products {
		if len(p.Sizes) == 0 {
			t.Errorf("product %s has no sizes", p.ID)
		}
	}
}

func TestSelectProduct_AutoSelectsFirstSize(t *testing.T) {
	c := Default()

	sel, err := c.SelectProduct("candle-square")
	if err != nil {
		t.Fatalf("SelectProduct failed: %v", err)
	}

	if sel.SizeID != "small" {
		t.Errorf("SizeID = %q, want %q", sel.SizeID, "small")
	}
	if sel.AspectRatio != "3.10:1" {
		t.Errorf("AspectRatio = %q, want %q", sel.AspectRatio, "3.10:1")
	}
	if sel.Price != 49.99 {
		t.Errorf("Price = %v, want 49.99", sel.Price)
	}
}

func TestSelectProduct_SizeBelongsToProduct(t *testing.T) {
	c := Default()

	for _, p := range c.Products() {
		sel, err := c.SelectProduct(p.ID)
		if err != nil {
			t.Fatalf("SelectProduct(%s) failed: %v", p.ID, err)
		}

		found := false
		for _, s := range p.Sizes {
			if s.ID == sel.SizeID {
				found = true
				if s.AspectRatio != sel.AspectRatio {
					t.Errorf("%s: AspectRatio = %q, want %q", p.ID, sel.AspectRatio, s.AspectRatio)
				}
			}
		}
		if !found {
			t.Errorf("%s: selected size %q not in product's size list", p.ID, sel.SizeID)
		}
	}
}

func TestSelectProduct_Unknown(t *testing.T) {
	c := Default()

	_, err := c.SelectProduct("poster-xl")
	if !errors.Is(err, errors.ErrUnknownProduct) {
		t.Errorf("error = %v, want UNKNOWN_PRODUCT", err)
	}
}

func TestSelectSize(t *testing.T) {
	c := Default()

	choice, err := c.SelectSize("candle-square", "large")
	if err != nil {
		t.Fatalf("SelectSize failed: %v", err)
	}

	// Ratio is constant across sizes of one product; price is not.
	if choice.AspectRatio != "3.10:1" {
		t.Errorf("AspectRatio = %q, want %q", choice.AspectRatio, "3.10:1")
	}
	if choice.Price != 79.99 {
		t.Errorf("Price = %v, want 79.99", choice.Price)
	}
}

func TestSelectSize_ForeignSize(t *testing.T) {
	c := Default()

	// "large" exists on candle-square but not on ornament-circle.
	_, err := c.SelectSize("ornament-circle", "large")
	if !errors.Is(err, errors.ErrUnknownSize) {
		t.Errorf("error = %v, want UNKNOWN_SIZE", err)
	}

	_, err = c.SelectSize("poster-xl", "small")
	if !errors.Is(err, errors.ErrUnknownProduct) {
		t.Errorf("error = %v, want UNKNOWN_PRODUCT", err)
	}
}

func TestNew_Validation(t *testing.T) {
	valid := SizeOption{ID: "s", Name: "S", AspectRatio: "1:1", Price: 10}

	cases := []struct {
		name     string
		products []ProductVariant
	}{
		{"empty catalog", nil},
		{"empty product id", []ProductVariant{{ID: "", Sizes: []SizeOption{valid}}}},
		{"no sizes", []ProductVariant{{ID: "p"}}},
		{"duplicate product id", []ProductVariant{
			{ID: "p", Sizes: []SizeOption{valid}},
			{ID: "p", Sizes: []SizeOption{valid}},
		}},
		{"duplicate size id", []ProductVariant{
			{ID: "p", Sizes: []SizeOption{valid, valid}},
		}},
		{"bad aspect ratio", []ProductVariant{
			{ID: "p", Sizes: []SizeOption{{ID: "s", AspectRatio: "wide"}}},
		}},
		{"non-finite aspect ratio", []ProductVariant{
			{ID: "p", Sizes: []SizeOption{{ID: "s", AspectRatio: "NaN:1"}}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.products); err == nil {
				t.Error("New succeeded, want error")
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	products := []ProductVariant{
		{
			ID:        "poster",
			Name:      "Poster",
			BasePrice: 19.99,
			Sizes: []SizeOption{
				{ID: "a3", Name: "A3", AspectRatio: "1.41:1", Price: 19.99},
			},
		},
	}
	data, err := json.Marshal(products)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sel, err := c.SelectProduct("poster")
	if err != nil {
		t.Fatalf("SelectProduct failed: %v", err)
	}
	if sel.AspectRatio != "1.41:1" {
		t.Errorf("AspectRatio = %q, want %q", sel.AspectRatio, "1.41:1")
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Products()) != 6 {
		t.Errorf("expected built-in catalog, got %d products", len(c.Products()))
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}
