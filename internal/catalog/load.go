package catalog

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/amgst/mapapp2/internal/errors"
)

// Load reads a catalog from a JSON file: an array of products in the
// same shape New accepts. Returns the built-in catalog when path is
// empty or the file does not exist.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, errors.NewInternal(err)
	}

	var products []ProductVariant
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("malformed catalog file %s: %v", path, err))
	}

	return New(products)
}
