package embed

import (
	"encoding/json"

	"github.com/amgst/mapapp2/internal/design"
)

// Message types exchanged with the parent document.
const (
	// Child → parent.
	TypeReady     = "app:ready"
	TypeResize    = "app:resize"
	TypeAddToCart = "app:addToCart"

	// Parent → child. The only inbound type the bridge acts on.
	TypeHostResize = "shopify:resize"
)

// Message is the wire shape of a cross-document message. Only the
// fields matching the Type are populated.
type Message struct {
	Type    string       `json:"type"`
	Height  float64      `json:"height,omitempty"`
	Product *CartProduct `json:"product,omitempty"`
}

// CartProduct is the payload of an app:addToCart message.
type CartProduct struct {
	ID            string            `json:"id"`
	Customization CartCustomization `json:"customization"`
}

// CartCustomization carries the configured design into the host cart.
// MapBounds is opaque to this app: the map provider owns its shape and
// it only needs to survive the handoff intact.
type CartCustomization struct {
	MapBounds      json.RawMessage `json:"mapBounds"`
	Customizations design.List     `json:"customizations"`
	Size           string          `json:"size"`
}
