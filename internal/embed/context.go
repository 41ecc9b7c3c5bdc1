// Package embed implements the cross-document embedding protocol: it
// detects whether the builder is hosted inside a storefront page,
// reads the host-provided configuration, and runs the bidirectional
// message exchange with the parent document over an injected
// HostChannel. The parent is a collaborator, not a trusted peer:
// unrecognized inbound messages are inert.
package embed

import (
	"net/url"
	"strings"
)

// Theme is the host page's color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Configuration defaults applied when the host omits a key.
const (
	DefaultPrimaryColor   = "#000000"
	DefaultSecondaryColor = "#666666"
)

// Context is the embedding configuration, derived once at session
// start and read-only afterwards.
type Context struct {
	IsEmbedded       bool   `json:"isEmbedded"`
	Theme            Theme  `json:"theme"`
	PrimaryColor     string `json:"primaryColor"`
	SecondaryColor   string `json:"secondaryColor"`
	CheckoutEnabled  bool   `json:"checkoutEnabled"`
	DefaultProductID string `json:"defaultProduct,omitempty"`
}

// Standalone returns the context of a session running outside any host
// page, with all defaults applied.
func Standalone() Context {
	return ParseContext(nil, false)
}

// ParseContext derives a Context from host-supplied query values.
// framed reports whether the app is actually inside a foreign frame;
// the session also counts as embedded when the host passes
// embedded=true explicitly. Host configuration injected through a
// loader shell arrives as the same query keys.
func ParseContext(values url.Values, framed bool) Context {
	get := func(key string) string {
		if values == nil {
			return ""
		}
		return strings.TrimSpace(values.Get(key))
	}

	ctx := Context{
		IsEmbedded:       framed || get("embedded") == "true",
		Theme:            ThemeLight,
		PrimaryColor:     DefaultPrimaryColor,
		SecondaryColor:   DefaultSecondaryColor,
		CheckoutEnabled:  get("checkoutEnabled") == "true",
		DefaultProductID: get("defaultProduct"),
	}

	if get("theme") == string(ThemeDark) {
		ctx.Theme = ThemeDark
	}
	if c := get("primaryColor"); c != "" {
		ctx.PrimaryColor = c
	}
	if c := get("secondaryColor"); c != "" {
		ctx.SecondaryColor = c
	}

	return ctx
}
