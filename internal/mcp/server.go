package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/config"
	"github.com/amgst/mapapp2/internal/locator"
	"github.com/amgst/mapapp2/internal/session"
)

// Tool definitions

var stateToolDef = mcp.NewTool("builder_state",
	mcp.WithDescription("Get the current builder session state: phase, selected product and size, active tool, and placed customizations."),
)

var chooseProductToolDef = mcp.NewTool("builder_choose_product",
	mcp.WithDescription("Choose a product to customize. Its first size is selected automatically."),
	mcp.WithString("product_id", mcp.Required(), mcp.Description("Catalog product id, e.g. candle-square.")),
)

var chooseSizeToolDef = mcp.NewTool("builder_choose_size",
	mcp.WithDescription("Choose a size within the currently selected product."),
	mcp.WithString("size_id", mcp.Required(), mcp.Description("Size id belonging to the selected product.")),
)

var setToolToolDef = mcp.NewTool("builder_set_tool",
	mcp.WithDescription("Switch the active editing tool. Switching never creates elements."),
	mcp.WithString("tool", mcp.Required(), mcp.Description("One of: select, text, compass, icon.")),
)

var addToolDef = mcp.NewTool("builder_add",
	mcp.WithDescription("Add a customization element near the center of the design. Optional fields override the tool settings for this element."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("One of: text, compass, icon.")),
	mcp.WithString("content", mcp.Description("Text content. Required for kind=text.")),
	mcp.WithNumber("font_size", mcp.Description("Font size for text elements.")),
	mcp.WithString("color", mcp.Description("Element color as a hex string.")),
	mcp.WithString("font_weight", mcp.Description("normal or bold.")),
	mcp.WithNumber("size", mcp.Description("Pixel size for compass and icon elements.")),
	mcp.WithString("style", mcp.Description("Compass style: modern, classic, or minimal.")),
	mcp.WithString("icon_type", mcp.Description("Icon glyph: pin, star, heart, home, or building.")),
)

var updateToolDef = mcp.NewTool("builder_update",
	mcp.WithDescription("Apply a partial change to one element. An unknown id is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Element id.")),
	mcp.WithNumber("x", mcp.Description("Horizontal position in percent, 0-100.")),
	mcp.WithNumber("y", mcp.Description("Vertical position in percent, 0-100.")),
	mcp.WithString("content", mcp.Description("New text content.")),
	mcp.WithNumber("font_size", mcp.Description("New font size.")),
	mcp.WithString("color", mcp.Description("New color.")),
	mcp.WithString("font_weight", mcp.Description("normal or bold.")),
	mcp.WithNumber("size", mcp.Description("New pixel size.")),
	mcp.WithString("style", mcp.Description("New compass style.")),
	mcp.WithString("icon_type", mcp.Description("New icon glyph.")),
)

var removeToolDef = mcp.NewTool("builder_remove",
	mcp.WithDescription("Remove one element. An unknown id is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Element id.")),
)

var clearToolDef = mcp.NewTool("builder_clear",
	mcp.WithDescription("Remove every customization element."),
)

var saveToolDef = mcp.NewTool("builder_save",
	mcp.WithDescription("Save the session. Embedded sessions with checkout enabled hand the design to the host cart; others get a local preview id."),
)

var catalogListToolDef = mcp.NewTool("catalog_list",
	mcp.WithDescription("List every product with its sizes, aspect ratios, and prices."),
)

var frameResolveToolDef = mcp.NewTool("frame_resolve",
	mcp.WithDescription("Fit an aspect ratio into bounding dimensions and return the resulting frame."),
	mcp.WithString("aspect_ratio", mcp.Required(), mcp.Description("Ratio as W:H, e.g. 2.62:1.")),
	mcp.WithNumber("max_width", mcp.Description("Bounding width. Default 600.")),
	mcp.WithNumber("max_height", mcp.Description("Bounding height. Default 500.")),
)

var storeSearchToolDef = mcp.NewTool("store_search",
	mcp.WithDescription("Find dealer stores within 50 km of a coordinate, nearest first."),
	mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude in degrees.")),
	mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude in degrees.")),
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"builder_state": {
		def:     stateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleState },
	},
	"builder_choose_product": {
		def:     chooseProductToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChooseProduct },
	},
	"builder_choose_size": {
		def:     chooseSizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChooseSize },
	},
	"builder_set_tool": {
		def:     setToolToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetTool },
	},
	"builder_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"builder_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"builder_remove": {
		def:     removeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemove },
	},
	"builder_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"builder_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"catalog_list": {
		def:     catalogListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCatalogList },
	},
	"frame_resolve": {
		def:     frameResolveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFrameResolve },
	},
	"store_search": {
		def:     storeSearchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStoreSearch },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with builder tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(cat *catalog.Catalog, ctrl *session.Controller, stores *locator.Repository, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mapbuilder",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(cat, ctrl, stores)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(cat *catalog.Catalog, ctrl *session.Controller, stores *locator.Repository, cfg *config.Config, version string) error {
	s := NewServer(cat, ctrl, stores, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
