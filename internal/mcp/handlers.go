package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/design"
	"github.com/amgst/mapapp2/internal/errors"
	"github.com/amgst/mapapp2/internal/geometry"
	"github.com/amgst/mapapp2/internal/locator"
	"github.com/amgst/mapapp2/internal/session"
)

// Handlers holds dependencies for MCP tool handlers. The MCP surface
// drives exactly one builder session: each connected client gets its
// own server and with it its own session.
type Handlers struct {
	catalog *catalog.Catalog
	session *session.Controller
	stores  *locator.Repository
}

// NewHandlers creates a new Handlers instance. stores may be nil when
// no database is configured; store_search then reports an error.
func NewHandlers(cat *catalog.Catalog, ctrl *session.Controller, stores *locator.Repository) *Handlers {
	return &Handlers{catalog: cat, session: ctrl, stores: stores}
}

// Request types for each tool

// ChooseProductRequest represents the arguments for builder_choose_product.
type ChooseProductRequest struct {
	ProductID string `json:"product_id"`
}

// ChooseSizeRequest represents the arguments for builder_choose_size.
type ChooseSizeRequest struct {
	SizeID string `json:"size_id"`
}

// SetToolRequest represents the arguments for builder_set_tool.
type SetToolRequest struct {
	Tool string `json:"tool"`
}

// AddRequest represents the arguments for builder_add. The optional
// fields override the matching tool setting for this element.
type AddRequest struct {
	Kind       string  `json:"kind"`
	Content    *string `json:"content,omitempty"`
	FontSize   *int    `json:"font_size,omitempty"`
	Color      *string `json:"color,omitempty"`
	FontWeight *string `json:"font_weight,omitempty"`
	Size       *int    `json:"size,omitempty"`
	Style      *string `json:"style,omitempty"`
	IconType   *string `json:"icon_type,omitempty"`
}

// UpdateRequest represents the arguments for builder_update.
type UpdateRequest struct {
	ID         string   `json:"id"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Content    *string  `json:"content,omitempty"`
	FontSize   *int     `json:"font_size,omitempty"`
	Color      *string  `json:"color,omitempty"`
	FontWeight *string  `json:"font_weight,omitempty"`
	Size       *int     `json:"size,omitempty"`
	Style      *string  `json:"style,omitempty"`
	IconType   *string  `json:"icon_type,omitempty"`
}

// RemoveRequest represents the arguments for builder_remove.
type RemoveRequest struct {
	ID string `json:"id"`
}

// FrameResolveRequest represents the arguments for frame_resolve.
type FrameResolveRequest struct {
	AspectRatio string  `json:"aspect_ratio"`
	MaxWidth    float64 `json:"max_width,omitempty"`
	MaxHeight   float64 `json:"max_height,omitempty"`
}

// StoreSearchRequest represents the arguments for store_search.
type StoreSearchRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Handler implementations

// HandleState handles the builder_state tool call.
func (h *Handlers) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.session.State())
}

// HandleChooseProduct handles the builder_choose_product tool call.
func (h *Handlers) HandleChooseProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChooseProductRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	sel, err := h.session.ChooseProduct(input.ProductID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(sel)
}

// HandleChooseSize handles the builder_choose_size tool call.
func (h *Handlers) HandleChooseSize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChooseSizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	choice, err := h.session.ChooseSize(input.SizeID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(choice)
}

// HandleSetTool handles the builder_set_tool tool call.
func (h *Handlers) HandleSetTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetToolRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	tool, err := session.ParseTool(input.Tool)
	if err != nil {
		return errorResult(err), nil
	}
	if err := h.session.SetTool(tool); err != nil {
		return errorResult(err), nil
	}
	return successResult(h.session.State())
}

// HandleAdd handles the builder_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	kind := design.Kind(input.Kind)
	switch kind {
	case design.KindText, design.KindCompass, design.KindIcon:
	default:
		return errorResult(errors.NewInvalidRequest("unknown kind: " + input.Kind)), nil
	}

	settings := h.session.State().Settings
	applyAddOverrides(&settings, kind, input)
	if err := h.session.Configure(settings); err != nil {
		return errorResult(err), nil
	}

	id, err := h.session.Add(kind)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"id":    id,
		"state": h.session.State(),
	})
}

// applyAddOverrides merges the request's optional fields into the
// settings slice matching the kind being added.
func applyAddOverrides(settings *design.Settings, kind design.Kind, input AddRequest) {
	switch kind {
	case design.KindText:
		if input.Content != nil {
			settings.Text.Content = *input.Content
		}
		if input.FontSize != nil {
			settings.Text.FontSize = *input.FontSize
		}
		if input.Color != nil {
			settings.Text.Color = *input.Color
		}
		if input.FontWeight != nil {
			settings.Text.FontWeight = design.FontWeight(*input.FontWeight)
		}
	case design.KindCompass:
		if input.Size != nil {
			settings.Compass.Size = *input.Size
		}
		if input.Style != nil {
			settings.Compass.Style = design.CompassStyle(*input.Style)
		}
		if input.Color != nil {
			settings.Compass.Color = *input.Color
		}
	case design.KindIcon:
		if input.IconType != nil {
			settings.Icon.IconKind = design.IconKind(*input.IconType)
		}
		if input.Size != nil {
			settings.Icon.Size = *input.Size
		}
		if input.Color != nil {
			settings.Icon.Color = *input.Color
		}
	}
}

// HandleUpdate handles the builder_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	patch := design.Patch{
		X:        input.X,
		Y:        input.Y,
		Content:  input.Content,
		FontSize: input.FontSize,
		Color:    input.Color,
		Size:     input.Size,
	}
	if input.FontWeight != nil {
		w := design.FontWeight(*input.FontWeight)
		patch.FontWeight = &w
	}
	if input.Style != nil {
		s := design.CompassStyle(*input.Style)
		patch.Style = &s
	}
	if input.IconType != nil {
		k := design.IconKind(*input.IconType)
		patch.IconKind = &k
	}

	if err := h.session.Update(input.ID, patch); err != nil {
		return errorResult(err), nil
	}
	return successResult(h.session.State())
}

// HandleRemove handles the builder_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	if err := h.session.Remove(input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(h.session.State())
}

// HandleClear handles the builder_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.session.Clear(); err != nil {
		return errorResult(err), nil
	}
	return successResult(h.session.State())
}

// HandleSave handles the builder_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.session.Save(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCatalogList handles the catalog_list tool call.
func (h *Handlers) HandleCatalogList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{"products": h.catalog.Products()})
}

// HandleFrameResolve handles the frame_resolve tool call.
func (h *Handlers) HandleFrameResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FrameResolveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	maxW, maxH := input.MaxWidth, input.MaxHeight
	if maxW <= 0 {
		maxW = geometry.DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = geometry.DefaultMaxHeight
	}

	frame, err := geometry.ResolveFrame(input.AspectRatio, maxW, maxH)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(frame)
}

// HandleStoreSearch handles the store_search tool call.
func (h *Handlers) HandleStoreSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.stores == nil {
		return errorResult(errors.NewInvalidRequest("store locator is not configured")), nil
	}

	input, err := decode[StoreSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	results, err := h.stores.Search(ctx, input.Latitude, input.Longitude)
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	return successResult(map[string]any{"stores": results})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if berr, ok := err.(*errors.BuilderError); ok {
		errorObj := map[string]any{
			"code":    berr.Code,
			"message": berr.Message,
			"status":  berr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if berr.Code != errors.ErrInternal && berr.Details != nil {
			errorObj["details"] = berr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
