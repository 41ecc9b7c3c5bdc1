// Package session owns the builder session: the active product and
// size, the active tool, the current customization list, and the
// save/preview state machine. All mutation goes through the Controller,
// which guards the session with a mutex because the hosting HTTP and
// MCP surfaces are concurrent even though the modeled editing loop is
// not.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/design"
	"github.com/amgst/mapapp2/internal/embed"
	"github.com/amgst/mapapp2/internal/errors"
	"github.com/amgst/mapapp2/internal/geometry"
)

// Phase is the session's position in the editing lifecycle.
type Phase string

const (
	PhaseNoProduct Phase = "no_product_selected"
	PhaseEditing   Phase = "editing"
	PhaseSaving    Phase = "saving"
	PhaseSaved     Phase = "saved"
	PhasePreview   Phase = "preview_requested"
)

// Tool is the active editing tool.
type Tool string

const (
	ToolSelect  Tool = "select"
	ToolText    Tool = "text"
	ToolCompass Tool = "compass"
	ToolIcon    Tool = "icon"
)

// ParseTool validates a tool name from the wire.
func ParseTool(s string) (Tool, error) {
	switch Tool(s) {
	case ToolSelect, ToolText, ToolCompass, ToolIcon:
		return Tool(s), nil
	}
	return "", errors.NewInvalidRequest("unknown tool: " + s)
}

// DefaultSaveDelay is the simulated save round-trip.
const DefaultSaveDelay = 2 * time.Second

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Phase            Phase           `json:"phase"`
	ProductID        string          `json:"productId,omitempty"`
	SizeID           string          `json:"sizeId,omitempty"`
	AspectRatio      string          `json:"aspectRatio,omitempty"`
	Price            float64         `json:"price,omitempty"`
	ActiveTool       Tool            `json:"activeTool"`
	Customizations   design.List     `json:"customizations"`
	Settings         design.Settings `json:"settings"`
	IsSaving         bool            `json:"isSaving"`
	PreviewSessionID string          `json:"previewSessionId,omitempty"`
	MapBounds        json.RawMessage `json:"mapBounds,omitempty"`
}

// SaveOutcome names where a completed save routed.
type SaveOutcome string

const (
	// OutcomeCheckout means the design was handed to the host cart.
	OutcomeCheckout SaveOutcome = "checkout"
	// OutcomePreview means the session moved to a local preview.
	OutcomePreview SaveOutcome = "preview"
)

// SaveResult reports a completed save.
type SaveResult struct {
	Outcome          SaveOutcome `json:"outcome"`
	PreviewSessionID string      `json:"previewSessionId,omitempty"`
}

// Config assembles a Controller.
type Config struct {
	// Catalog resolves product and size choices. Required.
	Catalog *catalog.Catalog

	// Store creates and places customization elements. Required.
	Store *design.Store

	// Embed is the embedding context, parsed once at session start.
	Embed embed.Context

	// Bridge posts messages to the host document. Nil when the
	// session runs standalone.
	Bridge *embed.Bridge

	// RouteProductID and QueryProductID are the externally supplied
	// initial product, checked in that priority order ahead of the
	// embed context's default product.
	RouteProductID string
	QueryProductID string

	// SaveDelay is the simulated save round-trip. Zero completes
	// immediately.
	SaveDelay time.Duration

	// NewPreviewID mints opaque preview session identifiers. Nil
	// uses random UUIDs.
	NewPreviewID func() string
}

// Controller mediates every mutation of one builder session.
type Controller struct {
	mu sync.Mutex

	catalog      *catalog.Catalog
	store        *design.Store
	bridge       *embed.Bridge
	embedCtx     embed.Context
	saveDelay    time.Duration
	newPreviewID func() string

	phase       Phase
	productID   string
	sizeID      string
	aspectRatio string
	price       float64
	tool        Tool
	list        design.List
	settings    design.Settings
	saving      bool
	previewID   string
	mapBounds   json.RawMessage
}

// New creates a session Controller. If an initial product id is
// supplied (route, then query, then the host's default product) and it
// resolves, the session starts in Editing; an unresolvable initial id
// falls back to NoProductSelected rather than failing the whole
// session, since product choice is still available.
func New(cfg Config) *Controller {
	c := &Controller{
		catalog:      cfg.Catalog,
		store:        cfg.Store,
		bridge:       cfg.Bridge,
		embedCtx:     cfg.Embed,
		saveDelay:    cfg.SaveDelay,
		newPreviewID: cfg.NewPreviewID,
		phase:        PhaseNoProduct,
		tool:         ToolSelect,
		settings:     design.DefaultSettings(),
	}
	if c.newPreviewID == nil {
		c.newPreviewID = uuid.NewString
	}

	for _, id := range []string{cfg.RouteProductID, cfg.QueryProductID, cfg.Embed.DefaultProductID} {
		if id == "" {
			continue
		}
		if sel, err := c.catalog.SelectProduct(id); err == nil {
			c.applySelection(sel)
			break
		}
	}
	return c
}

func (c *Controller) applySelection(sel catalog.Selection) {
	c.productID = sel.ProductID
	c.sizeID = sel.SizeID
	c.aspectRatio = sel.AspectRatio
	c.price = sel.Price
	c.phase = PhaseEditing
}

// EmbedContext returns the host configuration this session started
// with.
func (c *Controller) EmbedContext() embed.Context {
	return c.embedCtx
}

// State returns a snapshot of the current session.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:            c.phase,
		ProductID:        c.productID,
		SizeID:           c.sizeID,
		AspectRatio:      c.aspectRatio,
		Price:            c.price,
		ActiveTool:       c.tool,
		Customizations:   c.list,
		Settings:         c.settings,
		IsSaving:         c.saving,
		PreviewSessionID: c.previewID,
		MapBounds:        c.mapBounds,
	}
}

// Frame resolves the preview frame for the selected size within the
// default bounds. With no selection, or if the ratio fails to parse,
// it falls back to a square fit instead of failing the render.
func (c *Controller) Frame() geometry.Frame {
	c.mu.Lock()
	label := c.aspectRatio
	c.mu.Unlock()

	if label != "" {
		if f, err := geometry.ResolveFrame(label, geometry.DefaultMaxWidth, geometry.DefaultMaxHeight); err == nil {
			return f
		}
	}
	return geometry.Ratio{Value: 1}.Fit(geometry.DefaultMaxWidth, geometry.DefaultMaxHeight)
}

func (c *Controller) mutableLocked() error {
	if c.saving {
		return errors.NewInvalidRequest("save in progress")
	}
	return nil
}

// ChooseProduct selects a product, auto-selecting its first size, and
// moves the session to Editing. Existing customizations are kept.
func (c *Controller) ChooseProduct(productID string) (catalog.Selection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return catalog.Selection{}, err
	}
	sel, err := c.catalog.SelectProduct(productID)
	if err != nil {
		return catalog.Selection{}, err
	}
	c.applySelection(sel)
	c.previewID = ""
	return sel, nil
}

// ChooseSize selects a size within the current product. The aspect
// ratio always follows the selected size.
func (c *Controller) ChooseSize(sizeID string) (catalog.SizeChoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return catalog.SizeChoice{}, err
	}
	if c.productID == "" {
		return catalog.SizeChoice{}, errors.NewNoProductSelected()
	}
	choice, err := c.catalog.SelectSize(c.productID, sizeID)
	if err != nil {
		return catalog.SizeChoice{}, err
	}
	c.sizeID = choice.SizeID
	c.aspectRatio = choice.AspectRatio
	c.price = choice.Price
	return choice, nil
}

// SetTool switches the active tool. It never creates elements.
func (c *Controller) SetTool(tool Tool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	if _, err := ParseTool(string(tool)); err != nil {
		return err
	}
	c.tool = tool
	return nil
}

// Configure replaces the per-tool settings the next Add will use.
func (c *Controller) Configure(settings design.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	c.settings = settings
	return nil
}

// Add creates one element of the given kind from the current tool
// settings and appends it to the session's list. Blank text content is
// rejected before any element is created.
func (c *Controller) Add(kind design.Kind) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return "", err
	}
	if c.productID == "" {
		return "", errors.NewNoProductSelected()
	}
	if kind == design.KindText && c.settings.Text.Content == "" {
		return "", errors.NewEmptyContent()
	}

	list, id, err := c.store.Add(c.list, kind, c.settings)
	if err != nil {
		return "", err
	}
	c.list = list
	return id, nil
}

// Update applies a partial change to one element. An absent id is a
// benign no-op.
func (c *Controller) Update(id string, patch design.Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	c.list = c.list.Update(id, patch)
	return nil
}

// Remove deletes one element. An absent id is a benign no-op.
func (c *Controller) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	c.list = c.list.Remove(id)
	return nil
}

// Clear empties the customization list.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	c.list = c.list.Clear()
	return nil
}

// ApplyCustomizations replaces the customization list wholesale. The
// store is the source of truth; the session keeps its latest snapshot.
func (c *Controller) ApplyCustomizations(list design.List) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	c.list = list
	return nil
}

// SetMapBounds records the opaque map viewport carried through to the
// cart payload.
func (c *Controller) SetMapBounds(bounds json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	c.mapBounds = bounds
	return nil
}

// Save completes the session. It requires a selected product, holds
// isSaving for the simulated round-trip, then routes: embedded with
// checkout enabled hands the design to the host cart and ends in
// Saved; otherwise the session moves to PreviewRequested with a fresh
// opaque preview id. Cancelling ctx re-enters Editing with all prior
// state intact.
func (c *Controller) Save(ctx context.Context) (SaveResult, error) {
	c.mu.Lock()
	if c.productID == "" {
		c.mu.Unlock()
		return SaveResult{}, errors.NewNoProductSelected()
	}
	if c.saving {
		c.mu.Unlock()
		return SaveResult{}, errors.NewInvalidRequest("save in progress")
	}
	c.saving = true
	c.phase = PhaseSaving
	productID, sizeID := c.productID, c.sizeID
	list, bounds := c.list, c.mapBounds
	delay := c.saveDelay
	c.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			c.mu.Lock()
			c.saving = false
			c.phase = PhaseEditing
			c.mu.Unlock()
			return SaveResult{}, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bridge != nil && c.embedCtx.IsEmbedded && c.embedCtx.CheckoutEnabled {
		if err := c.bridge.SendAddToCart(productID, sizeID, list, bounds); err != nil {
			c.saving = false
			c.phase = PhaseEditing
			return SaveResult{}, errors.NewInternal(err)
		}
		c.saving = false
		c.phase = PhaseSaved
		return SaveResult{Outcome: OutcomeCheckout}, nil
	}

	c.saving = false
	c.phase = PhasePreview
	c.previewID = c.newPreviewID()
	return SaveResult{Outcome: OutcomePreview, PreviewSessionID: c.previewID}, nil
}
