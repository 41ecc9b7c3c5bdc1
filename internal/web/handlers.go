package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amgst/mapapp2/internal/catalog"
	"github.com/amgst/mapapp2/internal/config"
	"github.com/amgst/mapapp2/internal/design"
	"github.com/amgst/mapapp2/internal/embed"
	"github.com/amgst/mapapp2/internal/errors"
	"github.com/amgst/mapapp2/internal/locator"
	"github.com/amgst/mapapp2/internal/session"
	"github.com/amgst/mapapp2/internal/shop"
)

// Handlers contains HTTP route handlers for the builder API.
type Handlers struct {
	cfg      *config.Config
	catalog  *catalog.Catalog
	sessions *session.Manager
	stores   *locator.Repository
	shop     *shop.Client
	logger   *log.Logger

	mu       sync.Mutex
	outboxes map[string]*outbox
	bridges  map[string]*embed.Bridge
}

// outbox buffers child→parent messages for HTTP sessions. The browser
// client polls or reads them in message-endpoint responses, standing in
// for a direct cross-window channel.
type outbox struct {
	mu   sync.Mutex
	msgs []embed.Message
}

// Post implements embed.HostChannel.
func (o *outbox) Post(msg embed.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

// Drain returns and clears the pending messages.
func (o *outbox) Drain() []embed.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.msgs
	o.msgs = nil
	return msgs
}

// productPayload is a catalog product with its description rendered to
// HTML for direct display.
type productPayload struct {
	catalog.ProductVariant
	DescriptionHTML string `json:"descriptionHtml"`
}

// HandleCatalog handles GET /api/catalog.
func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.Products()
	payload := make([]productPayload, len(products))
	for i, p := range products {
		payload[i] = productPayload{
			ProductVariant:  p,
			DescriptionHTML: renderMarkdown(p.Description),
		}
	}
	renderJSON(w, http.StatusOK, map[string]any{"products": payload})
}

// sessionPayload is the session state returned by session endpoints.
type sessionPayload struct {
	SessionID string           `json:"sessionId"`
	State     session.Snapshot `json:"state"`
	Frame     frame            `json:"frame"`
	Context   embed.Context    `json:"context"`
}

type frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (h *Handlers) sessionResponse(id string, ctrl *session.Controller) sessionPayload {
	f := ctrl.Frame()
	return sessionPayload{
		SessionID: id,
		State:     ctrl.State(),
		Frame:     frame{Width: f.Width, Height: f.Height},
		Context:   ctrl.EmbedContext(),
	}
}

// HandleCreateSession handles POST /api/sessions and
// POST /api/sessions/{productId}. The host configuration arrives as
// query parameters, the same keys a loader shell passes to the
// embedded app; a product path segment takes priority over the
// `product` query key and the host default.
func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	embedCtx := embed.ParseContext(q, false)

	box := &outbox{}
	var ctrl *session.Controller
	bridge := embed.NewBridge(embed.BridgeConfig{
		Channel: box,
		Height: func() float64 {
			if ctrl == nil {
				return 0
			}
			return ctrl.Frame().Height
		},
		AllowedOrigins: h.cfg.AllowedOrigins,
	})

	id, created := h.sessions.Create(session.Config{
		Embed:          embedCtx,
		Bridge:         bridge,
		RouteProductID: r.PathValue("productId"),
		QueryProductID: q.Get("product"),
		SaveDelay:      time.Duration(h.cfg.SaveDelayMS) * time.Millisecond,
	})
	ctrl = created

	h.mu.Lock()
	h.outboxes[id] = box
	h.bridges[id] = bridge
	h.mu.Unlock()

	if err := bridge.AnnounceReady(); err != nil {
		h.logger.Error("announce ready", "session", id, "err", err)
	}
	h.logger.Info("session created", "session", id, "embedded", embedCtx.IsEmbedded)

	renderJSON(w, http.StatusCreated, h.sessionResponse(id, ctrl))
}

// controller resolves the session addressed by the request path.
func (h *Handlers) controller(r *http.Request) (string, *session.Controller, error) {
	id := r.PathValue("id")
	ctrl, err := h.sessions.Get(id)
	if err != nil {
		return "", nil, err
	}
	return id, ctrl, nil
}

// HandleGetSession handles GET /api/sessions/{id}.
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleChooseProduct handles POST /api/sessions/{id}/product.
func (h *Handlers) HandleChooseProduct(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	if _, err := ctrl.ChooseProduct(body.ProductID); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleChooseSize handles POST /api/sessions/{id}/size.
func (h *Handlers) HandleChooseSize(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		SizeID string `json:"sizeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	if _, err := ctrl.ChooseSize(body.SizeID); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleSetTool handles POST /api/sessions/{id}/tool.
func (h *Handlers) HandleSetTool(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Tool string `json:"tool"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	tool, err := session.ParseTool(body.Tool)
	if err != nil {
		renderError(w, err)
		return
	}
	if err := ctrl.SetTool(tool); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleAddElement handles POST /api/sessions/{id}/elements. An
// optional settings object replaces the session's tool settings before
// the element is created.
func (h *Handlers) HandleAddElement(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Kind     design.Kind      `json:"kind"`
		Settings *design.Settings `json:"settings,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}
	switch body.Kind {
	case design.KindText, design.KindCompass, design.KindIcon:
	default:
		renderError(w, errors.NewInvalidRequest("unknown kind: "+string(body.Kind)))
		return
	}

	if body.Settings != nil {
		if err := ctrl.Configure(*body.Settings); err != nil {
			renderError(w, err)
			return
		}
	}

	elementID, err := ctrl.Add(body.Kind)
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, map[string]any{
		"id":      elementID,
		"session": h.sessionResponse(id, ctrl),
	})
}

// HandleUpdateElement handles PATCH /api/sessions/{id}/elements/{elementId}.
func (h *Handlers) HandleUpdateElement(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var patch design.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	if err := ctrl.Update(r.PathValue("elementId"), patch); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleRemoveElement handles DELETE /api/sessions/{id}/elements/{elementId}.
func (h *Handlers) HandleRemoveElement(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	if err := ctrl.Remove(r.PathValue("elementId")); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleClearElements handles DELETE /api/sessions/{id}/elements.
func (h *Handlers) HandleClearElements(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	if err := ctrl.Clear(); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleMapBounds handles PUT /api/sessions/{id}/map-bounds. The
// bounds are opaque; they ride along into the cart payload.
func (h *Handlers) HandleMapBounds(w http.ResponseWriter, r *http.Request) {
	id, ctrl, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var body struct {
		Bounds json.RawMessage `json:"bounds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	if err := ctrl.SetMapBounds(body.Bounds); err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, h.sessionResponse(id, ctrl))
}

// HandleSave handles POST /api/sessions/{id}/save.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := h.sessions.Save(r.Context(), id)
	if err != nil {
		renderError(w, err)
		return
	}
	h.logger.Info("session saved", "session", id, "outcome", result.Outcome)
	renderJSON(w, http.StatusOK, result)
}

// HandleMessage handles POST /api/sessions/{id}/message: one inbound
// host message. The response carries every message the app emitted
// since the last read, including any answer to this one.
func (h *Handlers) HandleMessage(w http.ResponseWriter, r *http.Request) {
	id, _, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	var msg embed.Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	h.mu.Lock()
	box := h.outboxes[id]
	bridgeFor := h.bridges[id]
	h.mu.Unlock()
	if box == nil || bridgeFor == nil {
		renderError(w, errors.NewNotFound(id))
		return
	}

	if err := bridgeFor.HandleMessage(r.Header.Get("Origin"), msg); err != nil {
		renderError(w, errors.NewInternal(err))
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"messages": box.Drain()})
}

// HandleMessages handles GET /api/sessions/{id}/messages: drain the
// pending child→parent messages without sending anything.
func (h *Handlers) HandleMessages(w http.ResponseWriter, r *http.Request) {
	id, _, err := h.controller(r)
	if err != nil {
		renderError(w, err)
		return
	}

	h.mu.Lock()
	box := h.outboxes[id]
	h.mu.Unlock()
	if box == nil {
		renderError(w, errors.NewNotFound(id))
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"messages": box.Drain()})
}

// HandlePreview handles GET /api/previews/{previewId}.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessions.Preview(r.PathValue("previewId"))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, snap)
}

// HandleStoreSearch handles GET /api/stores/search.
func (h *Handlers) HandleStoreSearch(w http.ResponseWriter, r *http.Request) {
	if h.stores == nil {
		renderError(w, errors.NewInvalidRequest("store locator is not configured"))
		return
	}

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		renderError(w, errors.NewInvalidRequest("lat must be a number"))
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		renderError(w, errors.NewInvalidRequest("lng must be a number"))
		return
	}

	results, err := h.stores.Search(r.Context(), lat, lng)
	if err != nil {
		renderError(w, errors.NewInternal(err))
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"stores": results})
}

// HandleShop handles GET /api/shop.
func (h *Handlers) HandleShop(w http.ResponseWriter, r *http.Request) {
	if h.shop == nil {
		renderError(w, errors.NewInvalidRequest("shop info is not configured"))
		return
	}

	info, err := h.shop.FetchInfo(r.Context())
	if err != nil {
		renderError(w, errors.NewInternal(err))
		return
	}
	renderJSON(w, http.StatusOK, info)
}
