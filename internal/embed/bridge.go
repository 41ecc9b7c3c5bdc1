package embed

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/amgst/mapapp2/internal/design"
)

// HostChannel is the capability the bridge posts child→parent messages
// through. Implementations wrap whatever transport actually reaches
// the parent document; tests substitute a recorder.
type HostChannel interface {
	Post(msg Message) error
}

// ChannelFunc adapts a function to the HostChannel interface.
type ChannelFunc func(msg Message) error

// Post implements HostChannel.
func (f ChannelFunc) Post(msg Message) error { return f(msg) }

// Bridge runs the message protocol with the parent document.
type Bridge struct {
	channel HostChannel
	height  func() float64
	allowed map[string]bool // nil = any origin accepted
}

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	// Channel posts outbound messages. Required.
	Channel HostChannel

	// Height reports the current content height for ready/resize
	// messages. Nil reports 0.
	Height func() float64

	// AllowedOrigins restricts which senders' inbound messages are
	// acted on. Empty accepts any origin; production embeddings
	// should set it.
	AllowedOrigins []string
}

// NewBridge creates a Bridge.
func NewBridge(cfg BridgeConfig) *Bridge {
	b := &Bridge{
		channel: cfg.Channel,
		height:  cfg.Height,
	}
	if b.height == nil {
		b.height = func() float64 { return 0 }
	}
	if len(cfg.AllowedOrigins) > 0 {
		b.allowed = make(map[string]bool, len(cfg.AllowedOrigins))
		for _, o := range cfg.AllowedOrigins {
			b.allowed[o] = true
		}
	}
	return b
}

// AnnounceReady posts the one-time app:ready message with the current
// content height.
func (b *Bridge) AnnounceReady() error {
	return b.channel.Post(Message{Type: TypeReady, Height: b.height()})
}

// SendAddToCart posts the configured product to the host cart.
func (b *Bridge) SendAddToCart(productID, sizeID string, customizations design.List, mapBounds json.RawMessage) error {
	return b.channel.Post(Message{
		Type: TypeAddToCart,
		Product: &CartProduct{
			ID: productID,
			Customization: CartCustomization{
				MapBounds:      mapBounds,
				Customizations: customizations,
				Size:           sizeID,
			},
		},
	})
}

// HandleMessage dispatches one inbound message from the parent.
// Only shopify:resize is recognized; it answers with app:resize and the
// current content height. Every other type, and any message from a
// disallowed origin, is ignored without error.
func (b *Bridge) HandleMessage(origin string, msg Message) error {
	if b.allowed != nil && !b.allowed[origin] {
		return nil
	}

	switch msg.Type {
	case TypeHostResize:
		return b.channel.Post(Message{Type: TypeResize, Height: b.height()})
	default:
		return nil
	}
}

// Listen decodes newline-delimited JSON messages from r and dispatches
// each through HandleMessage until EOF. Malformed lines are skipped:
// the host is a collaborator and its noise must not kill the session.
func (b *Bridge) Listen(r io.Reader, origin string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			continue
		}
		if err := b.HandleMessage(origin, msg); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// StdioChannel posts messages as JSON lines to a writer. It is the
// transport used when the builder runs attached to a host shell over
// a pipe.
type StdioChannel struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdioChannel creates a StdioChannel writing to w.
func NewStdioChannel(w io.Writer) *StdioChannel {
	return &StdioChannel{enc: json.NewEncoder(w)}
}

// Post implements HostChannel.
func (c *StdioChannel) Post(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(msg)
}
