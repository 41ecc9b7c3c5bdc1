package embed

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/amgst/mapapp2/internal/design"
)

// recorder captures posted messages for assertions.
type recorder struct {
	messages []Message
}

func (r *recorder) Post(msg Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func TestBridge_AnnounceReady(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(BridgeConfig{
		Channel: rec,
		Height:  func() float64 { return 820 },
	})

	if err := b.AnnounceReady(); err != nil {
		t.Fatalf("AnnounceReady() error = %v", err)
	}
	if len(rec.messages) != 1 {
		t.Fatalf("posted %d messages, want 1", len(rec.messages))
	}
	got := rec.messages[0]
	if got.Type != TypeReady {
		t.Errorf("Type = %q, want %q", got.Type, TypeReady)
	}
	if got.Height != 820 {
		t.Errorf("Height = %v, want 820", got.Height)
	}
}

func TestBridge_HostResizeAnswered(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(BridgeConfig{
		Channel: rec,
		Height:  func() float64 { return 640 },
	})

	// A resize can arrive before any product is chosen; the bridge
	// must still answer.
	if err := b.HandleMessage("", Message{Type: TypeHostResize}); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(rec.messages) != 1 {
		t.Fatalf("posted %d messages, want 1", len(rec.messages))
	}
	if rec.messages[0].Type != TypeResize {
		t.Errorf("Type = %q, want %q", rec.messages[0].Type, TypeResize)
	}
	if rec.messages[0].Height != 640 {
		t.Errorf("Height = %v, want 640", rec.messages[0].Height)
	}
}

func TestBridge_UnknownInboundTypesInert(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(BridgeConfig{Channel: rec})

	for _, typ := range []string{"shopify:checkout", "app:ready", "garbage", ""} {
		if err := b.HandleMessage("", Message{Type: typ}); err != nil {
			t.Errorf("HandleMessage(%q) error = %v, want nil", typ, err)
		}
	}
	if len(rec.messages) != 0 {
		t.Errorf("posted %d messages, want 0", len(rec.messages))
	}
}

func TestBridge_OriginAllowlist(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(BridgeConfig{
		Channel:        rec,
		Height:         func() float64 { return 100 },
		AllowedOrigins: []string{"https://shop.example.com"},
	})

	if err := b.HandleMessage("https://evil.example.com", Message{Type: TypeHostResize}); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(rec.messages) != 0 {
		t.Fatalf("disallowed origin produced %d messages, want 0", len(rec.messages))
	}

	if err := b.HandleMessage("https://shop.example.com", Message{Type: TypeHostResize}); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(rec.messages) != 1 {
		t.Errorf("allowed origin produced %d messages, want 1", len(rec.messages))
	}
}

func TestBridge_SendAddToCartPayload(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(BridgeConfig{Channel: rec})

	list := design.List{
		design.Text{ElementID: "el-1", X: 50, Y: 50, Content: "Home", FontSize: 16, Color: "#000000", FontWeight: design.WeightNormal},
	}
	bounds := json.RawMessage(`{"north":1,"south":0,"east":1,"west":0}`)

	if err := b.SendAddToCart("candle-square", "large", list, bounds); err != nil {
		t.Fatalf("SendAddToCart() error = %v", err)
	}
	if len(rec.messages) != 1 {
		t.Fatalf("posted %d messages, want 1", len(rec.messages))
	}

	raw, err := json.Marshal(rec.messages[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		Type    string `json:"type"`
		Product struct {
			ID            string `json:"id"`
			Customization struct {
				MapBounds      map[string]float64 `json:"mapBounds"`
				Customizations []json.RawMessage  `json:"customizations"`
				Size           string             `json:"size"`
			} `json:"customization"`
		} `json:"product"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Type != TypeAddToCart {
		t.Errorf("type = %q, want %q", decoded.Type, TypeAddToCart)
	}
	if decoded.Product.ID != "candle-square" {
		t.Errorf("product.id = %q, want candle-square", decoded.Product.ID)
	}
	if decoded.Product.Customization.Size != "large" {
		t.Errorf("customization.size = %q, want large", decoded.Product.Customization.Size)
	}
	if decoded.Product.Customization.MapBounds["north"] != 1 {
		t.Errorf("mapBounds.north = %v, want 1", decoded.Product.Customization.MapBounds["north"])
	}
	if len(decoded.Product.Customization.Customizations) != 1 {
		t.Errorf("customizations length = %d, want 1", len(decoded.Product.Customization.Customizations))
	}
}

func TestBridge_ListenSkipsMalformedLines(t *testing.T) {
	rec := &recorder{}
	b := NewBridge(BridgeConfig{
		Channel: rec,
		Height:  func() float64 { return 10 },
	})

	input := strings.Join([]string{
		`{"type":"shopify:resize"}`,
		`not json at all`,
		``,
		`{"type":"unknown"}`,
		`{"type":"shopify:resize"}`,
	}, "\n")

	if err := b.Listen(strings.NewReader(input), ""); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if len(rec.messages) != 2 {
		t.Fatalf("posted %d messages, want 2", len(rec.messages))
	}
	for i, msg := range rec.messages {
		if msg.Type != TypeResize {
			t.Errorf("message %d type = %q, want %q", i, msg.Type, TypeResize)
		}
	}
}

func TestStdioChannel_EncodesJSONLines(t *testing.T) {
	var buf strings.Builder
	ch := NewStdioChannel(&buf)

	if err := ch.Post(Message{Type: TypeReady, Height: 5}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var msg Message
	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if msg.Type != TypeReady || msg.Height != 5 {
		t.Errorf("decoded = %+v, want app:ready height 5", msg)
	}
}
