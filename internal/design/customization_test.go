package design

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/amgst/mapapp2/internal/errors"
)

func TestMarshal_TypeTags(t *testing.T) {
	list := List{
		Text{ElementID: "t1", X: 50, Y: 50, Content: "Paris", FontSize: 16, Color: "#000000", FontWeight: WeightNormal},
		Compass{ElementID: "c1", X: 25, Y: 75, Size: 32, Style: StyleModern, Color: "#000000"},
		Icon{ElementID: "i1", X: 10, Y: 10, IconKind: IconPin, Size: 24, Color: "#ff0000"},
	}

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	for _, want := range []string{`"type":"text"`, `"type":"compass"`, `"type":"icon"`, `"iconType":"pin"`, `"fontWeight":"normal"`} {
		if !strings.Contains(s, want) {
			t.Errorf("marshaled list missing %s: %s", want, s)
		}
	}
}

func TestUnmarshal_RoundTrip(t *testing.T) {
	in := List{
		Text{ElementID: "t1", X: 42.5, Y: 57.5, Content: "Paris", FontSize: 18, Color: "#112233", FontWeight: WeightBold},
		Icon{ElementID: "i1", X: 10, Y: 90, IconKind: IconHeart, Size: 24, Color: "#ff0000"},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var out List
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	text, ok := out[0].(Text)
	if !ok {
		t.Fatalf("out[0] type = %T, want Text", out[0])
	}
	if text != in[0].(Text) {
		t.Errorf("text round-trip = %+v, want %+v", text, in[0])
	}
	icon, ok := out[1].(Icon)
	if !ok {
		t.Fatalf("out[1] type = %T, want Icon", out[1])
	}
	if icon != in[1].(Icon) {
		t.Errorf("icon round-trip = %+v, want %+v", icon, in[1])
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"sticker","id":"s1"}`))
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Decode unknown type: error = %v, want INVALID_REQUEST", err)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Decode malformed: error = %v, want INVALID_REQUEST", err)
	}
}
