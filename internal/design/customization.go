// Package design models the customizable elements placed on a product
// preview: text labels, compass roses, and map icons. Elements live in
// an ordered List whose order is the render z-order. Positions are
// percentages of the preview frame (origin top-left), so a design is
// independent of the concrete frame size.
package design

import (
	"encoding/json"
	"fmt"

	"github.com/amgst/mapapp2/internal/errors"
)

// Kind tags the closed set of customization variants.
type Kind string

const (
	KindText    Kind = "text"
	KindCompass Kind = "compass"
	KindIcon    Kind = "icon"
)

// FontWeight is the weight of a text element.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// CompassStyle selects the compass rose artwork.
type CompassStyle string

const (
	StyleModern  CompassStyle = "modern"
	StyleClassic CompassStyle = "classic"
	StyleMinimal CompassStyle = "minimal"
)

// IconKind selects the icon glyph.
type IconKind string

const (
	IconPin      IconKind = "pin"
	IconStar     IconKind = "star"
	IconHeart    IconKind = "heart"
	IconHome     IconKind = "home"
	IconBuilding IconKind = "building"
)

// Customization is one placed element. The variant set is closed:
// only Text, Compass, and Icon implement it, and consumers switch on
// Kind() exhaustively.
type Customization interface {
	// ID is the opaque identifier, unique within a session, never reused.
	ID() string
	// Kind reports the variant tag.
	Kind() Kind
	// Position reports x, y as percentages of the frame (0..100).
	Position() (x, y float64)

	isCustomization()
}

// Text is a text label element.
type Text struct {
	ElementID  string     `json:"id"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Content    string     `json:"content"`
	FontSize   int        `json:"fontSize"`
	Color      string     `json:"color"`
	FontWeight FontWeight `json:"fontWeight"`
}

func (t Text) ID() string                   { return t.ElementID }
func (t Text) Kind() Kind                   { return KindText }
func (t Text) Position() (float64, float64) { return t.X, t.Y }
func (t Text) isCustomization()             {}

// Compass is a compass rose element.
type Compass struct {
	ElementID string       `json:"id"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Size      int          `json:"size"`
	Style     CompassStyle `json:"style"`
	Color     string       `json:"color"`
}

func (c Compass) ID() string                   { return c.ElementID }
func (c Compass) Kind() Kind                   { return KindCompass }
func (c Compass) Position() (float64, float64) { return c.X, c.Y }
func (c Compass) isCustomization()             {}

// Icon is a map icon element.
type Icon struct {
	ElementID string   `json:"id"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	IconKind  IconKind `json:"iconType"`
	Size      int      `json:"size"`
	Color     string   `json:"color"`
}

func (i Icon) ID() string                   { return i.ElementID }
func (i Icon) Kind() Kind                   { return KindIcon }
func (i Icon) Position() (float64, float64) { return i.X, i.Y }
func (i Icon) isCustomization()             {}

// Wire encoding: each element serializes as a flat object carrying a
// "type" tag alongside its fields, matching the cross-frame payload.

// MarshalJSON implements json.Marshaler for Text.
func (t Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindText, alias(t)})
}

// MarshalJSON implements json.Marshaler for Compass.
func (c Compass) MarshalJSON() ([]byte, error) {
	type alias Compass
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindCompass, alias(c)})
}

// MarshalJSON implements json.Marshaler for Icon.
func (i Icon) MarshalJSON() ([]byte, error) {
	type alias Icon
	return json.Marshal(struct {
		Type Kind `json:"type"`
		alias
	}{KindIcon, alias(i)})
}

// Decode unmarshals a single wire element by its "type" tag.
func Decode(data []byte) (Customization, error) {
	var tag struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("malformed customization: %v", err))
	}

	switch tag.Type {
	case KindText:
		var t Text
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("malformed text customization: %v", err))
		}
		return t, nil
	case KindCompass:
		var c Compass
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("malformed compass customization: %v", err))
		}
		return c, nil
	case KindIcon:
		var i Icon
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("malformed icon customization: %v", err))
		}
		return i, nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown customization type: %q", tag.Type))
	}
}

// List is the ordered collection of placed elements. Append order is
// z-order: later elements render above earlier ones.
type List []Customization

// UnmarshalJSON implements json.Unmarshaler, dispatching each element
// by its "type" tag.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("malformed customization list: %v", err))
	}

	out := make(List, 0, len(raw))
	for _, msg := range raw {
		c, err := Decode(msg)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// Find returns the element with the given id, if present.
func (l List) Find(id string) (Customization, bool) {
	for _, c := range l {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// IDs returns the element ids in z-order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, c := range l {
		ids[i] = c.ID()
	}
	return ids
}
