package design

import (
	"crypto/rand"
	"io"
	"math"
	mathrand "math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amgst/mapapp2/internal/errors"
)

// Placement jitter: new elements land near the frame center, offset by
// up to jitterBand percentage points per axis so stacked adds never sit
// exactly on top of each other.
const (
	centerX    = 50.0
	centerY    = 50.0
	jitterBand = 10.0
)

// Store constructs customization elements. It holds the id entropy and
// the jitter source so tests can substitute deterministic ones.
type Store struct {
	entropy io.Reader
	rng     func() float64 // uniform in [0,1)
}

// NewStore creates a Store with crypto entropy for ids and a
// time-seeded jitter source.
func NewStore() *Store {
	seeded := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
	return &Store{
		entropy: ulid.Monotonic(rand.Reader, 0),
		rng:     seeded.Float64,
	}
}

// NewStoreDeterministic creates a Store with the given entropy and
// jitter source. Used by tests to assert exact ids and placement.
func NewStoreDeterministic(entropy io.Reader, rng func() float64) *Store {
	return &Store{entropy: entropy, rng: rng}
}

// Add constructs a new element of the given kind from the matching tool
// settings, placed near center with jitter, and returns a new list with
// the element appended plus its id. The input list is not mutated.
// Content semantics (e.g. empty text) are the caller's concern; Add only
// rejects structurally unknown kinds.
func (s *Store) Add(list List, kind Kind, settings Settings) (List, string, error) {
	id, err := s.newID()
	if err != nil {
		return list, "", errors.NewInternal(err)
	}

	x := s.jitter(centerX)
	y := s.jitter(centerY)

	var c Customization
	switch kind {
	case KindText:
		c = Text{
			ElementID:  id,
			X:          x,
			Y:          y,
			Content:    settings.Text.Content,
			FontSize:   settings.Text.FontSize,
			Color:      settings.Text.Color,
			FontWeight: settings.Text.FontWeight,
		}
	case KindCompass:
		c = Compass{
			ElementID: id,
			X:         x,
			Y:         y,
			Size:      settings.Compass.Size,
			Style:     settings.Compass.Style,
			Color:     settings.Compass.Color,
		}
	case KindIcon:
		c = Icon{
			ElementID: id,
			X:         x,
			Y:         y,
			IconKind:  settings.Icon.IconKind,
			Size:      settings.Icon.Size,
			Color:     settings.Icon.Color,
		}
	default:
		return list, "", errors.NewInvalidRequest("kind must be one of: text, compass, icon")
	}

	out := make(List, len(list), len(list)+1)
	copy(out, list)
	return append(out, c), id, nil
}

// newID generates a fresh ULID.
func (s *Store) newID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// jitter offsets center by up to ±jitterBand, clamped to [0,100].
func (s *Store) jitter(center float64) float64 {
	return clampPercent(center + s.rng()*2*jitterBand - jitterBand)
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Patch carries a partial update. Nil fields are left unchanged; fields
// that do not apply to the target's kind are ignored.
type Patch struct {
	X          *float64      `json:"x,omitempty"`
	Y          *float64      `json:"y,omitempty"`
	Content    *string       `json:"content,omitempty"`
	FontSize   *int          `json:"fontSize,omitempty"`
	Color      *string       `json:"color,omitempty"`
	FontWeight *FontWeight   `json:"fontWeight,omitempty"`
	Size       *int          `json:"size,omitempty"`
	Style      *CompassStyle `json:"style,omitempty"`
	IconKind   *IconKind     `json:"iconType,omitempty"`
}

// Update returns a new list where the element matching id has the
// patch's non-nil fields replaced. Absent ids are a benign no-op: the
// original list is returned unchanged.
func (l List) Update(id string, patch Patch) List {
	idx := -1
	for i, c := range l {
		if c.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return l
	}

	out := make(List, len(l))
	copy(out, l)
	out[idx] = applyPatch(out[idx], patch)
	return out
}

// applyPatch applies patch to one element, exhaustively per variant.
func applyPatch(c Customization, patch Patch) Customization {
	switch v := c.(type) {
	case Text:
		if patch.X != nil {
			v.X = clampPercent(*patch.X)
		}
		if patch.Y != nil {
			v.Y = clampPercent(*patch.Y)
		}
		if patch.Content != nil {
			v.Content = *patch.Content
		}
		if patch.FontSize != nil {
			v.FontSize = *patch.FontSize
		}
		if patch.Color != nil {
			v.Color = *patch.Color
		}
		if patch.FontWeight != nil {
			v.FontWeight = *patch.FontWeight
		}
		return v
	case Compass:
		if patch.X != nil {
			v.X = clampPercent(*patch.X)
		}
		if patch.Y != nil {
			v.Y = clampPercent(*patch.Y)
		}
		if patch.Size != nil {
			v.Size = *patch.Size
		}
		if patch.Style != nil {
			v.Style = *patch.Style
		}
		if patch.Color != nil {
			v.Color = *patch.Color
		}
		return v
	case Icon:
		if patch.X != nil {
			v.X = clampPercent(*patch.X)
		}
		if patch.Y != nil {
			v.Y = clampPercent(*patch.Y)
		}
		if patch.Size != nil {
			v.Size = *patch.Size
		}
		if patch.IconKind != nil {
			v.IconKind = *patch.IconKind
		}
		if patch.Color != nil {
			v.Color = *patch.Color
		}
		return v
	default:
		return c
	}
}

// Remove returns a new list without the element matching id. Absent ids
// are a benign no-op.
func (l List) Remove(id string) List {
	idx := -1
	for i, c := range l {
		if c.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return l
	}

	out := make(List, 0, len(l)-1)
	out = append(out, l[:idx]...)
	return append(out, l[idx+1:]...)
}

// Clear returns an empty list.
func (l List) Clear() List {
	return List{}
}
