package design

// TextSettings is the text tool's current configuration. Content is the
// pending label text; the remaining fields are styling.
type TextSettings struct {
	Content    string     `json:"content"`
	FontSize   int        `json:"fontSize"`
	Color      string     `json:"color"`
	FontWeight FontWeight `json:"fontWeight"`
}

// CompassSettings is the compass tool's current configuration.
type CompassSettings struct {
	Size  int          `json:"size"`
	Style CompassStyle `json:"style"`
	Color string       `json:"color"`
}

// IconSettings is the icon tool's current configuration.
type IconSettings struct {
	IconKind IconKind `json:"iconType"`
	Size     int      `json:"size"`
	Color    string   `json:"color"`
}

// Settings is a snapshot of every tool's configuration. Add reads the
// slice of it matching the requested kind, so callers can keep one
// Settings value per session and mutate tool panels independently.
type Settings struct {
	Text    TextSettings    `json:"text"`
	Compass CompassSettings `json:"compass"`
	Icon    IconSettings    `json:"icon"`
}

// DefaultSettings returns the tool defaults the builder starts with.
func DefaultSettings() Settings {
	return Settings{
		Text: TextSettings{
			FontSize:   16,
			Color:      "#000000",
			FontWeight: WeightNormal,
		},
		Compass: CompassSettings{
			Size:  32,
			Style: StyleModern,
			Color: "#000000",
		},
		Icon: IconSettings{
			IconKind: IconPin,
			Size:     24,
			Color:    "#000000",
		},
	}
}
