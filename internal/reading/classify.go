package reading

import "fmt"

// Classification thresholds in centimetres.
const (
	// NearThreshold is the lowest value classified as Near.
	NearThreshold = 20

	// FarThreshold is the lowest value classified as Far.
	FarThreshold = 50
)

// Kind identifies a proximity category.
type Kind string

const (
	KindVeryClose Kind = "very_close"
	KindNear      Kind = "near"
	KindFar       Kind = "far"
)

// RGB is a display colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the colour as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Category is the classification of a reading with its display attributes.
type Category struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Color RGB    `json:"color"`
}

// Describe renders the category label with the value, e.g. "Near (37 cm)".
func (c Category) Describe(value int) string {
	return fmt.Sprintf("%s (%d cm)", c.Label, value)
}

var (
	// VeryClose is returned for values below NearThreshold.
	VeryClose = Category{Kind: KindVeryClose, Label: "Very Close", Color: RGB{R: 200, G: 30, B: 30}}

	// Near is returned for values in [NearThreshold, FarThreshold).
	Near = Category{Kind: KindNear, Label: "Near", Color: RGB{R: 220, G: 180, B: 30}}

	// Far is returned for values at or above FarThreshold.
	Far = Category{Kind: KindFar, Label: "Far", Color: RGB{R: 40, G: 180, B: 60}}
)

// Classify maps a distance value to its Category.
func Classify(value int) Category {
	switch {
	case value < NearThreshold:
		return VeryClose
	case value < FarThreshold:
		return Near
	default:
		return Far
	}
}
