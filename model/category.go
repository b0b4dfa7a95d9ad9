package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the coarse display grouping of an interval.
type Category string

const (
	CategoryAlert         Category = "Alert"
	CategoryKubeEvent     Category = "KubeEvent"
	CategoryKubeletLog    Category = "KubeletLog"
	CategoryNodeState     Category = "NodeState"
	CategoryOperatorState Category = "OperatorState"
	CategoryPod           Category = "Pod"
	CategoryE2ETest       Category = "E2ETest"
	CategoryDisruption    Category = "Disruption"
	CategoryClusterState  Category = "ClusterState"
	CategoryPodLog        Category = "PodLog"
	CategoryUnclassified  Category = "Unclassified"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryAlert,
	CategoryKubeEvent,
	CategoryKubeletLog,
	CategoryNodeState,
	CategoryOperatorState,
	CategoryPod,
	CategoryE2ETest,
	CategoryDisruption,
	CategoryClusterState,
	CategoryPodLog,
	CategoryUnclassified,
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Color is an RGBA render color.
type Color struct {
	R, G, B, A uint8
}

// Gray is used for anything without a more specific color.
var Gray = Color{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	if len(h) == 6 {
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustHex is ParseHexColor for compile-time constant tables.
func MustHex(s string) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Classification is the fine-grained label of an interval within a category.
type Classification struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Color    Color    `json:"-"`
	// TimelineDifferentiator splits one locator's intervals across several
	// rows (e.g. container lifecycle vs. readiness).
	TimelineDifferentiator string `json:"timeline_differentiator,omitempty"`
}

// GroupKey identifies one timeline row. It is comparable and safe to use as
// a map key by caching layers.
type GroupKey struct {
	Category    Category `json:"category"`
	TimelineKey string   `json:"timeline_key"`
}

func (k GroupKey) String() string {
	if k.TimelineKey == "" {
		return string(k.Category)
	}
	return string(k.Category) + "/" + k.TimelineKey
}
