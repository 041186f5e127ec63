package garment

import (
	"time"
)

// Category is the coarse garment type.
type Category string

const (
	CategoryTop    Category = "top"
	CategoryBottom Category = "bottom"
	CategoryShoes  Category = "shoes"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryTop, CategoryBottom, CategoryShoes}

// Valid reports whether c is one of the enum values.
func (c Category) Valid() bool {
	switch c {
	case CategoryTop, CategoryBottom, CategoryShoes:
		return true
	}
	return false
}

// Season tags recognised by the recommendation filter.
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
	SeasonWinter = "winter"
)

// Unknown marks scalar attributes the model could not determine.
const Unknown = "unknown"

// Semantics is the structured description of a garment produced by image analysis.
type Semantics struct {
	Category        Category `json:"category"`
	Item            string   `json:"item"`
	StyleSemantics  []string `json:"style_semantics"`
	SeasonSemantics []string `json:"season_semantics"`
	UsageSemantics  []string `json:"usage_semantics"`
	ColorSemantics  string   `json:"color_semantics"`
	Description     string   `json:"description"`
}

// Item is a persisted wardrobe entry.
type Item struct {
	ID int64 `json:"id"`
	Semantics
	ImageKey  string    `json:"-"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Wardrobe groups items by category.
type Wardrobe struct {
	Tops    []Item `json:"tops"`
	Bottoms []Item `json:"bottoms"`
	Shoes   []Item `json:"shoes"`
}

// UploadRequest carries a raw garment photo.
type UploadRequest struct {
	Filename string
	MimeType string
	Content  []byte
}

// Config controls upload limits and image addressing.
type Config struct {
	MaxImageBytes  int64
	ImageURLPrefix string
	VisionTimeout  time.Duration
	Prompt         string
}
