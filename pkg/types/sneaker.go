// Package types defines the domain records shared across sneakerdb packages.
package types

// Sneaker is a single catalog entry, keyed by its SKU.
// Field names and json tags mirror the sneakers table columns.
type Sneaker struct {
	SKU                  string `json:"sku"`
	Brand                string `json:"brand"`
	Colorway             string `json:"colorway,omitempty"`
	EstimatedMarketValue int    `json:"estimatedMarketValue,omitempty"`
	Gender               string `json:"gender"`
	ImageOriginal        string `json:"image_original,omitempty"`
	ImageSmall           string `json:"image_small,omitempty"`
	ImageThumbnail       string `json:"image_thumbnail,omitempty"`
	LinkFlightClub       string `json:"link_flightClub,omitempty"`
	LinkGoat             string `json:"link_goat,omitempty"`
	LinkStadiumGoods     string `json:"link_stadiumGoods,omitempty"`
	LinkStockX           string `json:"link_stockX,omitempty"`
	Name                 string `json:"name,omitempty"`
	ReleaseDate          string `json:"releaseDate,omitempty"` // YYYY-MM-DD
	ReleaseYear          int    `json:"releaseYear,omitempty"`
	RetailPrice          int    `json:"retailPrice,omitempty"`
	Silhouette           string `json:"silhouette,omitempty"`
	Story                string `json:"story,omitempty"`
}

// Image360 is one frame of a sneaker's rotating product view.
// Position determines display order, ascending.
type Image360 struct {
	SKU      string `json:"sku"`
	Position int    `json:"position"`
	Image    string `json:"image"`
}

// Entry is the unit a catalog record is created as: the sneaker row
// plus its ordered 360 image sequence.
type Entry struct {
	Sneaker Sneaker    `json:"sneaker"`
	Images  []Image360 `json:"images,omitempty"`
}

// SearchResult is one hit from a full-text query. Score is positive
// and descending-better (the negated SQLite bm25 rank).
type SearchResult struct {
	SKU   string  `json:"sku"`
	Score float64 `json:"score"`
}
