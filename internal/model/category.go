package model

// Category is a top-level forum section.  Topic and message counts
// are not stored on the row; they are aggregated from topics and
// messages when listing categories.
type Category struct {
	ID          uint64 `json:"id"`          // categories.id
	Name        string `json:"name"`        // categories.name
	Description string `json:"description"` // categories.description
	Icon        string `json:"icon"`        // categories.icon
	Color       string `json:"color"`       // categories.color
	OrderIndex  int    `json:"order_index"` // categories.order_index
}

// CategorySummary is a category together with its aggregated counts,
// as returned by the category listing endpoint.
type CategorySummary struct {
	Category
	TopicsCount   int64 `json:"topics_count"`
	MessagesCount int64 `json:"messages_count"`
}
