package types

const (
	PostImage = "image"
	PostVideo = "video"
)

type Post struct {
	Id          int64  `json:"id"`
	Type        string `json:"type"`
	Url         string `json:"url"`
	Thumb       string `json:"thumb,omitempty"`
	Caption     string `json:"caption"`
	Description string `json:"description"`
	Author      string `json:"author"`
	CreatedAt   string `json:"created_at"`
	Views       int64  `json:"views"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	FileSize    int    `json:"file_size,omitempty"`
	FileId      string `json:"file_id,omitempty"`
}

// Stats is a derived snapshot, recomputed from the post list on every
// mutation. It is never edited on its own.
type Stats struct {
	TotalPosts int64  `json:"total_posts"`
	TotalViews int64  `json:"total_views"`
	LastUpdate string `json:"last_update"`
}
