package types

type PostsResp struct {
	Success    bool   `json:"success"`
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Stats      *Stats `json:"stats"`
}

type LatestResp struct {
	Success bool   `json:"success"`
	Posts   []Post `json:"posts"`
}

type StatsResp struct {
	Success bool   `json:"success"`
	Stats   *Stats `json:"stats"`
}

type OkResp struct {
	Success bool `json:"success"`
}

type ErrResp struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type HealthResp struct {
	Success bool   `json:"success"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
