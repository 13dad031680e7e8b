package analytics

// UsageStats is the admin dashboard snapshot assembled from Redis counters.
type UsageStats struct {
	TotalRequests int64             `json:"total_requests"`
	Locations     []LocationStats   `json:"locations"`
	CacheKeys     CacheKeyBreakdown `json:"cache_keys"`
}

// LocationStats aggregates the daily counters of one normalized location.
type LocationStats struct {
	Location string           `json:"location"`
	Total    int64            `json:"total"`
	Daily    map[string]int64 `json:"daily"`
}

// CacheKeyBreakdown counts live cache entries by tier.
type CacheKeyBreakdown struct {
	Months    int `json:"months"`
	Responses int `json:"responses"`
	Counters  int `json:"counters"`
}

// PurgeResult reports a cache purge operation.
type PurgeResult struct {
	Pattern string `json:"pattern"`
	Deleted int    `json:"deleted"`
}
