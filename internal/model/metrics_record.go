package model

// MetricsRecord is a processed record tagged with where and when it was read.
type MetricsRecord struct {
	ChainID        uint64           `json:"chain_id"`
	BlockNumber    uint64           `json:"block_number"`
	BlockTimestamp uint64           `json:"block_timestamp"`
	Account        string           `json:"account"`
	ComputedAt     string           `json:"computed_at"`
	Metrics        ProcessedMetrics `json:"metrics"`
}
