package schema

import "time"

// SeriesRow represents a row from the ship_cnt_in_pipe table.
type SeriesRow struct {
	PipeName string  `json:"pipe_name"` // monitored chokepoint
	DateID   int     `json:"date_id"`   // YYYYMMDD date key
	ShipCnt  float64 `json:"ship_cnt"`  // daily vessel count
}

// Values extracts the ship counts from a window of rows, preserving order.
func Values(rows []SeriesRow) []float64 {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = r.ShipCnt
	}
	return vals
}

// StoreStatus represents the status of the series store.
type StoreStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	TotalRows      int       `json:"total_rows"`
	Channels       []string  `json:"channels"`
	FirstDate      int       `json:"first_date"`
	LastDate       int       `json:"last_date"`
	TableSizeBytes int64     `json:"table_size_bytes"`
	CheckedAt      time.Time `json:"checked_at"`
}
