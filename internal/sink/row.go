package sink

import "time"

// ReportRow is the exported form of one report entry.
type ReportRow struct {
	UpdatedAt    time.Time `json:"updated_date_time"`
	WindowStart  time.Time `json:"window_start"`
	Window       uint64    `json:"window_number"`
	IntervalMs   uint32    `json:"interval_ms"`
	Name         string    `json:"name"`
	Rank         uint32    `json:"rank"`
	Count        int64     `json:"count"`
	TotalNs      int64     `json:"total_ns"`
	AvgNs        int64     `json:"avg_ns"`
	TotalSeconds float64   `json:"total_seconds"`
	AvgSeconds   float64   `json:"avg_seconds"`
	ClientName   string    `json:"meta_client_name"`
}

// Rows converts a report into rows, keeping report order as Rank.
func Rows(report Report, clientName string, now time.Time) []*ReportRow {
	rows := make([]*ReportRow, 0, len(report.Entries))

	for i, e := range report.Entries {
		rows = append(rows, &ReportRow{
			UpdatedAt:    now,
			WindowStart:  report.WindowStart,
			Window:       report.Window,
			IntervalMs:   uint32(report.Interval.Milliseconds()),
			Name:         e.Name,
			Rank:         uint32(i),
			Count:        e.Count,
			TotalNs:      e.Total.Nanoseconds(),
			AvgNs:        e.Avg().Nanoseconds(),
			TotalSeconds: e.Total.Seconds(),
			AvgSeconds:   e.Avg().Seconds(),
			ClientName:   clientName,
		})
	}

	return rows
}
