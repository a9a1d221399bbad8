package models

// PerformanceEntry is the running statistics for one (category, model) pair.
type PerformanceEntry struct {
	Category    string  `json:"category" mapstructure:"category"`
	Model       string  `json:"model" mapstructure:"model"`
	SampleCount int     `json:"sample_count" mapstructure:"sample_count"`
	MeanScore   float64 `json:"mean_score" mapstructure:"mean_score"`
	WinCount    int     `json:"win_count" mapstructure:"win_count"`
}
