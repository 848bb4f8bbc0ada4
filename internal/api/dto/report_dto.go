package dto

// DashboardResponse reports open vs closed orders.
type DashboardResponse struct {
	Open   int `json:"open"`
	Closed int `json:"closed"`
	Total  int `json:"total"`
}

// SummaryResponse carries the executive summary text.
type SummaryResponse struct {
	Text string `json:"text"`
}
