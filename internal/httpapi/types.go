package httpapi

// RunJSON is the JSON shape of a stored run header. Sharpe is null when the
// metric was undefined for the run.
type RunJSON struct {
	ID             int64    `json:"id"`
	CreatedAt      string   `json:"createdAt"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	InitialCapital float64  `json:"initialCapital"`
	FinalValue     float64  `json:"finalValue"`
	TotalReturn    float64  `json:"totalReturn"`
	MaxDrawdown    float64  `json:"maxDrawdown"`
	Sharpe         *float64 `json:"sharpe"`
	TradeCount     int      `json:"tradeCount"`
}

// RunsResponse wraps the run list.
type RunsResponse struct {
	Runs []RunJSON `json:"runs"`
}

// ValuePointJSON is one point of a stored value series.
type ValuePointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ValuesResponse wraps one value series of a run.
type ValuesResponse struct {
	RunID  int64            `json:"runId"`
	Series string           `json:"series"`
	Points []ValuePointJSON `json:"points"`
}

// TradeJSON is one executed trade of a run.
type TradeJSON struct {
	Date     string  `json:"date"`
	Symbol   string  `json:"symbol"`
	Action   string  `json:"action"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Costs    float64 `json:"costs"`
}

// TradesResponse wraps the trade ledger of a run.
type TradesResponse struct {
	RunID  int64       `json:"runId"`
	Trades []TradeJSON `json:"trades"`
}
