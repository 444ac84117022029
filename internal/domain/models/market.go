package models

// TickerQuote is one symbol's latest snapshot. Exactly one of
// (price fields populated) or (Error non-empty) holds.
type TickerQuote struct {
	Symbol        string   `json:"symbol"`
	Price         float64  `json:"price"`
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Volume        int64    `json:"volume"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"change_percent"`
	// RSI is a deterministic per-symbol placeholder in [35,65], not a
	// computed indicator. Kept for prompt continuity; do not trade on it.
	RSI              float64  `json:"rsi"`
	Date             string   `json:"date"`
	Currency         string   `json:"currency,omitempty"`
	MarketState      string   `json:"marketState,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// Valid reports whether the quote carries usable price data.
func (q *TickerQuote) Valid() bool {
	return q.Error == ""
}

// NewsArticle is one normalized headline from the news provider.
type NewsArticle struct {
	Title         string `json:"title"`
	Text          string `json:"text"`
	PublishedDate string `json:"publishedDate"`
	Symbol        string `json:"symbol"`
	URL           string `json:"url"`
}

// MarketNews is a tagged union: either a list of articles or a
// human-readable unavailability reason. Exactly one branch is set.
type MarketNews struct {
	Articles    []NewsArticle
	Unavailable string
}

// Available reports whether the articles branch is populated.
func (n *MarketNews) Available() bool {
	return n.Unavailable == "" && len(n.Articles) > 0
}

// AnalysisResult is the terminal value of one pipeline run.
// Never mutated after construction.
type AnalysisResult struct {
	Success         bool     `json:"success"`
	Analysis        string   `json:"analysis,omitempty"`
	SymbolsAnalyzed int      `json:"symbolsAnalyzed,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// RunEvent is the run summary published to the event stream.
type RunEvent struct {
	Timestamp       string   `json:"timestamp"`
	Trigger         string   `json:"trigger"`
	Success         bool     `json:"success"`
	SymbolsAnalyzed int      `json:"symbols_analyzed"`
	Cost            *float64 `json:"cost,omitempty"`
	Error           string   `json:"error,omitempty"`
}
