package events

// StakePlaced is emitted after a stake transaction commits
type StakePlaced struct {
	BetID    string `json:"bet_id"`
	OptionID string `json:"option_id"`
	UserID   uint   `json:"user_id"`
	Staked   int64  `json:"staked"`
	Odds     string `json:"odds"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}

// MarketClosed is emitted when a bet's betting window ends
type MarketClosed struct {
	BetID    string `json:"bet_id"`
	Title    string `json:"title"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
