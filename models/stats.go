package models

// AccountStats is the per-account view returned to the session layer. All
// amounts are in satoshis (internal units scaled down by UnitScale).
type AccountStats struct {
	Username       string
	Balance        int64
	Invested       int64
	Wagered        int64
	NetProfit      int64
	BankrollProfit int64

	SiteWagered  int64
	SiteProfit   int64
	SiteInvested int64
}

// SiteStats is the site-wide aggregate for one currency, in satoshis.
type SiteStats struct {
	Currency Currency
	Wagered  int64
	Profit   int64
	Invested int64
}
