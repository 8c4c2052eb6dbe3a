package models

import "fmt"

// Currency identifies one of the site's supported coins. All code paths are
// parameterized by currency; per-coin behavior lives in the table below.
type Currency string

const (
	CurrencyClam Currency = "clam"
	CurrencyBtc  Currency = "btc"
)

// Monetary amounts are stored as int64 in internal units.
//
// UnitScale converts satoshis to internal units; CoinScale converts whole
// coins. Spendable balances, wagers and profits are entered and displayed at
// satoshi precision, while invested balances and commissions are computed at
// the finer coin precision. Both land on the same internal unit so the ledger
// never mixes scales.
const (
	UnitScale int64 = 1_000_000
	CoinScale int64 = 100_000_000 * UnitScale
)

// currencyInfo holds per-currency ledger parameters.
type currencyInfo struct {
	// MinBetUnit is the smallest bet increment, in internal units. Bets must
	// be a positive multiple of it.
	MinBetUnit int64

	// DustThreshold is the smallest invested balance that participates in
	// round distribution, in internal units.
	DustThreshold int64
}

var currencies = map[Currency]currencyInfo{
	CurrencyClam: {MinBetUnit: 100 * UnitScale, DustThreshold: 999_999},
	CurrencyBtc:  {MinBetUnit: 100 * UnitScale, DustThreshold: 999_999},
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	_, ok := currencies[c]
	return ok
}

// MinBetUnit returns the smallest bet increment for the currency.
func (c Currency) MinBetUnit() int64 {
	return currencies[c].MinBetUnit
}

// DustThreshold returns the minimum invested balance that earns a share of
// round results.
func (c Currency) DustThreshold() int64 {
	return currencies[c].DustThreshold
}

// Currencies returns all supported currencies in a stable order.
func Currencies() []Currency {
	return []Currency{CurrencyClam, CurrencyBtc}
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency %q", s)
	}
	return c, nil
}
