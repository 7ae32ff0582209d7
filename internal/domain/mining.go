package domain

// Baseline unit stats defined at the minimum deposit of $250. All dashboard
// figures scale linearly with selectedAmount / BaselineAmountUsd.
const (
	BaselineAmountUsd      = 250
	BaselineTotalMinedBtc  = 0.00021
	BaselineDailyProfitBtc = 0.00005
	BaselineHashrateThs    = 120.0

	// TickIncrementBtc is added to totalMined per simulator tick at baseline
	TickIncrementBtc = 0.00000002

	// BtcUsdRate is the fixed display conversion rate
	BtcUsdRate = 40000.0

	// ActiveMinersCount and the payout labels are static display figures
	ActiveMinersCount = 1254
	LastPayoutLabel   = "2h 34m ago"
	NextPayoutLabel   = "9h 26m"
)

// MiningStats is the dashboard snapshot. Only TotalMinedBtc accumulates over
// time; every other field is a static derivation of the deposit amount.
type MiningStats struct {
	TotalMinedBtc     float64 `json:"total_mined_btc"`
	DailyProfitBtc    float64 `json:"daily_profit_btc"`
	HashrateThs       float64 `json:"hashrate_ths"`
	MiningPowerPct    int     `json:"mining_power_pct"`
	ActiveMiners      int     `json:"active_miners"`
	SessionStatus     string  `json:"session_status"`
	LastPayout        string  `json:"last_payout"`
	NextPayout        string  `json:"next_payout"`
	DepositAmountUsd  int     `json:"deposit_amount_usd"`
	TotalMinedUsd     float64 `json:"total_mined_usd"`
	DailyProfitUsd    float64 `json:"daily_profit_usd"`
	DailyReturnRate   string  `json:"daily_return_rate"`
	MonthlyReturnRate string  `json:"monthly_return_rate"`
}

// Scale returns the linear multiplier for a deposit amount
func Scale(amountUsd int) float64 {
	return float64(amountUsd) / float64(BaselineAmountUsd)
}

// HashrateFor derives the displayed hashrate for a deposit amount
func HashrateFor(amountUsd int) float64 {
	return BaselineHashrateThs * Scale(amountUsd)
}

// MiningPowerFor derives the mining power percentage for a deposit amount,
// capped at 100
func MiningPowerFor(amountUsd int) int {
	power := 68
	if amountUsd > 500 {
		power += 12
	}
	if power > 100 {
		power = 100
	}
	return power
}

// BaseTotalMinedFor derives the totalMined starting value for a deposit
// amount, before any tick accrual
func BaseTotalMinedFor(amountUsd int) float64 {
	return BaselineTotalMinedBtc * Scale(amountUsd)
}

// DailyProfitFor derives the daily profit for a deposit amount
func DailyProfitFor(amountUsd int) float64 {
	return BaselineDailyProfitBtc * Scale(amountUsd)
}

// StatsFor assembles the full snapshot for an activated deposit with the
// given accrued totalMined value
func StatsFor(amountUsd int, totalMinedBtc float64, status string) MiningStats {
	daily, monthly := ReturnRates(amountUsd)
	dailyProfit := DailyProfitFor(amountUsd)
	return MiningStats{
		TotalMinedBtc:     totalMinedBtc,
		DailyProfitBtc:    dailyProfit,
		HashrateThs:       HashrateFor(amountUsd),
		MiningPowerPct:    MiningPowerFor(amountUsd),
		ActiveMiners:      ActiveMinersCount,
		SessionStatus:     status,
		LastPayout:        LastPayoutLabel,
		NextPayout:        NextPayoutLabel,
		DepositAmountUsd:  amountUsd,
		TotalMinedUsd:     totalMinedBtc * BtcUsdRate,
		DailyProfitUsd:    dailyProfit * BtcUsdRate,
		DailyReturnRate:   daily,
		MonthlyReturnRate: monthly,
	}
}

// DemoStats returns the static sample figures shown on the public demo
// dashboard
func DemoStats() MiningStats {
	return StatsFor(BaselineAmountUsd, BaselineTotalMinedBtc, "inactive")
}
