package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScale(t *testing.T) {
	assert.Equal(t, 1.0, Scale(250))
	assert.Equal(t, 2.0, Scale(500))
	assert.Equal(t, 4.0, Scale(1000))
	assert.Equal(t, 8.0, Scale(2000))
}

func TestHashrateFor(t *testing.T) {
	tests := []struct {
		amountUsd int
		want      float64
	}{
		{250, 120},
		{500, 240},
		{1000, 480},
		{2000, 960},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, HashrateFor(tt.amountUsd), 1e-9, "amount %d", tt.amountUsd)
	}
}

func TestMiningPowerFor(t *testing.T) {
	assert.Equal(t, 68, MiningPowerFor(250))
	assert.Equal(t, 68, MiningPowerFor(500))
	assert.Equal(t, 80, MiningPowerFor(501))
	assert.Equal(t, 80, MiningPowerFor(2000))
	assert.Equal(t, 80, MiningPowerFor(1000000))
}

func TestMiningPowerBounds(t *testing.T) {
	for _, amount := range []int{250, 300, 500, 750, 1000, 5000, 100000} {
		power := MiningPowerFor(amount)
		assert.GreaterOrEqual(t, power, 0)
		assert.LessOrEqual(t, power, 100)
	}
}

func TestStatsFor(t *testing.T) {
	stats := StatsFor(1000, 0.00084, "active")

	assert.Equal(t, 0.00084, stats.TotalMinedBtc)
	assert.InDelta(t, 0.0002, stats.DailyProfitBtc, 1e-9)
	assert.InDelta(t, 480, stats.HashrateThs, 1e-9)
	assert.Equal(t, 80, stats.MiningPowerPct)
	assert.Equal(t, ActiveMinersCount, stats.ActiveMiners)
	assert.Equal(t, "active", stats.SessionStatus)
	assert.Equal(t, LastPayoutLabel, stats.LastPayout)
	assert.Equal(t, NextPayoutLabel, stats.NextPayout)
	assert.Equal(t, 1000, stats.DepositAmountUsd)
	assert.InDelta(t, 0.00084*BtcUsdRate, stats.TotalMinedUsd, 1e-9)
	assert.Equal(t, "0.7%", stats.DailyReturnRate)
	assert.Equal(t, "21%", stats.MonthlyReturnRate)
}

func TestDemoStats(t *testing.T) {
	stats := DemoStats()

	assert.Equal(t, BaselineAmountUsd, stats.DepositAmountUsd)
	assert.Equal(t, BaselineTotalMinedBtc, stats.TotalMinedBtc)
	assert.InDelta(t, BaselineHashrateThs, stats.HashrateThs, 1e-9)
	assert.Equal(t, "inactive", stats.SessionStatus)
}

func TestReturnRates(t *testing.T) {
	tests := []struct {
		amountUsd   int
		wantDaily   string
		wantMonthly string
	}{
		{100, "0.5%", "15%"},
		{250, "0.5%", "15%"},
		{251, "0.6%", "18%"},
		{500, "0.6%", "18%"},
		{750, "0.7%", "21%"},
		{1000, "0.7%", "21%"},
		{1001, "0.8%", "24%"},
		{2000, "0.8%", "24%"},
	}

	for _, tt := range tests {
		daily, monthly := ReturnRates(tt.amountUsd)
		assert.Equal(t, tt.wantDaily, daily, "amount %d", tt.amountUsd)
		assert.Equal(t, tt.wantMonthly, monthly, "amount %d", tt.amountUsd)
	}
}

func TestClampAmount(t *testing.T) {
	assert.Equal(t, MinDepositUsd, ClampAmount(0))
	assert.Equal(t, MinDepositUsd, ClampAmount(-100))
	assert.Equal(t, MinDepositUsd, ClampAmount(249))
	assert.Equal(t, 250, ClampAmount(250))
	assert.Equal(t, 1000, ClampAmount(1000))
}

func TestDepositOptions(t *testing.T) {
	options := DepositOptions()

	assert.Len(t, options, 4)
	assert.Equal(t, 250, options[0].AmountUsd)
	assert.Equal(t, 2000, options[3].AmountUsd)

	recommended := 0
	for _, o := range options {
		if o.Recommended {
			recommended++
			assert.Equal(t, DefaultDepositUsd, o.AmountUsd)
		}

		daily, monthly := ReturnRates(o.AmountUsd)
		assert.Equal(t, daily, o.DailyReturn)
		assert.Equal(t, monthly, o.MonthlyReturn)
	}
	assert.Equal(t, 1, recommended)
}
