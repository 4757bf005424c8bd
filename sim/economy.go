// Package sim ties every subsystem into one fixed-timestep tick:
// spawning, targeting, projectile flight, effect resolution, economy,
// and scheduled-event/game-state bookkeeping.
package sim

import "math"

// Economy tracks money, lives, and score, and is the sole mutator of
// all three: money decreases only via build/upgrade events, and
// increases only via enemy-death/wave-bonus/interest events and sell
// refunds.
type Economy struct {
	Money int
	Lives int
	Score int

	KillBonusMult float64
	InterestRate  float64
	SellRatio     float64
}

// NewEconomy seeds an Economy from the gameplay-balance block.
func NewEconomy(startingMoney, startingLives int, killBonusMult, interestRate, sellRatio float64) *Economy {
	return &Economy{
		Money: startingMoney, Lives: startingLives,
		KillBonusMult: killBonusMult, InterestRate: interestRate, SellRatio: sellRatio,
	}
}

// CanAfford reports whether cost can currently be spent.
func (e *Economy) CanAfford(cost float64) bool {
	return float64(e.Money) >= cost
}

// Spend deducts cost if affordable, reporting success.
func (e *Economy) Spend(cost float64) bool {
	if !e.CanAfford(cost) {
		return false
	}
	e.Money -= int(math.Round(cost))
	return true
}

// Credit adds amount to Money (sell refunds, scheduler-driven bonuses).
func (e *Economy) Credit(amount float64) {
	e.Money += int(math.Round(amount))
}

// AwardKill credits reward*KillBonusMult and adds reward to Score.
func (e *Economy) AwardKill(reward int) {
	e.Money += int(math.Round(float64(reward) * e.KillBonusMult))
	e.Score += reward
}

// TakeDamage reduces Lives by n, floored at 0.
func (e *Economy) TakeDamage(n int) {
	e.Lives -= n
	if e.Lives < 0 {
		e.Lives = 0
	}
}

// SettleWave applies wave-clear interest to the current balance.
func (e *Economy) SettleWave() {
	e.Money += int(math.Round(float64(e.Money) * e.InterestRate))
}
