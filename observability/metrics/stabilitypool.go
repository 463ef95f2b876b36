package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// stabilityPoolMetrics tracks deposit, withdrawal, and liquidation-offset
// activity inside the Stability Pool core.
type stabilityPoolMetrics struct {
	deposits     *prometheus.CounterVec
	withdrawals  *prometheus.CounterVec
	offsets      prometheus.Counter
	offsetDebt   prometheus.Counter
	offsetColl   prometheus.Counter
	scaleAdvance prometheus.Counter
	epochAdvance prometheus.Counter
	poolFURFI    prometheus.Gauge
	poolDeposits prometheus.Gauge
}

var (
	stabilityPoolOnce     sync.Once
	stabilityPoolRegistry *stabilityPoolMetrics
)

// StabilityPool returns the lazily-initialized Stability Pool metrics
// registry.
func StabilityPool() *stabilityPoolMetrics {
	stabilityPoolOnce.Do(func() {
		stabilityPoolRegistry = &stabilityPoolMetrics{
			deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "deposits_total",
				Help:      "Count of provide_to_stability_pool calls by outcome.",
			}, []string{"outcome"}),
			withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "withdrawals_total",
				Help:      "Count of withdraw_from_stability_pool calls by outcome.",
			}, []string{"outcome"}),
			offsets: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "offsets_total",
				Help:      "Count of liquidation offsets applied by the Trove Manager.",
			}),
			offsetDebt: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "offset_debt_total",
				Help:      "Cumulative FURUSD debt offset, 18-decimal fixed point as float64.",
			}),
			offsetColl: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "offset_collateral_total",
				Help:      "Cumulative FURFI collateral absorbed, 18-decimal fixed point as float64.",
			}),
			scaleAdvance: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "scale_advances_total",
				Help:      "Count of times the running product P crossed a scale boundary.",
			}),
			epochAdvance: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "epoch_advances_total",
				Help:      "Count of times an offset fully depleted the pool, advancing the epoch.",
			}),
			poolFURFI: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "furfi_balance",
				Help:      "Current pool-held FURFI balance, 18-decimal fixed point as float64.",
			}),
			poolDeposits: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "furpool",
				Subsystem: "stabilitypool",
				Name:      "total_furusd_deposits",
				Help:      "Current sum of compounded FURUSD deposits, 18-decimal fixed point as float64.",
			}),
		}
		prometheus.MustRegister(
			stabilityPoolRegistry.deposits,
			stabilityPoolRegistry.withdrawals,
			stabilityPoolRegistry.offsets,
			stabilityPoolRegistry.offsetDebt,
			stabilityPoolRegistry.offsetColl,
			stabilityPoolRegistry.scaleAdvance,
			stabilityPoolRegistry.epochAdvance,
			stabilityPoolRegistry.poolFURFI,
			stabilityPoolRegistry.poolDeposits,
		)
	})
	return stabilityPoolRegistry
}

// ObserveDeposit records the outcome of a provide call.
func (m *stabilityPoolMetrics) ObserveDeposit(ok bool) {
	if m == nil {
		return
	}
	m.deposits.WithLabelValues(outcomeLabel(ok)).Inc()
}

// ObserveWithdrawal records the outcome of a withdraw call.
func (m *stabilityPoolMetrics) ObserveWithdrawal(ok bool) {
	if m == nil {
		return
	}
	m.withdrawals.WithLabelValues(outcomeLabel(ok)).Inc()
}

// ObserveOffset records a successful liquidation offset, including whether
// it crossed a scale or epoch boundary.
func (m *stabilityPoolMetrics) ObserveOffset(debt, coll float64, scaleAdvanced, epochAdvanced bool) {
	if m == nil {
		return
	}
	m.offsets.Inc()
	m.offsetDebt.Add(debt)
	m.offsetColl.Add(coll)
	if scaleAdvanced {
		m.scaleAdvance.Inc()
	}
	if epochAdvanced {
		m.epochAdvance.Inc()
	}
}

// SetPoolGauges reflects the pool's current headline balances.
func (m *stabilityPoolMetrics) SetPoolGauges(furfiBalance, totalDeposits float64) {
	if m == nil {
		return
	}
	m.poolFURFI.Set(furfiBalance)
	m.poolDeposits.Set(totalDeposits)
}

func outcomeLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
