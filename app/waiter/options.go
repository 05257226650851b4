package waiter

import (
	"os"
)

type Option func(*waiterCfg)

// WithSignals replaces the signals that stop the waiter.
func WithSignals(signals ...os.Signal) Option {
	return func(cfg *waiterCfg) {
		cfg.signals = signals
	}
}
