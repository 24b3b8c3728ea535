// Copyright (C) 2025 l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package daemons

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/shared"
)

// DaemonRunner runs the background jobs of the server on a fixed interval.
type DaemonRunner struct {
	reaper   *StaleAnalysisReaper
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDaemonRunner(reaper *StaleAnalysisReaper, cfg shared.Config) *DaemonRunner {
	return &DaemonRunner{
		reaper:   reaper,
		interval: cfg.ReaperInterval,
	}
}

// Start runs the daemons once right away and then on every tick until Stop is called.
func (runner *DaemonRunner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	runner.cancel = cancel

	runner.wg.Add(1)
	go func() {
		defer runner.wg.Done()
		runner.tick(ctx)

		ticker := time.NewTicker(runner.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runner.tick(ctx)
			}
		}
	}()
}

func (runner *DaemonRunner) Stop() {
	if runner.cancel != nil {
		runner.cancel()
	}
	runner.wg.Wait()
}

func (runner *DaemonRunner) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.RecoverAndAlert("daemon panicked", panicError(r))
		}
	}()

	start := time.Now()
	reaped, err := runner.reaper.Reap(ctx)
	monitoring.StaleAnalysisReaperDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.Alert("could not reap stale analyses", err)
		return
	}
	if reaped > 0 {
		slog.Info("reaped stale analyses", "count", reaped)
	}
}
