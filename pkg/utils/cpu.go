package utils

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/cpu"
)

func CheckCPUUsage(maxCPUUsage float64) (bool, float64) {
	usage, err := cpu.Percent(0, false)
	if err != nil || len(usage) == 0 {
		return false, 0
	}
	return usage[0] <= maxCPUUsage, usage[0]
}

// WaitForCPU blocks until check reports usage at or under the limit, polling
// every interval. It returns ctx.Err() if ctx ends first.
func WaitForCPU(ctx context.Context, interval time.Duration, check func() (bool, float64)) error {
	for {
		if ok, _ := check(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
