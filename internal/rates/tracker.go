// Package rates computes throughput from cumulative interface counters.
package rates

import (
	"math"
	"sync"
	"time"

	"github.com/wrtmon/wrtmon/internal/model"
)

// bytesPerMegabit keeps the displayed Mbps on the 1,048,576 divisor the
// dashboard has always used.
const bytesPerMegabit = 1024 * 1024

// Tracker holds the previous cumulative counters and their read time.
// Update is a read-compute-overwrite cycle guarded by a mutex: the HTTP
// handler and the background poller both drive polls, and racing updates
// would corrupt the delta. The zero value is unprimed and usable.
type Tracker struct {
	mu     sync.Mutex
	primed bool
	rx     uint64
	tx     uint64
	readAt time.Time
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Update computes instantaneous rates against the previous reading and then
// replaces it with the current one, unconditionally. The first ever call
// and a non-advancing clock both yield zero rates, never an error. Counter
// resets show up as negative raw deltas and are clamped to zero so a
// rebooted gateway does not produce a spurious spike.
func (t *Tracker) Update(rx, tx uint64, now time.Time) model.Rates {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out model.Rates
	if t.primed {
		elapsed := now.Sub(t.readAt).Seconds()
		if elapsed > 0 {
			download := round2(float64(clampDelta(rx, t.rx)) * 8 / bytesPerMegabit / elapsed)
			upload := round2(float64(clampDelta(tx, t.tx)) * 8 / bytesPerMegabit / elapsed)
			out = model.Rates{
				DownloadMbps: download,
				UploadMbps:   upload,
				// Each side is rounded before summing so the total always
				// equals the sum of the displayed components.
				TotalMbps: round2(download + upload),
			}
		}
	}

	t.rx = rx
	t.tx = tx
	t.readAt = now
	t.primed = true
	return out
}

func clampDelta(current, previous uint64) uint64 {
	if current < previous {
		return 0
	}
	return current - previous
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
