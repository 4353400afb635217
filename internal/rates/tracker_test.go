package rates

import (
	"math"
	"sync"
	"testing"
	"time"
)

func TestFirstUpdateYieldsZeroRates(t *testing.T) {
	tr := NewTracker()

	got := tr.Update(1_000_000, 500_000, time.Now())
	if got.DownloadMbps != 0 || got.UploadMbps != 0 || got.TotalMbps != 0 {
		t.Fatalf("expected zero rates on first update, got %+v", got)
	}
}

func TestUpdateComputesRatesAndClampsResets(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tr.Update(1000, 500, t0)
	got := tr.Update(1500, 400, t0.Add(time.Second))

	want := math.Round(500*8.0/1024/1024*100) / 100
	if got.DownloadMbps != want {
		t.Fatalf("download = %v, want %v", got.DownloadMbps, want)
	}
	if got.UploadMbps != 0 {
		t.Fatalf("expected clamped upload for counter reset, got %v", got.UploadMbps)
	}
	if got.UploadMbps < 0 || got.DownloadMbps < 0 {
		t.Fatalf("rates must never be negative: %+v", got)
	}
	if got.TotalMbps != got.DownloadMbps+got.UploadMbps {
		t.Fatalf("total %v != sum of components %v", got.TotalMbps, got.DownloadMbps+got.UploadMbps)
	}

	// The example delta above rounds to 0.00, so follow with a delta that
	// is exactly representable after rounding: 131072 bytes in one second
	// is precisely 1 Mbps on the 2^20 divisor.
	got = tr.Update(1500+131072, 400, t0.Add(2*time.Second))
	if got.DownloadMbps != 1 {
		t.Fatalf("download = %v, want exactly 1", got.DownloadMbps)
	}
	if got.UploadMbps != 0 || got.TotalMbps != 1 {
		t.Fatalf("unexpected rates %+v", got)
	}
}

func TestUpdateLargeDelta(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tr.Update(0, 0, t0)
	// 125 MiB down, 12.5 MiB up over 2 seconds.
	got := tr.Update(125*1024*1024, 25*1024*1024/2, t0.Add(2*time.Second))

	if got.DownloadMbps != 500 {
		t.Fatalf("download = %v, want 500", got.DownloadMbps)
	}
	if got.UploadMbps != 50 {
		t.Fatalf("upload = %v, want 50", got.UploadMbps)
	}
	if got.TotalMbps != 550 {
		t.Fatalf("total = %v, want 550", got.TotalMbps)
	}
}

func TestNonAdvancingClockYieldsZeroButOverwrites(t *testing.T) {
	tr := NewTracker()
	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tr.Update(1000, 1000, t0)
	got := tr.Update(5000, 5000, t0)
	if got.DownloadMbps != 0 || got.UploadMbps != 0 {
		t.Fatalf("expected zero rates for elapsed <= 0, got %+v", got)
	}

	// The snapshot must still have been overwritten with the t0 reading.
	got = tr.Update(5000+1024*1024/8, 5000, t0.Add(time.Second))
	if got.DownloadMbps != 1 {
		t.Fatalf("expected 1 Mbps from overwritten baseline, got %+v", got)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	tr := NewTracker()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rates := tr.Update(uint64(i)*1000, uint64(i)*500, base.Add(time.Duration(i)*time.Second))
			if rates.DownloadMbps < 0 || rates.UploadMbps < 0 {
				t.Errorf("negative rate under concurrency: %+v", rates)
			}
		}(i)
	}
	wg.Wait()
}
