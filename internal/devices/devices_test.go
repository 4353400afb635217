package devices

import (
	"testing"

	"github.com/wrtmon/wrtmon/internal/model"
)

func deviceByMAC(t *testing.T, devices []model.Device, mac string) model.Device {
	t.Helper()
	for _, d := range devices {
		if d.MAC == mac {
			return d
		}
	}
	t.Fatalf("device %s not found in %v", mac, devices)
	return model.Device{}
}

func TestBuildMergesAllSources(t *testing.T) {
	e := New()

	devices := e.Build(
		[]string{
			"10.0.0.5 aa:bb:cc:dd:ee:01 br-lan",
			"10.0.0.9 aa:bb:cc:dd:ee:03 br-lan",
		},
		[]string{
			"IFACE wlan0 2412",
			"aa:bb:cc:dd:ee:01",
			"IFACE wlan1 5180",
			"aa:bb:cc:dd:ee:03",
		},
		[]string{
			"1700000000 aa:bb:cc:dd:ee:01 10.0.0.5 phone 01:aa:bb",
			"1700000001 aa:bb:cc:dd:ee:02 10.0.0.7 laptop 01:cc:dd",
			"1700000002 aa:bb:cc:dd:ee:03 10.0.0.9 tv 01:ee:ff",
		},
	)

	if len(devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(devices))
	}

	phone := deviceByMAC(t, devices, "aa:bb:cc:dd:ee:01")
	if phone.Status != model.StatusOnline || phone.Connection != model.ConnectionWiFi || phone.Band != model.Band24GHz {
		t.Fatalf("unexpected phone record %+v", phone)
	}

	laptop := deviceByMAC(t, devices, "aa:bb:cc:dd:ee:02")
	if laptop.Status != model.StatusOffline || laptop.Connection != model.ConnectionLAN {
		t.Fatalf("lease-only device should be offline lan, got %+v", laptop)
	}

	tv := deviceByMAC(t, devices, "aa:bb:cc:dd:ee:03")
	if tv.Band != model.Band5GHz {
		t.Fatalf("expected 5g band above threshold, got %+v", tv)
	}
}

func TestBuildUniquePerMAC(t *testing.T) {
	e := New()

	devices := e.Build(
		[]string{"10.0.0.5 aa:bb:cc:dd:ee:01 br-lan"},
		nil,
		[]string{
			"1700000000 aa:bb:cc:dd:ee:01 10.0.0.5 phone",
			"1700000500 aa:bb:cc:dd:ee:01 10.0.0.99 phone-renewed",
		},
	)

	if len(devices) != 1 {
		t.Fatalf("expected one record per MAC, got %d", len(devices))
	}
}

func TestBuildAddressTableOnlySynthesizesRecord(t *testing.T) {
	e := New()

	devices := e.Build([]string{"10.0.0.42 aa:bb:cc:dd:ee:04 br-lan"}, nil, nil)
	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	got := devices[0]
	if got.Hostname != "10.0.0.42" {
		t.Fatalf("expected hostname to fall back to IP, got %q", got.Hostname)
	}
	if got.Status != model.StatusOnline {
		t.Fatalf("expected address-table sighting online, got %+v", got)
	}
}

func TestBuildDropsWildcardMAC(t *testing.T) {
	e := New()

	devices := e.Build([]string{"10.0.0.1 00:00:00:00:00:00 br-lan"}, nil, nil)
	if len(devices) != 0 {
		t.Fatalf("expected wildcard MAC dropped, got %v", devices)
	}
}

func TestBuildDropsWirelessOnlyStation(t *testing.T) {
	e := New()

	devices := e.Build(nil, []string{"IFACE wlan0 2412", "aa:bb:cc:dd:ee:05"}, nil)
	if len(devices) != 0 {
		t.Fatalf("wireless-only MAC must never appear, got %v", devices)
	}
}

func TestBuildSynthesizesPlaceholderHostname(t *testing.T) {
	e := New()

	devices := e.Build(nil, nil, []string{"1700000000 aa:bb:cc:dd:ee:06 10.0.0.23 *"})
	if devices[0].Hostname != "Unknown (23)" {
		t.Fatalf("expected placeholder hostname, got %q", devices[0].Hostname)
	}
}

func TestBuildSkipsMalformedLines(t *testing.T) {
	e := New()

	devices := e.Build(
		[]string{"not enough fields", "10.0.0.5 aa:bb:cc:dd:ee:01 br-lan"},
		[]string{"IFACE wlan0 notanumber", "aa:bb:cc:dd:ee:09", "IFACE wlan1 5180", "aa:bb:cc:dd:ee:01"},
		[]string{"short lease", "1700000000 aa:bb:cc:dd:ee:01 10.0.0.5 phone"},
	)

	if len(devices) != 1 {
		t.Fatalf("expected malformed lines skipped, got %v", devices)
	}
	if devices[0].Band != model.Band5GHz {
		t.Fatalf("expected station under readable interface kept, got %+v", devices[0])
	}
}

func TestSortOnlineBeforeOfflineThenByIP(t *testing.T) {
	e := New()

	devices := e.Build(
		[]string{"10.0.0.5 aa:bb:cc:dd:ee:02 br-lan"},
		nil,
		[]string{
			"1700000000 aa:bb:cc:dd:ee:01 10.0.0.20 twenty",
			"1700000000 aa:bb:cc:dd:ee:02 10.0.0.5 five",
			"1700000000 aa:bb:cc:dd:ee:03 10.0.0.100 hundred",
			"1700000000 aa:bb:cc:dd:ee:04 bogus-address weird",
		},
	)

	order := make([]string, 0, len(devices))
	for _, d := range devices {
		order = append(order, d.Hostname)
	}
	want := []string{"five", "twenty", "hundred", "weird"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order %v, want %v", order, want)
		}
	}
}

func TestBuildOrderStableForUnparseableAddresses(t *testing.T) {
	e := New()

	leases := []string{
		"1700000000 aa:bb:cc:dd:ee:01 one.lan one",
		"1700000000 aa:bb:cc:dd:ee:02 two.lan two",
		"1700000000 aa:bb:cc:dd:ee:03 three.lan three",
		"1700000000 aa:bb:cc:dd:ee:04 four.lan four",
		"1700000000 aa:bb:cc:dd:ee:05 five.lan five",
	}

	// None of the addresses parse as dotted quads, so the sort treats all
	// five as equal; their lease-file order must survive every rebuild.
	want := []string{"one", "two", "three", "four", "five"}
	for i := 0; i < 200; i++ {
		devices := e.Build(nil, nil, leases)
		if len(devices) != len(want) {
			t.Fatalf("expected %d devices, got %d", len(want), len(devices))
		}
		for j, d := range devices {
			if d.Hostname != want[j] {
				t.Fatalf("iteration %d: order changed, got %v at position %d, want %v", i, d.Hostname, j, want[j])
			}
		}
	}
}

func TestBandThresholdOverride(t *testing.T) {
	e := New()
	e.BandThresholdMHz = 5000

	devices := e.Build(
		[]string{"10.0.0.5 aa:bb:cc:dd:ee:01 br-lan"},
		[]string{"IFACE wlan0 4980", "aa:bb:cc:dd:ee:01"},
		nil,
	)
	if devices[0].Band != model.Band24GHz {
		t.Fatalf("expected raised threshold to classify 4980 MHz as 2.4g, got %+v", devices[0])
	}
}
