// Package devices reconciles lease, address-table and wireless-station
// records into one device collection keyed by hardware address.
package devices

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wrtmon/wrtmon/internal/model"
)

// DefaultBandThresholdMHz splits the two wireless bands: a radio reporting
// a frequency above it is treated as 5GHz. This is a heuristic, not a
// protocol constant; some hardware would need the channel table instead.
const DefaultBandThresholdMHz = 4000

const wildcardMAC = "00:00:00:00:00:00"

// Engine builds the per-poll device collection. Sources are merged in a
// fixed precedence: leases seed the collection, address-table sightings
// mark devices online, wireless stations refine connection type and band.
type Engine struct {
	BandThresholdMHz int
}

func New() *Engine {
	return &Engine{BandThresholdMHz: DefaultBandThresholdMHz}
}

type leaseRecord struct {
	MAC      string
	IP       string
	Hostname string
}

type addressRecord struct {
	IP  string
	MAC string
}

type stationRecord struct {
	MAC  string
	Band model.Band
}

// Build parses the three raw sections and merges them. Malformed lines in
// any section are skipped; an empty or missing section simply contributes
// nothing. Devices are tracked in first-sighting order so that records the
// sort treats as equal keep a fixed relative order across polls.
func (e *Engine) Build(addressLines, wirelessLines, leaseLines []string) []model.Device {
	devices := make(map[string]*model.Device)
	order := make([]string, 0)

	for _, lease := range parseLeases(leaseLines) {
		if _, ok := devices[lease.MAC]; !ok {
			order = append(order, lease.MAC)
		}
		devices[lease.MAC] = &model.Device{
			MAC:        lease.MAC,
			IP:         lease.IP,
			Hostname:   lease.Hostname,
			Status:     model.StatusOffline,
			Connection: model.ConnectionLAN,
			Band:       model.BandNone,
		}
	}

	for _, entry := range parseAddressTable(addressLines) {
		if device, ok := devices[entry.MAC]; ok {
			device.Status = model.StatusOnline
			continue
		}
		// Seen on the wire but never leased: synthesize a minimal record.
		order = append(order, entry.MAC)
		devices[entry.MAC] = &model.Device{
			MAC:        entry.MAC,
			IP:         entry.IP,
			Hostname:   entry.IP,
			Status:     model.StatusOnline,
			Connection: model.ConnectionLAN,
			Band:       model.BandNone,
		}
	}

	for _, station := range e.parseStations(wirelessLines) {
		device, ok := devices[station.MAC]
		if !ok {
			// A station with no lease and no address-table entry carries
			// no usable network address; dropped, known limitation.
			continue
		}
		device.Status = model.StatusOnline
		device.Connection = model.ConnectionWiFi
		device.Band = station.Band
	}

	out := make([]model.Device, 0, len(order))
	for _, mac := range order {
		out = append(out, *devices[mac])
	}
	sortDevices(out)
	return out
}

// parseLeases reads lease lines: <timestamp> <mac> <ip> <hostname> [...].
// A hostname of "*" means the client supplied none; a stable placeholder
// derived from the last address octet is used instead.
func parseLeases(lines []string) []leaseRecord {
	records := make([]leaseRecord, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		mac := normalizeMAC(fields[1])
		if mac == "" {
			continue
		}
		ip := fields[2]
		hostname := fields[3]
		if hostname == "*" || hostname == "" {
			hostname = placeholderName(ip)
		}
		records = append(records, leaseRecord{MAC: mac, IP: ip, Hostname: hostname})
	}
	return records
}

// parseAddressTable reads neighbor-cache lines: <ip> <mac> <iface>.
// The all-zero hardware address is a table placeholder, not a device.
func parseAddressTable(lines []string) []addressRecord {
	records := make([]addressRecord, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		mac := normalizeMAC(fields[1])
		if mac == "" || mac == wildcardMAC {
			continue
		}
		records = append(records, addressRecord{IP: fields[0], MAC: mac})
	}
	return records
}

// parseStations reads the wireless dump: an "IFACE <name> <freqMHz>" line
// sets the band for the station MACs that follow it, until the next IFACE
// line. Stations under an interface with an unreadable frequency are
// skipped since their band cannot be determined.
func (e *Engine) parseStations(lines []string) []stationRecord {
	threshold := e.BandThresholdMHz
	if threshold <= 0 {
		threshold = DefaultBandThresholdMHz
	}

	records := make([]stationRecord, 0, len(lines))
	band := model.BandNone
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "IFACE") {
			band = model.BandNone
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			freq, err := strconv.Atoi(fields[2])
			if err != nil {
				continue
			}
			if freq > threshold {
				band = model.Band5GHz
			} else {
				band = model.Band24GHz
			}
			continue
		}
		mac := normalizeMAC(line)
		if mac == "" || band == model.BandNone {
			continue
		}
		records = append(records, stationRecord{MAC: mac, Band: band})
	}
	return records
}

// sortDevices orders online before offline, then ascending by IP read as
// four dotted integers. Addresses that are not dotted quads sort after the
// parseable ones, keeping their relative order.
func sortDevices(devices []model.Device) {
	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].Status != devices[j].Status {
			return devices[i].Status == model.StatusOnline
		}
		left, leftOK := ipSortKey(devices[i].IP)
		right, rightOK := ipSortKey(devices[j].IP)
		if leftOK != rightOK {
			return leftOK
		}
		if !leftOK {
			return false
		}
		return left < right
	})
}

func ipSortKey(ip string) (uint32, bool) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return 0, false
	}
	var key uint32
	for _, part := range parts {
		octet, err := strconv.Atoi(part)
		if err != nil || octet < 0 || octet > 255 {
			return 0, false
		}
		key = key<<8 | uint32(octet)
	}
	return key, true
}

func normalizeMAC(raw string) string {
	mac := strings.ToLower(strings.TrimSpace(raw))
	if len(mac) != 17 || strings.Count(mac, ":") != 5 {
		return ""
	}
	return mac
}

func placeholderName(ip string) string {
	parts := strings.Split(ip, ".")
	return fmt.Sprintf("Unknown (%s)", parts[len(parts)-1])
}
