// Package monitor orchestrates one poll cycle: it runs the gateway
// commands, feeds the raw output through the parsers and assembles the
// resulting snapshot.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wrtmon/wrtmon/internal/devices"
	"github.com/wrtmon/wrtmon/internal/model"
	"github.com/wrtmon/wrtmon/internal/rates"
	"github.com/wrtmon/wrtmon/internal/section"
	"github.com/wrtmon/wrtmon/internal/shell"
	"github.com/wrtmon/wrtmon/internal/sysinfo"
	"github.com/wrtmon/wrtmon/internal/traffic"
)

const (
	wifiMarker = "---WIFI_SCAN---"
	dhcpMarker = "---DHCP---"

	sectionWiFi = "wifi"
	sectionDHCP = "dhcp"

	// The metrics blob is positional: load, latency, counters,
	// temperature, memory, then the sampler dump.
	metricsHeaderLines = 5
)

var deviceMarkers = []section.Marker{
	{Name: sectionWiFi, Token: wifiMarker},
	{Name: sectionDHCP, Token: dhcpMarker},
}

// Recorder receives journal events produced during a poll.
type Recorder interface {
	Append(ctx context.Context, event model.Event) error
}

// Options carry the gateway interface names and tuning knobs.
type Options struct {
	WANInterface     string
	LANInterface     string
	BandThresholdMHz int
}

type Monitor struct {
	runner  shell.Runner
	journal Recorder
	logger  *slog.Logger

	tracker *rates.Tracker
	engine  *devices.Engine
	flows   *traffic.FlowParser

	wanInterface string
	lanInterface string

	now func() time.Time
}

func New(runner shell.Runner, journal Recorder, opts Options, logger *slog.Logger) *Monitor {
	engine := devices.New()
	if opts.BandThresholdMHz > 0 {
		engine.BandThresholdMHz = opts.BandThresholdMHz
	}
	return &Monitor{
		runner:       runner,
		journal:      journal,
		logger:       logger,
		tracker:      rates.NewTracker(),
		engine:       engine,
		flows:        traffic.NewFlowParser(traffic.NewClassifier()),
		wanInterface: opts.WANInterface,
		lanInterface: opts.LANInterface,
		now:          time.Now,
	}
}

// Poll runs one synchronous poll cycle. The returned snapshot is always
// usable: a metrics failure marks it unavailable, a devices failure leaves
// an empty device list, and neither aborts the other sections.
func (m *Monitor) Poll(ctx context.Context) model.Snapshot {
	pollID := uuid.NewString()
	now := m.now()
	snap := model.Snapshot{
		PollID:  pollID,
		Time:    now,
		Devices: []model.Device{},
		Flows:   []model.Flow{},
	}

	raw, err := m.runner.Run(ctx, m.metricsCommand())
	if err != nil {
		m.logger.Error("metrics command failed", "poll_id", pollID, "err", err)
		m.record(ctx, pollID, model.EventError, "metrics command failed: "+err.Error())
		return snap
	}

	lines := splitLines(raw)
	if len(lines) < metricsHeaderLines {
		m.logger.Error("metrics output truncated", "poll_id", pollID, "lines", len(lines))
		m.record(ctx, pollID, model.EventError, fmt.Sprintf("metrics output truncated to %d lines", len(lines)))
		return snap
	}

	snap.Available = true
	snap.Gauges = model.Gauges{
		Load:          sysinfo.ParseLoad(lines[0]),
		LatencyMs:     sysinfo.ParseLatency(lines[1]),
		Temperature:   sysinfo.ParseTemperature(lines[3]),
		MemoryPercent: sysinfo.ParseMemoryPercent(lines[4]),
	}

	if rx, tx, ok := sysinfo.ParseCounters(lines[2]); ok {
		snap.Rates = m.tracker.Update(rx, tx, now)
	} else {
		m.logger.Warn("unreadable interface counters", "poll_id", pollID, "line", lines[2])
		m.record(ctx, pollID, model.EventWarn, "unreadable interface counters, rates skipped")
	}

	snap.Flows = m.flows.Parse(lines[metricsHeaderLines:])
	snap.Devices = m.collectDevices(ctx, pollID)

	m.logger.Debug("poll completed",
		"poll_id", pollID, "devices", len(snap.Devices), "flows", len(snap.Flows))
	return snap
}

// collectDevices runs the devices command and reconciles its sections.
// Failure here only degrades the device list; the rest of the poll stands.
func (m *Monitor) collectDevices(ctx context.Context, pollID string) []model.Device {
	raw, err := m.runner.Run(ctx, m.devicesCommand())
	if err != nil {
		m.logger.Warn("devices command failed", "poll_id", pollID, "err", err)
		m.record(ctx, pollID, model.EventWarn, "could not fetch connected devices: "+err.Error())
		return []model.Device{}
	}

	sections := section.Split(raw, deviceMarkers)
	return m.engine.Build(
		sections.Lines(section.Default),
		sections.Lines(sectionWiFi),
		sections.Lines(sectionDHCP),
	)
}

// metricsCommand builds the combined gauge/counter/sampler command. The
// fallback echos pin each reading to a fixed line so the blob stays
// positional even when an individual probe fails.
func (m *Monitor) metricsCommand() string {
	return strings.Join([]string{
		"cat /proc/loadavg | cut -d' ' -f1",
		"ping -c 1 8.8.8.8 | grep 'time=' | cut -d'=' -f4 | sed 's/ ms//' || echo 0",
		fmt.Sprintf("{ grep %s /proc/net/dev || echo; } | head -n1 | awk '{print $2,$10}'", m.wanInterface),
		"cat /sys/class/thermal/thermal_zone0/temp 2>/dev/null" +
			" || cat /sys/devices/virtual/thermal/thermal_zone0/temp 2>/dev/null" +
			" || cat /sys/class/hwmon/hwmon0/temp1_input 2>/dev/null" +
			" || echo 0",
		`awk '/MemTotal/ {t=$2} /MemAvailable/ {a=$2} END {printf "%d\n", ((t-a)/t)*100}' /proc/meminfo`,
		fmt.Sprintf("iftop -i %s -t -s 1 -n -N -P -L 12 2>/dev/null", m.lanInterface),
	}, "; ")
}

// devicesCommand dumps the neighbor table, the per-radio station lists and
// the lease file as one marked blob.
func (m *Monitor) devicesCommand() string {
	return strings.Join([]string{
		"cat /proc/net/arp | grep -v 'IP address' | awk '{print $1,$4,$6}'",
		fmt.Sprintf("echo '%s'", wifiMarker),
		"iw dev | grep Interface | awk '{print $2}' | while read iface; do" +
			" freq=$(iw dev $iface info | grep -oE '[0-9]+ MHz' | head -n1 | awk '{print $1}');" +
			" echo \"IFACE $iface $freq\";" +
			" iw dev $iface station dump | grep Station | awk '{print $2}';" +
			" done",
		fmt.Sprintf("echo '%s'", dhcpMarker),
		"cat /tmp/dhcp.leases 2>/dev/null || echo ''",
	}, "; ")
}

func (m *Monitor) record(ctx context.Context, pollID, level, message string) {
	if m.journal == nil {
		return
	}
	event := model.Event{PollID: pollID, Level: level, Message: message, CreatedAt: m.now()}
	if err := m.journal.Append(ctx, event); err != nil {
		m.logger.Warn("journal append failed", "err", err)
	}
}

func splitLines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, line := range lines {
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return out
}
