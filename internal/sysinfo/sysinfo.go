// Package sysinfo parses the single-value gauge lines of the metrics blob.
// These are pass-through readings; a value that cannot be parsed becomes a
// neutral zero (or "--" for the thermal sensor), never an error.
package sysinfo

import (
	"strconv"
	"strings"
)

// TemperatureUnavailable is reported when the thermal line is not numeric.
const TemperatureUnavailable = "--"

// ParseLoad returns the first whitespace-separated token, the 1-minute
// load average in /proc/loadavg layout.
func ParseLoad(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "0"
	}
	return fields[0]
}

// ParseLatency reads a latency probe result in milliseconds.
func ParseLatency(line string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// ParseCounters reads "<rx> <tx>" cumulative byte counters.
func ParseCounters(line string) (rx, tx uint64, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, 0, false
	}
	rx, errRx := strconv.ParseUint(fields[0], 10, 64)
	tx, errTx := strconv.ParseUint(fields[1], 10, 64)
	if errRx != nil || errTx != nil {
		return 0, 0, false
	}
	return rx, tx, true
}

// ParseTemperature formats a thermal zone reading. Kernel sensors report
// millidegrees; a handful of boards report degrees directly, so a reading
// under 200 is taken as already being in °C.
func ParseTemperature(line string) string {
	raw := strings.TrimSpace(line)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return TemperatureUnavailable
	}
	celsius := float64(value)
	if value >= 200 {
		celsius = float64(value) / 1000
	}
	return strconv.FormatFloat(celsius, 'f', 1, 64)
}

// ParseMemoryPercent reads a used-memory percentage.
func ParseMemoryPercent(line string) int {
	value, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || value < 0 {
		return 0
	}
	return value
}
