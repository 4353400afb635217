package model

import "time"

type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
)

type Connection string

const (
	ConnectionWiFi    Connection = "wifi"
	ConnectionLAN     Connection = "lan"
	ConnectionUnknown Connection = "unknown"
)

type Band string

const (
	Band24GHz Band = "2.4g"
	Band5GHz  Band = "5g"
	BandNone  Band = ""
)

// Device is one reconciled network client, keyed by MAC. The collection is
// rebuilt from scratch on every poll; nothing about a device survives the
// poll that produced it.
type Device struct {
	MAC        string       `json:"mac"`
	IP         string       `json:"ip"`
	Hostname   string       `json:"hostname"`
	Status     DeviceStatus `json:"status"`
	Connection Connection   `json:"connection"`
	Band       Band         `json:"band"`
}

// Endpoint is one side of an observed connection. Port 0 means the port was
// not present in the sample.
type Endpoint struct {
	Addr string `json:"addr"`
	Port int    `json:"port,omitempty"`
}

// Flow is a single sampled connection with its classification attached.
// Bandwidth is the sampler's own figure, passed through verbatim.
type Flow struct {
	Source      Endpoint `json:"src"`
	Destination Endpoint `json:"dst"`
	Bandwidth   string   `json:"bandwidth"`
	Label       string   `json:"label"`
	Tag         string   `json:"tag"`
}

type Rates struct {
	DownloadMbps float64 `json:"download_mbps"`
	UploadMbps   float64 `json:"upload_mbps"`
	TotalMbps    float64 `json:"total_mbps"`
}

// Gauges are single-value pass-through readings from the gateway.
// Temperature is a preformatted string; "--" means the sensor is missing.
type Gauges struct {
	Load          string  `json:"load"`
	LatencyMs     float64 `json:"ping_ms"`
	Temperature   string  `json:"temp"`
	MemoryPercent int     `json:"memory"`
}

// Snapshot is the full result of one poll cycle. Available is false only
// when the metrics command itself failed; every other failure degrades a
// single field and leaves the rest of the snapshot intact.
type Snapshot struct {
	Available bool      `json:"available"`
	PollID    string    `json:"poll_id"`
	Gauges    Gauges    `json:"gauges"`
	Rates     Rates     `json:"rates"`
	Devices   []Device  `json:"devices"`
	Flows     []Flow    `json:"flows"`
	Time      time.Time `json:"time"`
}

// Event is one journal row shown in the dashboard debug console.
type Event struct {
	ID        int64     `json:"id"`
	PollID    string    `json:"poll_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	EventInfo  = "info"
	EventWarn  = "warn"
	EventError = "error"
)
