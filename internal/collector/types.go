package collector

import "time"

// Snapshot contains all metrics collected from the server in one cycle.
type Snapshot struct {
	CollectedAt time.Time     `json:"collected_at"`
	CPU         CPUStats      `json:"cpu"`
	Memory      MemoryStats   `json:"memory"`
	Network     []Interface   `json:"network"`
	Disks       []Disk        `json:"disks"`
	Containers  []Container   `json:"containers"`
	Uptime      time.Duration `json:"uptime_ns"`
}

// CPUStats contains CPU usage information.
// UsagePercent is computed from jiffies deltas between polls, so the
// first snapshot after startup always reports 0.
type CPUStats struct {
	UsagePercent float64    `json:"usage_percent"`
	Cores        int        `json:"cores"`
	LoadAvg      [3]float64 `json:"load_avg"`
}

// MemoryStats contains memory usage information in bytes.
type MemoryStats struct {
	TotalBytes     int64   `json:"total_bytes"`
	UsedBytes      int64   `json:"used_bytes"`
	AvailableBytes int64   `json:"available_bytes"`
	CachedBytes    int64   `json:"cached_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
}

// Interface contains I/O statistics for a single network interface.
// The per-second rates are computed from counter deltas between polls
// and are 0 on the first snapshot.
type Interface struct {
	Name          string  `json:"name"`
	RxBytes       int64   `json:"rx_bytes"`
	TxBytes       int64   `json:"tx_bytes"`
	RxPackets     int64   `json:"rx_packets"`
	TxPackets     int64   `json:"tx_packets"`
	RxBytesPerSec float64 `json:"rx_bytes_per_sec"`
	TxBytesPerSec float64 `json:"tx_bytes_per_sec"`
}

// Disk contains usage for a single mounted filesystem.
type Disk struct {
	Filesystem   string  `json:"filesystem"`
	Mount        string  `json:"mount"`
	TotalBytes   int64   `json:"total_bytes"`
	UsedBytes    int64   `json:"used_bytes"`
	FreeBytes    int64   `json:"free_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// Container describes a running Docker container.
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
}
