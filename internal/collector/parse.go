package collector

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// cpuTicks holds the cumulative jiffy counters from the aggregate cpu line.
type cpuTicks struct {
	busy  int64
	total int64
	cores int
}

// parseCPUTicks parses the cumulative CPU tick counters from /proc/stat.
func parseCPUTicks(procStat string) (cpuTicks, error) {
	var ticks cpuTicks
	scanner := bufio.NewScanner(strings.NewReader(procStat))

	for scanner.Scan() {
		line := scanner.Text()

		// Count individual CPU cores (cpu0, cpu1, etc.)
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			ticks.cores++
			continue
		}

		// Aggregate line. Fields: cpu user nice system idle iowait irq softirq steal guest guest_nice
		if strings.HasPrefix(line, "cpu ") {
			fields := strings.Fields(line)
			if len(fields) < 5 {
				return ticks, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
			}

			var total, idle int64
			for i := 1; i < len(fields); i++ {
				val, err := strconv.ParseInt(fields[i], 10, 64)
				if err != nil {
					return ticks, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
				}
				total += val

				// idle is field 4, iowait is field 5
				if i == 4 || i == 5 {
					idle += val
				}
			}
			ticks.total = total
			ticks.busy = total - idle
		}
	}

	if err := scanner.Err(); err != nil {
		return ticks, fmt.Errorf("error scanning /proc/stat: %w", err)
	}

	if ticks.total == 0 {
		return ticks, fmt.Errorf("no aggregate cpu line found in /proc/stat")
	}

	return ticks, nil
}

// parseLoadAvg parses the three load averages from /proc/loadavg.
func parseLoadAvg(procLoadavg string) ([3]float64, error) {
	var loadAvg [3]float64

	fields := strings.Fields(strings.TrimSpace(procLoadavg))
	if len(fields) < 3 {
		return loadAvg, fmt.Errorf("invalid /proc/loadavg: %s", procLoadavg)
	}

	for i := 0; i < 3; i++ {
		val, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return loadAvg, fmt.Errorf("failed to parse loadavg field %d: %w", i, err)
		}
		loadAvg[i] = val
	}

	return loadAvg, nil
}

// parseMemInfo parses memory metrics from /proc/meminfo.
func parseMemInfo(procMeminfo string) (MemoryStats, error) {
	var stats MemoryStats
	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))

	var memTotal, memFree, memAvailable, buffers, cached int64
	foundFields := 0

	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		// Values in /proc/meminfo are in kB
		key := strings.TrimSuffix(parts[0], ":")
		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}

		valBytes := val * 1024

		switch key {
		case "MemTotal":
			memTotal = valBytes
			foundFields++
		case "MemFree":
			memFree = valBytes
			foundFields++
		case "MemAvailable":
			memAvailable = valBytes
			foundFields++
		case "Buffers":
			buffers = valBytes
			foundFields++
		case "Cached":
			cached = valBytes
			foundFields++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}

	if foundFields < 3 {
		return stats, fmt.Errorf("insufficient memory info found in /proc/meminfo")
	}

	stats.TotalBytes = memTotal
	stats.AvailableBytes = memAvailable
	stats.CachedBytes = cached + buffers
	stats.UsedBytes = memTotal - memFree - buffers - cached
	if memTotal > 0 {
		stats.UsagePercent = float64(stats.UsedBytes) / float64(memTotal) * 100
	}

	return stats, nil
}

// parseNetDev parses per-interface counters from /proc/net/dev.
// The per-second rates are filled in later from counter deltas.
func parseNetDev(procNetDev string) ([]Interface, error) {
	var interfaces []Interface
	scanner := bufio.NewScanner(strings.NewReader(procNetDev))

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip the two header lines
		if lineNum <= 2 {
			continue
		}

		// Format: "  iface: bytes packets errs drop fifo frame compressed multicast | bytes packets..."
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		name := strings.TrimSpace(parts[0])
		fields := strings.Fields(parts[1])

		// Need at least 16 fields (8 receive + 8 transmit)
		if len(fields) < 16 {
			continue
		}

		rxBytes, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rx_bytes for %s: %w", name, err)
		}

		rxPackets, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rx_packets for %s: %w", name, err)
		}

		txBytes, err := strconv.ParseInt(fields[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tx_bytes for %s: %w", name, err)
		}

		txPackets, err := strconv.ParseInt(fields[9], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tx_packets for %s: %w", name, err)
		}

		interfaces = append(interfaces, Interface{
			Name:      name,
			RxBytes:   rxBytes,
			TxBytes:   txBytes,
			RxPackets: rxPackets,
			TxPackets: txPackets,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/net/dev: %w", err)
	}

	return interfaces, nil
}

// parseUptime parses seconds-since-boot from /proc/uptime.
func parseUptime(procUptime string) (time.Duration, error) {
	fields := strings.Fields(strings.TrimSpace(procUptime))
	if len(fields) < 1 {
		return 0, fmt.Errorf("invalid /proc/uptime: %s", procUptime)
	}

	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uptime: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// pseudoFilesystems are df entries that carry no useful capacity information.
var pseudoFilesystems = map[string]bool{
	"tmpfs":    true,
	"devtmpfs": true,
	"overlay":  true,
	"shm":      true,
	"none":     true,
}

// parseDiskFree parses `df -P -k` output into per-mount usage.
func parseDiskFree(output string) ([]Disk, error) {
	var disks []Disk
	scanner := bufio.NewScanner(strings.NewReader(output))

	// Skip header line (Filesystem 1024-blocks Used Available Capacity Mounted on)
	scanner.Scan()

	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}

		filesystem := fields[0]
		if pseudoFilesystems[filesystem] {
			continue
		}

		total, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		used, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			continue
		}
		free, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			continue
		}

		// Mount points can contain spaces
		mount := strings.Join(fields[5:], " ")

		disk := Disk{
			Filesystem: filesystem,
			Mount:      mount,
			TotalBytes: total * 1024,
			UsedBytes:  used * 1024,
			FreeBytes:  free * 1024,
		}
		if total > 0 {
			disk.UsagePercent = float64(used) / float64(total) * 100
		}

		disks = append(disks, disk)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning df output: %w", err)
	}

	return disks, nil
}

// parseContainers parses `docker ps --format '{{.ID}}|{{.Names}}|{{.Image}}|{{.Status}}'`.
// An empty section means docker is unavailable and yields no containers.
func parseContainers(output string) ([]Container, error) {
	var containers []Container
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, "|", 4)
		if len(fields) < 4 {
			return nil, fmt.Errorf("invalid docker ps line: %s", line)
		}

		containers = append(containers, Container{
			ID:     strings.TrimSpace(fields[0]),
			Name:   strings.TrimSpace(fields[1]),
			Image:  strings.TrimSpace(fields[2]),
			Status: strings.TrimSpace(fields[3]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning docker ps output: %w", err)
	}

	return containers, nil
}
