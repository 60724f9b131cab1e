package collector

// SectionSeparator splits the batched command output into sections.
const SectionSeparator = "---"

// MetricsCommand returns a single batched command that collects all metrics
// in one SSH exec. Output sections are separated by "---" and include:
// 0. /proc/stat - CPU tick counters
// 1. /proc/loadavg - load averages
// 2. /proc/meminfo - memory information
// 3. /proc/net/dev - network interface counters
// 4. /proc/uptime - seconds since boot
// 5. df - filesystem usage (fails silently if unavailable)
// 6. docker ps - running containers (fails silently if docker is missing)
func MetricsCommand() string {
	return `cat /proc/stat; echo "---"; cat /proc/loadavg; echo "---"; cat /proc/meminfo; echo "---"; cat /proc/net/dev; echo "---"; cat /proc/uptime; echo "---"; df -P -k 2>/dev/null || true; echo "---"; docker ps --format '{{.ID}}|{{.Names}}|{{.Image}}|{{.Status}}' 2>/dev/null || true`
}

// ProbeCommand is a minimal command used to verify a session is alive.
const ProbeCommand = "echo 1"
