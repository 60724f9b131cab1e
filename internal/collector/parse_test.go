package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProcStat = `cpu  100 0 100 700 100 0 0 0 0 0
cpu0 50 0 50 350 50 0 0 0 0 0
cpu1 50 0 50 350 50 0 0 0 0 0
intr 12345
ctxt 67890
`

const sampleMeminfo = `MemTotal:       16384000 kB
MemFree:         8192000 kB
MemAvailable:   12288000 kB
Buffers:          512000 kB
Cached:          2048000 kB
SwapTotal:             0 kB
`

const sampleNetDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
  eth0: 1000 10 0 0 0 0 0 0 2000 20 0 0 0 0 0 0
    lo: 500 5 0 0 0 0 0 0 500 5 0 0 0 0 0 0
`

const sampleDf = `Filesystem     1024-blocks      Used Available Capacity Mounted on
/dev/sda1          1000000    250000    750000      25% /
tmpfs               100000     10000     90000      10% /dev/shm
/dev/md1           2000000   1000000   1000000      50% /mnt/disk1
`

const sampleDockerPs = `abc123|plex|linuxserver/plex:latest|Up 3 days
def456|nginx|nginx:1.25|Up 10 hours
`

func TestParseCPUTicks(t *testing.T) {
	ticks, err := parseCPUTicks(sampleProcStat)
	require.NoError(t, err)

	// idle (700) + iowait (100) are idle time, the rest is busy
	assert.Equal(t, int64(1000), ticks.total)
	assert.Equal(t, int64(200), ticks.busy)
	assert.Equal(t, 2, ticks.cores)
}

func TestParseCPUTicksErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "no aggregate line", input: "intr 12345\nctxt 67890\n"},
		{name: "truncated cpu line", input: "cpu  100 0\n"},
		{name: "garbage field", input: "cpu  100 0 abc 700 100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCPUTicks(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestParseLoadAvg(t *testing.T) {
	loadAvg, err := parseLoadAvg("0.52 0.58 0.59 1/457 32000\n")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0.52, 0.58, 0.59}, loadAvg)
}

func TestParseLoadAvgInvalid(t *testing.T) {
	_, err := parseLoadAvg("0.52 0.58")
	assert.Error(t, err)

	_, err = parseLoadAvg("a b c")
	assert.Error(t, err)
}

func TestParseMemInfo(t *testing.T) {
	mem, err := parseMemInfo(sampleMeminfo)
	require.NoError(t, err)

	assert.Equal(t, int64(16384000)*1024, mem.TotalBytes)
	assert.Equal(t, int64(12288000)*1024, mem.AvailableBytes)
	assert.Equal(t, int64(512000+2048000)*1024, mem.CachedBytes)
	assert.Equal(t, int64(16384000-8192000-512000-2048000)*1024, mem.UsedBytes)
	assert.InDelta(t, 34.375, mem.UsagePercent, 0.001)
}

func TestParseMemInfoInsufficient(t *testing.T) {
	_, err := parseMemInfo("MemTotal: 1024 kB\n")
	assert.Error(t, err)
}

func TestParseNetDev(t *testing.T) {
	ifaces, err := parseNetDev(sampleNetDev)
	require.NoError(t, err)
	require.Len(t, ifaces, 2)

	assert.Equal(t, "eth0", ifaces[0].Name)
	assert.Equal(t, int64(1000), ifaces[0].RxBytes)
	assert.Equal(t, int64(2000), ifaces[0].TxBytes)
	assert.Equal(t, int64(10), ifaces[0].RxPackets)
	assert.Equal(t, int64(20), ifaces[0].TxPackets)

	assert.Equal(t, "lo", ifaces[1].Name)
	assert.Equal(t, int64(500), ifaces[1].RxBytes)
}

func TestParseNetDevSkipsShortLines(t *testing.T) {
	ifaces, err := parseNetDev("header\nheader\n  eth0: 1 2 3\n")
	require.NoError(t, err)
	assert.Empty(t, ifaces)
}

func TestParseUptime(t *testing.T) {
	uptime, err := parseUptime("3600.50 7100.00\n")
	require.NoError(t, err)
	assert.Equal(t, 3600*time.Second+500*time.Millisecond, uptime)
}

func TestParseUptimeInvalid(t *testing.T) {
	_, err := parseUptime("")
	assert.Error(t, err)

	_, err = parseUptime("soon")
	assert.Error(t, err)
}

func TestParseDiskFree(t *testing.T) {
	disks, err := parseDiskFree(sampleDf)
	require.NoError(t, err)

	// tmpfs is filtered out
	require.Len(t, disks, 2)

	assert.Equal(t, "/dev/sda1", disks[0].Filesystem)
	assert.Equal(t, "/", disks[0].Mount)
	assert.Equal(t, int64(1000000)*1024, disks[0].TotalBytes)
	assert.Equal(t, int64(250000)*1024, disks[0].UsedBytes)
	assert.Equal(t, int64(750000)*1024, disks[0].FreeBytes)
	assert.InDelta(t, 25.0, disks[0].UsagePercent, 0.001)

	assert.Equal(t, "/mnt/disk1", disks[1].Mount)
	assert.InDelta(t, 50.0, disks[1].UsagePercent, 0.001)
}

func TestParseDiskFreeMountWithSpaces(t *testing.T) {
	out := "Filesystem 1024-blocks Used Available Capacity Mounted on\n" +
		"/dev/sdb1 1000 500 500 50% /mnt/my disk\n"

	disks, err := parseDiskFree(out)
	require.NoError(t, err)
	require.Len(t, disks, 1)
	assert.Equal(t, "/mnt/my disk", disks[0].Mount)
}

func TestParseContainers(t *testing.T) {
	containers, err := parseContainers(sampleDockerPs)
	require.NoError(t, err)
	require.Len(t, containers, 2)

	assert.Equal(t, "abc123", containers[0].ID)
	assert.Equal(t, "plex", containers[0].Name)
	assert.Equal(t, "linuxserver/plex:latest", containers[0].Image)
	assert.Equal(t, "Up 3 days", containers[0].Status)
}

func TestParseContainersEmpty(t *testing.T) {
	containers, err := parseContainers("")
	require.NoError(t, err)
	assert.Empty(t, containers)
}

func TestParseContainersMalformed(t *testing.T) {
	_, err := parseContainers("abc123|plex\n")
	assert.Error(t, err)
}
