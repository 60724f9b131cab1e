package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/remon-cli/remon/internal/cache"
	"github.com/remon-cli/remon/internal/collector"
	"github.com/remon-cli/remon/internal/config"
	"github.com/remon-cli/remon/internal/dashboard"
	"github.com/remon-cli/remon/internal/errors"
	"github.com/remon-cli/remon/internal/logger"
	"github.com/remon-cli/remon/internal/ui"
	"golang.org/x/term"
)

const (
	// statusTimeout bounds the whole status run, both samples included.
	statusTimeout = 60 * time.Second

	// sampleGap separates the two collection samples. Rate metrics need
	// a baseline, so the first sample only primes the counters.
	sampleGap = time.Second
)

// StatusOutput is the JSON shape of the status command.
type StatusOutput struct {
	Host      string              `json:"host"`
	Snapshot  *collector.Snapshot `json:"snapshot"`
	Session   SessionInfo         `json:"session"`
	Cache     cache.Stats         `json:"cache"`
	SampledAt time.Time           `json:"sampled_at"`
}

// SessionInfo summarizes connection health for the run.
type SessionInfo struct {
	State    string `json:"state"`
	Rebuilds int64  `json:"rebuilds"`
}

// loadConfig locates and loads the config file, honoring --config.
func loadConfig() (*config.Config, error) {
	cfgPath, err := config.Find(Config())
	if err != nil {
		return nil, err
	}
	if cfgPath == "" {
		return nil, errors.New(errors.ErrConfig,
			"No config file found",
			"Looks like you haven't set up shop here yet. Run 'remon init' to get started.")
	}
	return config.Load(cfgPath)
}

// statusCommand implements the status command logic.
func statusCommand(jsonOut bool) error {
	cfg, err := loadConfig()
	if err != nil {
		if jsonOut {
			WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	coll, err := collector.NewFromConfig(cfg, logger.Default())
	if err != nil {
		if jsonOut {
			WriteJSONFromError(os.Stdout, err)
		}
		return err
	}
	defer coll.Close()

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	snap, err := collectWithBaseline(ctx, coll)
	if err != nil {
		if jsonOut {
			WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	out := StatusOutput{
		Host:     cfg.Server.Host,
		Snapshot: snap,
		Session: SessionInfo{
			State:    coll.SessionState().String(),
			Rebuilds: coll.Rebuilds(),
		},
		Cache:     coll.CacheStats(),
		SampledAt: snap.CollectedAt,
	}

	if jsonOut {
		return WriteJSONSuccess(os.Stdout, out)
	}

	fmt.Println(renderStatusText(out, terminalWidth()))
	return nil
}

// collectWithBaseline takes two samples so rate metrics (CPU, network)
// have a delta to compute from, and returns the second.
func collectWithBaseline(ctx context.Context, coll *collector.Collector) (*collector.Snapshot, error) {
	if _, err := coll.Collect(ctx); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, errors.Transient(ctx.Err(), errors.ErrExec, "Status collection timed out")
	case <-time.After(sampleGap):
	}

	return coll.Collect(ctx)
}

// terminalWidth returns the stdout width, or 80 when stdout is not a
// terminal (pipes, CI).
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// renderStatusText formats a snapshot for human reading.
func renderStatusText(out StatusOutput, width int) string {
	labelStyle := lipgloss.NewStyle().Foreground(ui.ColorSecondary).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	okStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)

	snap := out.Snapshot
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n\n",
		okStyle.Render(ui.SymbolSuccess),
		out.Host,
		mutedStyle.Render("up "+dashboard.FormatUptime(snap.Uptime)))

	fmt.Fprintf(&b, "  %s  %5.1f%%  %s\n",
		labelStyle.Render("CPU"),
		snap.CPU.UsagePercent,
		mutedStyle.Render(fmt.Sprintf("load %.2f %.2f %.2f (%d cores)",
			snap.CPU.LoadAvg[0], snap.CPU.LoadAvg[1], snap.CPU.LoadAvg[2], snap.CPU.Cores)))

	fmt.Fprintf(&b, "  %s  %5.1f%%  %s\n",
		labelStyle.Render("MEM"),
		snap.Memory.UsagePercent,
		mutedStyle.Render(dashboard.FormatBytes(snap.Memory.UsedBytes)+" / "+
			dashboard.FormatBytes(snap.Memory.TotalBytes)))

	rx, tx := totalNetworkRates(snap)
	fmt.Fprintf(&b, "  %s  rx %s  tx %s\n",
		labelStyle.Render("NET"),
		dashboard.FormatRate(rx),
		dashboard.FormatRate(tx))

	if len(snap.Disks) > 0 {
		b.WriteString("\n" + labelStyle.Render("  DISKS") + "\n")
		for _, d := range snap.Disks {
			line := fmt.Sprintf("    %-20s %5.1f%%  %s free",
				d.Mount, d.UsagePercent, dashboard.FormatBytes(d.FreeBytes))
			b.WriteString(truncateLine(line, width) + "\n")
		}
	}

	if len(snap.Containers) > 0 {
		b.WriteString("\n" + labelStyle.Render("  CONTAINERS") + "\n")
		for _, c := range snap.Containers {
			line := fmt.Sprintf("    %-16s %-24s %s", c.Name, c.Image, c.Status)
			b.WriteString(truncateLine(line, width) + "\n")
		}
	}

	fmt.Fprintf(&b, "\n%s\n", mutedStyle.Render(fmt.Sprintf(
		"  session %s (%d rebuilds) · cache %d items, %s",
		out.Session.State, out.Session.Rebuilds,
		out.Cache.ItemCount, dashboard.FormatBytes(out.Cache.CurrentSizeBytes))))

	return strings.TrimRight(b.String(), "\n")
}

// totalNetworkRates sums interface rates, skipping loopback.
func totalNetworkRates(snap *collector.Snapshot) (rx, tx float64) {
	for _, iface := range snap.Network {
		if iface.Name == "lo" || iface.Name == "lo0" {
			continue
		}
		rx += iface.RxBytesPerSec
		tx += iface.TxBytesPerSec
	}
	return rx, tx
}

// truncateLine cuts a line to the terminal width, rune-aware.
func truncateLine(s string, width int) string {
	if width <= 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
