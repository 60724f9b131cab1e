package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/remon-cli/remon/internal/cache"
	"github.com/remon-cli/remon/internal/collector"
	"github.com/remon-cli/remon/internal/dashboard"
	"github.com/remon-cli/remon/internal/logger"
	"github.com/remon-cli/remon/internal/ui"
)

// CacheStatsOutput is the JSON shape of the cache-stats command.
type CacheStatsOutput struct {
	Host    string      `json:"host"`
	Session SessionInfo `json:"session"`
	Cache   cache.Stats `json:"cache"`
}

// cacheStatsCommand runs two collection cycles against the server and
// reports the resulting cache statistics. Two cycles are needed so the
// second can actually hit the entries the first one populated.
func cacheStatsCommand(jsonOut bool) error {
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

	if _, err := collectWithBaseline(ctx, coll); err != nil {
		if jsonOut {
			WriteJSONFromError(os.Stdout, err)
		}
		return err
	}

	out := CacheStatsOutput{
		Host: cfg.Server.Host,
		Session: SessionInfo{
			State:    coll.SessionState().String(),
			Rebuilds: coll.Rebuilds(),
		},
		Cache: coll.CacheStats(),
	}

	if jsonOut {
		return WriteJSONSuccess(os.Stdout, out)
	}

	fmt.Println(renderCacheStats(out))
	return nil
}

// renderCacheStats formats cache statistics for human reading.
func renderCacheStats(out CacheStatsOutput) string {
	labelStyle := lipgloss.NewStyle().Foreground(ui.ColorSecondary).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)

	var b strings.Builder

	fmt.Fprintf(&b, "%s cache statistics\n\n", out.Host)

	fmt.Fprintf(&b, "  %s  %d items, %s of %s (%.1f%%)\n",
		labelStyle.Render("SIZE"),
		out.Cache.ItemCount,
		dashboard.FormatBytes(out.Cache.CurrentSizeBytes),
		dashboard.FormatBytes(out.Cache.MaxSizeBytes),
		out.Cache.UsagePercent)

	fmt.Fprintf(&b, "  %s  %d hits, %d misses (%.1f%% hit rate)\n",
		labelStyle.Render("HITS"),
		out.Cache.HitCount,
		out.Cache.MissCount,
		out.Cache.HitRatePercent)

	if len(out.Cache.ItemsByPriority) > 0 {
		b.WriteString("\n" + labelStyle.Render("  BY PRIORITY") + "\n")
		for _, priority := range []string{"critical", "high", "medium", "low"} {
			if count, ok := out.Cache.ItemsByPriority[priority]; ok {
				fmt.Fprintf(&b, "    %-10s %d\n", priority, count)
			}
		}
	}

	fmt.Fprintf(&b, "\n%s", mutedStyle.Render(fmt.Sprintf(
		"  session %s (%d rebuilds)", out.Session.State, out.Session.Rebuilds)))

	return b.String()
}
