package tui

import (
	"fmt"
	"strings"
	"time"
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("filehub monitor"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(m.endpoint))
	b.WriteString("\n\n")

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("poll failed: %v", m.lastErr)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderCounters())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n\n")
	b.WriteString(statusBarStyle.Render("↑/↓ select   r refresh   q quit"))

	return b.String()
}

func (m *Model) renderCounters() string {
	c := m.snap.Counters
	rt := m.snap.Runtime
	return dimStyle.Render(fmt.Sprintf(
		"overwritten=%d evicted=%d failed=%d deleted=%d  |  goroutines=%d fds=%d",
		c.Overwritten, c.Evicted, c.Failed, c.Deleted, rt.Goroutines, rt.FileDescriptors,
	))
}

func (m *Model) renderTable() string {
	if len(m.snap.Entries) == 0 {
		return dimStyle.Render("(no files stored)")
	}

	var b strings.Builder
	header := fmt.Sprintf("%-30s %-22s %10s %8s %10s", "PATH", "CONTENT-TYPE", "LENGTH", "ACCESS", "EXPIRES")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, e := range m.snap.Entries {
		row := fmt.Sprintf("%-30s %-22s %10d %8d %10s",
			truncate(e.Path, 30),
			truncate(e.ContentType, 22),
			e.Length,
			e.AccessCount,
			expiryLabel(e.ExpiresAt),
		)

		style := okStyle
		if time.Until(e.ExpiresAt) < 10*time.Second {
			style = warnStyle
		}
		if i == m.cursor {
			row = "> " + row
			b.WriteString(style.Bold(true).Render(row))
		} else {
			b.WriteString("  ")
			b.WriteString(style.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func expiryLabel(t time.Time) string {
	d := time.Until(t)
	if d < 0 {
		return "expired"
	}
	return d.Round(time.Second).String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
