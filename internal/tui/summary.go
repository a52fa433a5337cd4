package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// RenderSummary formats a committed load result as a boxed table.
func RenderSummary(r *metdbload.LoadResult) string {
	rows := [][2]string{
		{"Job", r.JobID},
		{"Files", fmt.Sprintf("%d new, %d reused, %d skipped", r.FilesNew, r.FilesReused, len(r.FilesDropped))},
		{"Stat headers", fmt.Sprintf("%d new, %d existing", r.HeadersNew, r.HeadersExisting)},
	}

	types := make([]string, 0, len(r.LinesWritten))
	for lt := range r.LinesWritten {
		types = append(types, lt)
	}
	sort.Strings(types)
	for _, lt := range types {
		rows = append(rows, [2]string{"  " + lt, fmt.Sprintf("%d", r.LinesWritten[lt])})
	}
	rows = append(rows, [2]string{"Lines", fmt.Sprintf("%d", r.TotalLines())})
	rows = append(rows, [2]string{"Metadata", r.Metadata.String()})
	if r.InstanceID != metdbload.NoKey {
		rows = append(rows, [2]string{"instance_info_id", fmt.Sprintf("%d", r.InstanceID)})
	}
	rows = append(rows, [2]string{"Duration", r.Duration.Round(time.Millisecond).String()})

	lines := []string{TitleStyle.Render(SymbolCheck + " Load committed")}
	for _, row := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(row[0]), ValueStyle.Render(row[1])))
	}
	for _, path := range r.FilesDropped {
		lines = append(lines, MutedStyle.Render(SymbolBullet+" skipped "+path))
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}
