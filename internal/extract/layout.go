package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// glyphs whose baselines are closer than this share a row
	rowTolerance = 2.0
	// horizontal gap, relative to the font size, that separates two words
	wordGapRatio = 0.2
	// cap on blank lines inserted for one vertical gap
	maxBlankLines = 3
)

type textRow struct {
	y      float64
	glyphs []pdf.Text
}

// pageLines rebuilds the visual lines of a page from positioned glyphs, top to
// bottom. Vertical gaps wider than the usual line pitch become blank lines.
func pageLines(texts []pdf.Text) []string {
	rows := groupRows(texts)
	if len(rows) == 0 {
		return nil
	}

	pitch := linePitch(rows)
	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		if i > 0 && pitch > 0 {
			skipped := int(math.Round((rows[i-1].y-row.y)/pitch)) - 1
			for n := 0; n < min(skipped, maxBlankLines); n++ {
				lines = append(lines, "")
			}
		}
		lines = append(lines, row.text())
	}
	return lines
}

func groupRows(texts []pdf.Text) []textRow {
	var rows []textRow
	for _, t := range texts {
		if t.S == "" {
			continue
		}

		placed := false
		for i := range rows {
			if math.Abs(rows[i].y-t.Y) < rowTolerance {
				rows[i].glyphs = append(rows[i].glyphs, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, textRow{y: t.Y, glyphs: []pdf.Text{t}})
		}
	}

	// PDF y grows upwards
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })
	return rows
}

// linePitch is the smallest distance between two consecutive rows
func linePitch(rows []textRow) float64 {
	pitch := 0.0
	for i := 1; i < len(rows); i++ {
		gap := rows[i-1].y - rows[i].y
		if gap > 0 && (pitch == 0 || gap < pitch) {
			pitch = gap
		}
	}
	return pitch
}

func (r textRow) text() string {
	glyphs := r.glyphs
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].X < glyphs[j].X })

	var b strings.Builder
	for i, g := range glyphs {
		if i > 0 {
			prev := glyphs[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > wordGapRatio*math.Max(g.FontSize, 1) && !endsWithSpace(b.String()) && !strings.HasPrefix(g.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.TrimSpace(b.String())
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ")
}
