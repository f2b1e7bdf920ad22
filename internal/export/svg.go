// Package export renders stored trajectories to standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/driftlab/driftsim/internal/storage"
)

var groupPalette = []string{
	"#00ff88", "#00ccff", "#ff00ff", "#ffcc00", "#ff4444", "#88aaff",
}

// TrajectoriesToSVG draws one polyline per particle, colored by release
// group, over the horizontal extent of the batch.
func TrajectoriesToSVG(traj *storage.Trajectories, width, height int) string {
	if traj == nil || len(traj.X) == 0 {
		return ""
	}

	// Bounds over every recorded position. Series may be empty for
	// individual particles, so seed from the first non-empty one.
	first := -1
	for p := range traj.X {
		if len(traj.X[p]) > 0 {
			first = p
			break
		}
	}
	if first < 0 {
		return ""
	}

	minX, maxX := traj.X[first][0], traj.X[first][0]
	minY, maxY := traj.Y[first][0], traj.Y[first][0]
	for p := range traj.X {
		for i := range traj.X[p] {
			if traj.X[p][i] < minX {
				minX = traj.X[p][i]
			}
			if traj.X[p][i] > maxX {
				maxX = traj.X[p][i]
			}
			if traj.Y[p][i] < minY {
				minY = traj.Y[p][i]
			}
			if traj.Y[p][i] > maxY {
				maxY = traj.Y[p][i]
			}
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for p := range traj.X {
		if len(traj.X[p]) < 2 {
			continue
		}

		color := groupPalette[int(traj.Groups[p])%len(groupPalette)]
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.0" stroke-opacity="0.7" d="M`, color))

		for i := range traj.X[p] {
			x := (traj.X[p][i] - minX) / rangeX * float64(width)
			y := float64(height) - (traj.Y[p][i]-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		// Release point marker.
		x0 := (traj.X[p][0] - minX) / rangeX * float64(width)
		y0 := float64(height) - (traj.Y[p][0]-minY)/rangeY*float64(height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>
`, x0, y0, color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}
