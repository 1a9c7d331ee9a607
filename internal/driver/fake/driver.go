package fake

import (
	"fmt"
	"io"
	"os"

	"github.com/coreman2200/funtimes-evergreen/internal/render"
)

// Driver prints a compact summary of each frame, useful for headless runs.
type Driver struct {
	Out   io.Writer // stdout when nil
	Every int       // print every Nth frame, 0 prints all
	Count int
}

func (d *Driver) Write(f *render.Frame) error {
	d.Count++
	if d.Every > 1 && d.Count%d.Every != 0 {
		return nil
	}
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	avg := Average(f.Points)
	hl := "-"
	if f.HasHighlight {
		hl = fmt.Sprint(f.Highlighted)
	}
	_, err := fmt.Fprintf(out, "[frame %04d] %s/%s points=%d cards=%d avg=(%.2f,%.2f,%.2f) hl=%s\n",
		f.ID, f.Mode, f.Focus, len(f.Points), len(f.Quads), avg.R, avg.G, avg.B, hl)
	return err
}

func Average(pts []render.Point) render.Color {
	if len(pts) == 0 {
		return render.Color{}
	}
	var r, g, b float64
	for _, p := range pts {
		r += float64(p.Color.R)
		g += float64(p.Color.G)
		b += float64(p.Color.B)
	}
	n := float64(len(pts))
	return render.Color{R: float32(r / n), G: float32(g / n), B: float32(b / n)}
}
