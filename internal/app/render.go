package app

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/mdview/internal/paint"
	"github.com/kk-code-lab/mdview/internal/textutil"
)

var (
	statusStyle = tcell.StyleDefault.Reverse(true)
	errorStyle  = tcell.StyleDefault.Foreground(tcell.ColorMaroon).Reverse(true)
)

// render paints the visible slice, the status line and then the images, which
// go straight to the terminal after tcell has flushed its cells.
func (app *Application) render() paint.Frame {
	vp := app.view.Viewport()
	frame := app.comp.Paint(vp, app.view.Lines())
	frame.Buffer.Blit(app.screen, 0, 0)

	_, h := app.screen.Size()
	if h > vp.Height {
		app.drawStatus(vp.Height, vp.Width)
	}
	app.screen.Show()

	if app.gfx != nil {
		if err := app.gfx.Draw(frame.Placements, frame.Evicted, 0, 0); err != nil {
			app.log.Debug("drawing images failed", "err", err)
		}
	}
	return frame
}

func (app *Application) drawStatus(row, width int) {
	left, right := app.statusText()
	st := statusStyle
	if app.lastErr != nil {
		left = app.lastErr.Error()
		st = errorStyle
	}

	rightWidth := textutil.DisplayWidth(right)
	leftMax := width - rightWidth - 1
	if leftMax < 0 {
		leftMax = 0
	}
	left, _ = textutil.TruncateToWidth(textutil.Sanitize(left), leftMax, "…")

	for x := 0; x < width; x++ {
		app.screen.SetContent(x, row, ' ', nil, st)
	}
	drawString(app.screen, 0, row, left, st)
	if rightWidth < width {
		drawString(app.screen, width-rightWidth, row, right, st)
	}
}

// statusText returns the file name and the position summary
// "start-end/total pct%".
func (app *Application) statusText() (string, string) {
	title := app.opts.Title
	if title == "" && app.opts.Path != "" {
		title = filepath.Base(app.opts.Path)
	}
	start, end := app.view.Visible()
	total := app.view.Total()
	if end > start {
		start++
	}
	pct := int(math.Round(app.view.Fraction() * 100))
	right := fmt.Sprintf("%d-%d/%d %3d%%", start, end, total, pct)
	if vp := app.view.Viewport(); vp.HOffset > 0 {
		right = fmt.Sprintf("→%d %s", vp.HOffset, right)
	}
	return " " + title, right + " "
}

func drawString(screen tcell.Screen, x, y int, text string, st tcell.Style) {
	textutil.EachCluster(text, func(cluster string, width int) bool {
		runes := []rune(cluster)
		screen.SetContent(x, y, runes[0], runes[1:], st)
		x += width
		return true
	})
}
