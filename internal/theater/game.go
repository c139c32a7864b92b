package theater

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"pyviz/internal/object"
	"pyviz/internal/visualizer"
)

const (
	screenW = 1100
	screenH = 700

	sourcePaneW = 420
	lineH       = 16
	cellH       = 18
	boxPad      = 8
)

var (
	colBack      = color.RGBA{R: 24, G: 26, B: 32, A: 255}
	colPane      = color.RGBA{R: 32, G: 35, B: 43, A: 255}
	colHighlight = color.RGBA{R: 66, G: 104, B: 56, A: 255}
	colScope     = color.RGBA{R: 44, G: 49, B: 60, A: 255}
	colScopeRec  = color.RGBA{R: 60, G: 49, B: 44, A: 255}
	colCell      = color.RGBA{R: 56, G: 62, B: 76, A: 255}
	colChars     = color.RGBA{R: 76, G: 62, B: 56, A: 255}
	colOutput    = color.RGBA{R: 38, G: 43, B: 38, A: 255}
)

type Options struct {
	Title string
	Speed time.Duration
}

// Game drives the Visualizer from the ebiten update loop: one Step per
// speed interval. Space pauses; the right arrow single-steps while paused.
type Game struct {
	theater *Theater
	vis     *visualizer.Visualizer
	lines   []string
	speed   time.Duration
	elapsed time.Duration
	paused  bool
	done    bool
}

// Run opens the window and plays the program. It blocks until the window
// closes.
func Run(src string, vis *visualizer.Visualizer, theater *Theater, opts Options) error {
	title := opts.Title
	if title == "" {
		title = "pyviz"
	}
	speed := opts.Speed
	if speed <= 0 {
		speed = 600 * time.Millisecond
	}
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle(title)
	g := &Game{
		theater: theater,
		vis:     vis,
		lines:   strings.Split(strings.ReplaceAll(src, "\t", "    "), "\n"),
		speed:   speed,
	}
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.done {
		return nil
	}
	if g.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
			g.done = !g.vis.Step()
		}
		return nil
	}
	g.elapsed += time.Second / time.Duration(ebiten.TPS())
	if g.elapsed >= g.speed {
		g.elapsed = 0
		g.done = !g.vis.Step()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBack)
	g.drawSource(screen)
	g.drawScopes(screen)
	g.drawOutput(screen)
	g.drawStatus(screen)
}

func (g *Game) Layout(int, int) (int, int) {
	return screenW, screenH
}

func (g *Game) drawSource(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, sourcePaneW, screenH, colPane, false)
	for i, line := range g.lines {
		y := boxPad + i*lineH
		if i+1 == g.theater.highlight {
			vector.DrawFilledRect(screen, 0, float32(y-2), sourcePaneW, lineH, colHighlight, false)
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%3d  %s", i+1, line), boxPad, y)
	}
}

func (g *Game) drawScopes(screen *ebiten.Image) {
	x := sourcePaneW + boxPad
	y := boxPad
	for _, box := range g.theater.openScopes() {
		indent := box.level * 16
		header := box.name
		if box.name != visualizer.ModuleFrameName {
			header = fmt.Sprintf("Scope: %s(%s)", box.name, box.args)
		}
		boxH := cellH*(len(box.vars)+1) + boxPad
		bg := colScope
		if box.level > 1 {
			bg = colScopeRec
		}
		vector.DrawFilledRect(screen, float32(x+indent), float32(y), float32(screenW-x-indent-boxPad), float32(boxH), bg, false)
		ebitenutil.DebugPrintAt(screen, header, x+indent+boxPad, y+2)
		for i, cell := range box.vars {
			cy := y + cellH*(i+1) + 2
			cc := colCell
			if cell.shape == object.ShapeChars || cell.shape == object.ShapeSequence {
				cc = colChars
			}
			vector.DrawFilledRect(screen, float32(x+indent+boxPad), float32(cy-2), float32(screenW-x-indent-3*boxPad), cellH-2, cc, false)
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s = %s", cell.name, cell.value), x+indent+2*boxPad, cy)
		}
		y += boxH + boxPad
	}
}

func (g *Game) drawOutput(screen *ebiten.Image) {
	const outH = 150
	top := screenH - outH
	vector.DrawFilledRect(screen, sourcePaneW, float32(top), screenW-sourcePaneW, outH, colOutput, false)
	ebitenutil.DebugPrintAt(screen, "Output", sourcePaneW+boxPad, top+2)
	lines := g.theater.outputs
	maxLines := (outH - lineH - boxPad) / lineH
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	for i, out := range lines {
		ebitenutil.DebugPrintAt(screen, out.text, sourcePaneW+boxPad, top+lineH+boxPad/2+i*lineH)
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	status := "running"
	switch {
	case g.vis.Aborted():
		status = "error: " + g.vis.Err().At()
	case g.vis.Finished():
		status = fmt.Sprintf("finished (%d steps)", g.vis.StepsUsed())
	case g.paused:
		status = "paused (right arrow to step, space to resume)"
	}
	if g.vis.Approximate() {
		status += "  ~approximate"
	}
	ebitenutil.DebugPrintAt(screen, status, boxPad, screenH-lineH-2)
	for i, ev := range g.theater.events {
		ebitenutil.DebugPrintAt(screen, ev, sourcePaneW+boxPad, screenH-150-lineH*(len(g.theater.events)-i)-boxPad)
	}
}
