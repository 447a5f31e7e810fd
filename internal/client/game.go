package client

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	coresys "github.com/farmgame/client/internal/core/system"
	"github.com/farmgame/client/internal/ui"
	"github.com/farmgame/client/internal/world"
)

var (
	background  = color.RGBA{R: 0x5a, G: 0x8f, B: 0x3c, A: 0xff}
	gridLine    = color.RGBA{R: 0x4e, G: 0x7d, B: 0x34, A: 0xff}
	playerColor = color.RGBA{R: 0x3b, G: 0x6e, B: 0xd8, A: 0xff}
	panelColor  = color.RGBA{R: 0x20, G: 0x20, B: 0x28, A: 0xc0}
)

// Options wires the host to the running game.
type Options struct {
	Title   string
	Step    time.Duration // fixed simulation step
	Runner  *coresys.Runner
	Camera  *Camera
	Router  *PointerRouter
	UI      *ui.Manager
	Maps    *world.MapManager
	Players *world.PlayerManager
	Npcs    *world.NpcManager
	Log     *zap.Logger
}

// Game implements ebiten.Game. Ebiten calls Update at the fixed tick rate,
// so each Update is exactly one runner tick.
type Game struct {
	opts Options
	log  *zap.Logger
}

func NewGame(opts Options) *Game {
	if opts.Step <= 0 {
		opts.Step = time.Second / 60
	}
	return &Game{opts: opts, log: opts.Log.Named("client")}
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	w, h := g.opts.Camera.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(g.opts.Title)
	ebiten.SetTPS(int(time.Second / g.opts.Step))
	g.log.Info("window opened", zap.Int("width", w), zap.Int("height", h))
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		res := g.opts.Router.Click(x, y)
		g.log.Debug("click", zap.Int("x", x), zap.Int("y", y), zap.Stringer("result", res))
	}
	g.opts.Runner.Tick(g.opts.Step)
	if p := g.opts.Players.Player(); p != nil {
		g.opts.Camera.Follow(p.Movable.Position())
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.drawGrid(screen)
	g.drawNpcs(screen)
	g.drawPlayer(screen)
	g.drawPanels(screen)
	ebitenutil.DebugPrint(screen, g.status())
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.opts.Camera.Size()
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	if !g.opts.Maps.Loaded() {
		return
	}
	cam := g.opts.Camera
	w, h := cam.Size()
	tile := g.opts.Maps.Grid().TileSize()
	step := float32(tile * cam.PixelsPerUnit)
	if step < 4 {
		return
	}
	mapper := g.opts.Maps.Grid()
	origin := mapper.GridToPlane(mapper.PlaneToGrid(cam.ScreenToPlane(0, 0)))
	ox, oy := cam.PlaneToScreen(origin)
	x0 := float32(ox) - step/2
	y0 := float32(oy) - step/2
	for x := x0; x < float32(w); x += step {
		vector.StrokeLine(screen, x, 0, x, float32(h), 1, gridLine, false)
	}
	for y := y0; y < float32(h); y += step {
		vector.StrokeLine(screen, 0, y, float32(w), y, 1, gridLine, false)
	}
}

func (g *Game) drawNpcs(screen *ebiten.Image) {
	cam := g.opts.Camera
	r := float32(cam.PixelsPerUnit * 0.35)
	g.opts.Npcs.Each(func(n *world.Npc) {
		pos := n.Movable.Position()
		if !cam.Visible(pos, float64(r)) {
			return
		}
		x, y := cam.PlaneToScreen(pos)
		vector.DrawFilledCircle(screen, float32(x), float32(y), r, n.Instance.Tint, true)
		if n.Speech != "" {
			ebitenutil.DebugPrintAt(screen, n.Speech, int(x)-len(n.Speech)*3, int(y-float64(r))-16)
		}
	})
}

func (g *Game) drawPlayer(screen *ebiten.Image) {
	p := g.opts.Players.Player()
	if p == nil {
		return
	}
	cam := g.opts.Camera
	x, y := cam.PlaneToScreen(p.Movable.Position())
	r := float32(cam.PixelsPerUnit * 0.4)
	vector.DrawFilledCircle(screen, float32(x), float32(y), r, playerColor, true)
	f := p.Movable.Facing()
	vector.StrokeLine(screen, float32(x), float32(y),
		float32(x+f.X*float64(r)*1.5), float32(y-f.Y*float64(r)*1.5), 2, color.White, true)
}

func (g *Game) drawPanels(screen *ebiten.Image) {
	for _, p := range g.opts.UI.Visible() {
		r := p.Rect
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), panelColor, false)
		ebitenutil.DebugPrintAt(screen, p.Name, r.Min.X+4, r.Min.Y+4)
	}
}

func (g *Game) status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TPS %.0f  map %s  npcs %d\n", ebiten.ActualTPS(), g.opts.Maps.Name(), g.opts.Npcs.Count())
	if p := g.opts.Players.Player(); p != nil {
		pos := p.Movable.Position()
		fmt.Fprintf(&b, "player (%.2f, %.2f) moving=%v\n", pos.X, pos.Y, p.Movable.IsMoving())
	}
	return b.String()
}
