package gui

import (
	"errors"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/birdsim/internal/dynamo"
	"github.com/san-kum/birdsim/internal/sim"
)

const (
	hudHeight         = 80
	telemetryCapacity = 200
)

var (
	ColBg      = rl.NewColor(245, 245, 240, 255)
	ColText    = rl.NewColor(60, 60, 60, 255)
	ColTextDim = rl.NewColor(150, 150, 150, 255)
	ColAccent  = rl.NewColor(30, 120, 200, 255)
	ColBand    = rl.NewColor(30, 200, 120, 60)
)

const fontPath = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"

type App struct {
	Flock     *sim.Flock
	Window    *Window
	Running   bool
	Initial   int
	Telemetry []float64 // measured fps
	Font      rl.Font
	Notice    string // outcome of the last population key
}

func (a *App) setNotice(err error) {
	switch {
	case err == nil:
		a.Notice = ""
	case errors.Is(err, dynamo.ErrCapacityExceeded):
		a.Notice = "FULL"
	default:
		a.Notice = err.Error()
	}
}

func initWindow(w *Window) {
	width, height := w.Size()
	rl.InitWindow(int32(width), int32(height)+hudHeight, "birdsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont falls back to the raylib default when the system font is missing.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens the window and animates f until the window is closed. The flock
// must have been built on w.
func Run(f *sim.Flock, w *Window) {
	initWindow(w)
	defer rl.CloseWindow()

	app := &App{
		Flock:     f,
		Window:    w,
		Running:   true,
		Initial:   f.Len(),
		Telemetry: make([]float64, 0, telemetryCapacity),
		Font:      loadFont(),
	}
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		a.Running = !a.Running
		if a.Running {
			a.Flock.Resume()
		}
	case rl.IsKeyPressed(rl.KeyR):
		err := a.Flock.Shrink(a.Flock.Len())
		if err == nil {
			err = a.Flock.Grow(a.Initial)
		}
		a.setNotice(err)
		a.Flock.Resume()
		a.Telemetry = a.Telemetry[:0]
	case rl.IsKeyPressed(rl.KeyUp):
		a.setNotice(a.Flock.Grow(max(1, a.Flock.Len()/10)))
	case rl.IsKeyPressed(rl.KeyDown):
		a.setNotice(a.Flock.Shrink(max(1, a.Flock.Len()/10)))
	}

	if !a.Running {
		return
	}
	fr := a.Flock.Tick(rl.GetTime() * 1000)
	if fr.Measured {
		if len(a.Telemetry) == telemetryCapacity {
			a.Telemetry = append(a.Telemetry[:0], a.Telemetry[1:]...)
		}
		a.Telemetry = append(a.Telemetry, fr.FPS)
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.Window.Draw()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawHUD() {
	_, h := a.Window.Size()
	top := int(h) + 10
	ctrl := a.Flock.Controller()

	status, col := "RUNNING", ColAccent
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 20, top, 16, col)
	a.drawText(fmt.Sprintf("birds %d", a.Flock.Len()), 140, top, 16, ColText)
	if a.Notice != "" {
		a.drawText(a.Notice, 140, top+20, 14, ColAccent)
	}
	a.drawText(fmt.Sprintf("fps %.1f", ctrl.LastFPS()), 300, top, 16, ColText)
	a.drawText(a.Flock.Integrator().Name(), 440, top, 16, ColTextDim)
	a.drawText("[SPACE] START/STOP  [UP/DOWN] BIRDS  [R] RESET  [Q] QUIT", 20, top+40, 14, ColTextDim)

	a.DrawTelemetry(600, top, 300, 50)
}

// DrawTelemetry plots measured fps against the controller band.
func (a *App) DrawTelemetry(x, y, width, height int) {
	cfg := a.Flock.Controller().Config()
	lo, hi := cfg.Min/2, cfg.Max*2

	scale := func(v float64) float32 {
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		return float32(y+height) - float32((v-lo)/(hi-lo))*float32(height)
	}

	bandTop, bandBottom := scale(cfg.Max), scale(cfg.Min)
	rl.DrawRectangle(int32(x), int32(bandTop), int32(width), int32(bandBottom-bandTop), ColBand)

	if len(a.Telemetry) < 2 {
		return
	}
	points := make([]rl.Vector2, len(a.Telemetry))
	for i, v := range a.Telemetry {
		px := float32(x) + float32(i)/float32(len(a.Telemetry)-1)*float32(width)
		points[i] = rl.NewVector2(px, scale(v))
	}
	rl.DrawLineStrip(points, ColAccent)
}
