package debug

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"time"

	"parallax-banner/internal/banner"
	"parallax-banner/internal/engine2D"
	"parallax-banner/internal/engine2D/stage"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"
)

type DebugTab int

const (
	TabLayers DebugTab = iota
	TabEngine
	TabPerformance
)

var tabNames = []string{"Layers", "Engine", "Performance"}

// Snapshot is what the overlay shows for one frame.
type Snapshot struct {
	BannerName   string
	BannerIndex  int
	BannerCount  int
	Mode         banner.Mode
	State        engine2D.EngineState
	Compensation float64
	Layers       []engine2D.LayerState
	Elements     []stage.ElementInfo
	Particles    int
	Bounds       rl.Rectangle
	PointerMode  string
}

type DebugOverlay struct {
	ActiveTab         DebugTab
	ShowBoundingBoxes bool

	fontHeight   int
	lineHeight   int
	tabHeight    int
	sidebarWidth int
	font         rl.Font

	lastUpdateTime time.Time
	frameCount     int
	fps            float64
	memStats       runtime.MemStats
}

func NewDebugOverlay() *DebugOverlay {
	d := &DebugOverlay{
		ActiveTab:         TabLayers,
		ShowBoundingBoxes: true,
		lastUpdateTime:    time.Now(),
	}
	d.updateLayout()

	fontPaths := []string{
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	}
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			d.font = rl.LoadFontEx(path, 64, nil, 0)
			rl.SetTextureFilter(d.font.Texture, rl.FilterBilinear)
			break
		}
	}
	return d
}

func (d *DebugOverlay) updateLayout() {
	scale := math.Max(1.0, float64(rl.GetScreenHeight())/1080.0)
	d.fontHeight = int(16 * scale)
	d.lineHeight = int(22 * scale)
	d.tabHeight = int(32 * scale)
	d.sidebarWidth = int(420 * scale)
}

// Update handles tab switching and refreshes the performance counters.
func (d *DebugOverlay) Update() {
	d.updateLayout()

	d.frameCount++
	now := time.Now()
	if now.Sub(d.lastUpdateTime) >= time.Second {
		d.fps = float64(d.frameCount) / now.Sub(d.lastUpdateTime).Seconds()
		d.frameCount = 0
		d.lastUpdateTime = now
		runtime.ReadMemStats(&d.memStats)
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		d.ActiveTab = (d.ActiveTab + 1) % DebugTab(len(tabNames))
	}
	if rl.IsKeyPressed(rl.KeyB) {
		d.ShowBoundingBoxes = !d.ShowBoundingBoxes
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		m := rl.GetMousePosition()
		if int(m.Y) < d.tabHeight && int(m.X) < d.sidebarWidth {
			d.ActiveTab = DebugTab(int(m.X) / (d.sidebarWidth / len(tabNames)))
		}
	}
}

func (d *DebugOverlay) Draw(snap Snapshot) {
	if d.ShowBoundingBoxes {
		d.drawLayerBoundingBoxes(snap)
	}

	sh := int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, int32(d.sidebarWidth), sh, rl.NewColor(0, 0, 0, 200))
	d.drawTabs()

	ui := NewUIContext(10, d.tabHeight+d.lineHeight/2, d.lineHeight, d.fontHeight, d.font)
	switch d.ActiveTab {
	case TabLayers:
		d.drawLayers(ui, snap)
	case TabEngine:
		d.drawEngine(ui, snap)
	case TabPerformance:
		d.drawPerformance(ui)
	}
}

func (d *DebugOverlay) drawTabs() {
	tabWidth := d.sidebarWidth / len(tabNames)
	for i, name := range tabNames {
		color := rl.NewColor(100, 100, 100, 255)
		if d.ActiveTab == DebugTab(i) {
			color = rl.NewColor(150, 150, 150, 255)
		}
		x := int32(i * tabWidth)
		rl.DrawRectangle(x, 0, int32(tabWidth), int32(d.tabHeight), color)
		ui := NewUIContext(int(x)+10, int(float64(d.tabHeight)*0.25), d.lineHeight, d.fontHeight, d.font)
		ui.Label(name)
	}
}

func (d *DebugOverlay) drawLayers(ui *UIContext, snap Snapshot) {
	ui.Header(fmt.Sprintf("Layers (%d)", len(snap.Elements)))
	for i, el := range snap.Elements {
		kind := "image"
		if el.Video {
			kind = "video"
		}
		ui.Label(fmt.Sprintf("#%d %s %s", i, kind, shortName(el.Src)))
		ui.IndentLabel(fmt.Sprintf("size %.0fx%.0f  opacity %.2f", el.Width, el.Height, el.Opacity), 10)
		m := el.Transform
		ui.IndentLabel(fmt.Sprintf("matrix [%.3f %.3f %.3f %.3f %.1f %.1f]", m.A, m.B, m.C, m.D, m.TX, m.TY), 10)
		if i < len(snap.Layers) {
			l := snap.Layers[i]
			ui.IndentLabel(fmt.Sprintf("a %.3f  g %.3f", l.Accel, l.Gravity), 10)
		}
	}
	ui.Separator()
	ui.Label(fmt.Sprintf("Particles drawn: %d", snap.Particles))
}

func (d *DebugOverlay) drawEngine(ui *UIContext, snap Snapshot) {
	ui.Header("Banner:")
	ui.IndentLabel(fmt.Sprintf("%s (%d/%d)", snap.BannerName, snap.BannerIndex+1, snap.BannerCount), 10)
	ui.IndentLabel(fmt.Sprintf("Mode: %s", snap.Mode), 10)
	ui.Separator()

	ui.Header("State:")
	ui.IndentLabel(fmt.Sprintf("Pointer offset: %.1f", snap.State.PointerOffset), 10)
	homing := "idle"
	if snap.State.HomingStart > 0 {
		homing = fmt.Sprintf("since %v", snap.State.HomingStart.Round(time.Millisecond))
	}
	ui.IndentLabel(fmt.Sprintf("Homing: %s", homing), 10)
	ui.IndentLabel(fmt.Sprintf("Frame pending: %v", snap.State.ActiveFrame != 0), 10)
	ui.IndentLabel(fmt.Sprintf("Compensation: %.3f", snap.Compensation), 10)
	ui.IndentLabel(fmt.Sprintf("Pointer source: %s", snap.PointerMode), 10)
	ui.IndentLabel(fmt.Sprintf("Container: %.0fx%.0f at (%.0f, %.0f)", snap.Bounds.Width, snap.Bounds.Height, snap.Bounds.X, snap.Bounds.Y), 10)
}

func (d *DebugOverlay) drawPerformance(ui *UIContext) {
	ui.Header("Timing:")
	ui.IndentLabel(fmt.Sprintf("FPS: %.1f", d.fps), 10)
	ui.IndentLabel(fmt.Sprintf("Frame Time: %.2f ms", rl.GetFrameTime()*1000), 10)
	ui.Separator()

	ui.Header("Memory Usage:")
	ui.IndentLabel(fmt.Sprintf("Allocated: %s", humanize.Bytes(d.memStats.Alloc)), 10)
	ui.IndentLabel(fmt.Sprintf("Heap Alloc: %s", humanize.Bytes(d.memStats.HeapAlloc)), 10)
	ui.IndentLabel(fmt.Sprintf("Process Total: %s", humanize.Bytes(d.memStats.Sys)), 10)
	ui.IndentLabel(fmt.Sprintf("GC cycles: %s", humanize.Comma(int64(d.memStats.NumGC))), 10)
	ui.Separator()

	ui.Header("System:")
	ui.IndentLabel(fmt.Sprintf("Goroutines: %d", runtime.NumGoroutine()), 10)
	ui.IndentLabel(fmt.Sprintf("OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH), 10)
	ui.IndentLabel(fmt.Sprintf("Window: %dx%d", rl.GetScreenWidth(), rl.GetScreenHeight()), 10)
}

func shortName(p string) string {
	const max = 32
	if len(p) <= max {
		return p
	}
	return "..." + p[len(p)-max+3:]
}
