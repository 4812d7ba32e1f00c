package main

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"parallax-banner/internal/banner"
	"parallax-banner/internal/config"
	"parallax-banner/internal/convert"
	"parallax-banner/internal/debug"
	"parallax-banner/internal/engine2D"
	"parallax-banner/internal/engine2D/frame"
	"parallax-banner/internal/engine2D/stage"
	"parallax-banner/internal/input"
	"parallax-banner/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type Window struct {
	cfg     *config.Config
	catalog *banner.Catalog
	session *config.Session

	stage          *stage.Stage
	engine         *engine2D.Engine
	frames         *frame.Scheduler
	particleFrames *frame.Scheduler
	windowEvents   *input.Dispatcher
	tracker        *input.Tracker
	pointer        *utils.GlobalPointer

	debugOverlay *debug.DebugOverlay
	startTime    time.Time
	snapshotNext bool
	closed       bool
}

func NewWindow(cfg *config.Config, catalog *banner.Catalog, session *config.Session) *Window {
	var flags uint32 = rl.FlagWindowResizable
	if cfg.Window.Undecorated {
		flags |= rl.FlagWindowUndecorated
	}
	if cfg.Window.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), cfg.Window.Title)
	rl.SetTargetFPS(int32(cfg.Window.FPS))

	containerEvents := input.NewDispatcher()
	windowEvents := input.NewDispatcher()

	st := stage.NewStage(containerEvents)
	st.UpdateViewport(rl.GetScreenWidth(), rl.GetScreenHeight(), cfg.Banner.Height)

	window := &Window{
		cfg:            cfg,
		catalog:        catalog,
		session:        session,
		stage:          st,
		frames:         frame.NewScheduler(),
		particleFrames: frame.NewScheduler(),
		windowEvents:   windowEvents,
		tracker:        input.NewTracker(containerEvents, windowEvents, st.Bounds()),
		startTime:      time.Now(),
	}

	if cfg.Pointer == config.PointerX11 {
		pointer, err := utils.NewGlobalPointer()
		if err != nil {
			utils.Warn("X11 pointer unavailable, using window cursor: %v", err)
		} else {
			window.pointer = pointer
		}
	}

	// The stage must see the new size before the engine's own resize
	// handler reads it.
	windowEvents.On(input.Resize, func(ev input.Event) {
		st.UpdateViewport(int(ev.Width), int(ev.Height), cfg.Banner.Height)
		window.tracker.Bounds = st.Bounds()
	})

	window.engine = engine2D.NewEngine(engine2D.Options{
		Container:      st,
		Media:          st,
		Window:         windowEvents,
		Frames:         window.frames,
		ParticleFrames: window.particleFrames,
		Decode:         decodeSprite,
		Rand:           rand.Float64,
		BaseWidth:      cfg.Banner.BaseWidth,
		HomingDuration: cfg.Homing(),
	})
	window.engine.Start()

	if cfg.Debug {
		window.debugOverlay = debug.NewDebugOverlay()
	}

	window.restoreSession()
	window.loadCurrent()
	return window
}

func decodeSprite(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := convert.DecodeImage(src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

func (window *Window) restoreSession() {
	state := window.session.State()
	if state.BannerName != "" && window.catalog.Find(state.BannerName) {
		return
	}
	window.catalog.Seek(state.BannerIndex)
}

func (window *Window) loadCurrent() {
	desc, err := window.catalog.Load()
	if err != nil {
		utils.Error("Failed to load banner %s: %v", window.catalog.Path(), err)
		desc = banner.Descriptor{Name: window.catalog.Name()}
	}
	utils.Info("Banner %d/%d: %s (%s)", window.catalog.Index()+1, window.catalog.Len(), window.catalog.Name(), desc.Mode)
	window.engine.UpdateData(desc)

	window.session.SetBanner(window.catalog.Index(), window.catalog.Name())
	if err := window.session.Save(); err != nil {
		utils.Warn("%v", err)
	}
}

func (window *Window) Run() {
	for !rl.WindowShouldClose() {
		window.Update()

		rl.BeginDrawing()
		window.Draw()
		if window.snapshotNext {
			window.snapshotNext = false
			window.saveSnapshot()
		}
		rl.EndDrawing()
	}
}

func (window *Window) Update() {
	window.tracker.Poll(window.sample())
	window.stage.SetPaused(rl.IsWindowMinimized())

	now := time.Since(window.startTime)
	window.frames.Tick(now)
	window.particleFrames.Tick(now)

	if rl.IsKeyPressed(rl.KeyF8) {
		utils.ShowDebugUI = !utils.ShowDebugUI
	}
	if rl.IsKeyPressed(rl.KeyPageDown) {
		window.catalog.Next()
		window.loadCurrent()
	}
	if rl.IsKeyPressed(rl.KeyPageUp) {
		window.catalog.Prev()
		window.loadCurrent()
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		window.snapshotNext = true
	}

	if utils.ShowDebugUI && window.debugOverlay != nil {
		window.debugOverlay.Update()
	}
}

// sample reads the pointer from raylib, or from the X11 root window when
// the banner sits behind other windows and gets no cursor events.
func (window *Window) sample() input.Sample {
	mouse := rl.GetMousePosition()
	s := input.Sample{
		X:            float64(mouse.X),
		Y:            float64(mouse.Y),
		OnWindow:     rl.IsCursorOnScreen(),
		Focused:      rl.IsWindowFocused(),
		WindowWidth:  float64(rl.GetScreenWidth()),
		WindowHeight: float64(rl.GetScreenHeight()),
	}

	if window.pointer != nil {
		rootX, rootY, err := window.pointer.Position()
		if err != nil {
			utils.Warn("X11 pointer query failed, falling back to window cursor: %v", err)
			window.pointer.Close()
			window.pointer = nil
			return s
		}
		pos := rl.GetWindowPosition()
		s.X = float64(rootX) - float64(pos.X)
		s.Y = float64(rootY) - float64(pos.Y)
		s.OnWindow = s.X >= 0 && s.Y >= 0 && s.X < s.WindowWidth && s.Y < s.WindowHeight
		// The desktop never focuses the banner, so blur must not end tracking.
		s.Focused = true
	}
	return s
}

func (window *Window) Draw() {
	rl.ClearBackground(rl.Black)
	window.stage.Draw()

	if utils.ShowDebugUI && window.debugOverlay != nil {
		window.debugOverlay.Draw(window.snapshot())
	}
}

func (window *Window) snapshot() debug.Snapshot {
	return debug.Snapshot{
		BannerName:   window.catalog.Name(),
		BannerIndex:  window.catalog.Index(),
		BannerCount:  window.catalog.Len(),
		Mode:         window.engine.Mode(),
		State:        window.engine.State(),
		Compensation: window.engine.Compensation(),
		Layers:       window.engine.Layers(),
		Elements:     window.stage.Elements(),
		Particles:    window.stage.ParticleCount(),
		Bounds:       window.stage.Rect,
		PointerMode:  window.pointerMode(),
	}
}

func (window *Window) pointerMode() string {
	if window.pointer != nil {
		return config.PointerX11
	}
	return config.PointerWindow
}

// saveSnapshot grabs the framebuffer before it is presented and encodes it
// off the render loop.
func (window *Window) saveSnapshot() {
	screen := rl.LoadImageFromScreen()
	img := screen.ToImage()
	rl.UnloadImage(screen)

	dir := window.cfg.SnapshotDir
	name := fmt.Sprintf("%s-%s.webp", window.catalog.Name(), time.Now().Format("20060102-150405"))
	go func() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			utils.Error("Failed to create snapshot directory: %v", err)
			return
		}
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			utils.Error("Failed to create snapshot: %v", err)
			return
		}
		defer f.Close()
		if err := convert.EncodeWebP(f, img); err != nil {
			utils.Error("Failed to encode snapshot: %v", err)
			return
		}
		utils.Info("Snapshot saved to %s", path)
	}()
}

// Close tears the banner down and remembers the selection.
func (window *Window) Close() {
	if window.closed {
		return
	}
	window.closed = true

	window.engine.Destroy()
	if err := window.session.Save(); err != nil {
		utils.Warn("%v", err)
	}
	if window.pointer != nil {
		window.pointer.Close()
	}
	rl.CloseWindow()
}
