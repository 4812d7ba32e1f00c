package main

import (
	"context"
	"flag"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"parallax-banner/internal/banner"
	"parallax-banner/internal/config"
	"parallax-banner/internal/convert"
	"parallax-banner/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	bannerPath := flag.String("banner", "", "Banner descriptor file or directory (overrides config)")
	pkgPath := flag.String("pkg", "", "Banner bundle to unpack before loading (overrides config)")
	height := flag.Int("height", -1, "Banner strip height in pixels, 0 fills the window (overrides config)")
	pointerMode := flag.String("pointer", "", "Pointer source: window or x11 (overrides config)")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging and the F8 overlay")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	decodePath := flag.String("decode", "", "Decode a single .tex or image file to PNG and exit")
	flag.Parse()

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	cfg, err := config.Load(*configPath, explicitConfig)
	if err != nil {
		utils.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *bannerPath != "" {
		cfg.Banner.Path = *bannerPath
	}
	if *pkgPath != "" {
		cfg.Banner.Pkg = *pkgPath
	}
	if *height >= 0 {
		cfg.Banner.Height = *height
	}
	if *pointerMode != "" {
		cfg.Pointer = *pointerMode
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		utils.Error("Invalid settings: %v", err)
		os.Exit(1)
	}

	level, err := utils.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		utils.Warn("%v, using info", err)
	}
	utils.CurrentLevel = level
	utils.DebugMode = cfg.Debug
	utils.AssetsPath = cfg.AssetsPath
	utils.ExtractDir = cfg.Banner.ExtractDir
	convert.FFmpegPath = cfg.FFmpeg
	convert.FFprobePath = cfg.FFprobe

	if *decodePath != "" {
		runDecode(*decodePath)
		return
	}

	utils.Info("--- Parallax Banner Start ---")

	if cfg.Banner.Pkg != "" {
		if err := unpackBundle(cfg); err != nil {
			utils.Error("Failed to unpack %s: %v", cfg.Banner.Pkg, err)
			os.Exit(1)
		}
		cfg.Banner.Path = cfg.Banner.ExtractDir
	}

	catalog, err := banner.OpenCatalog(cfg.Banner.Path)
	if err != nil {
		utils.Error("Failed to open banners: %v", err)
		os.Exit(1)
	}
	utils.Info("Found %d banner(s) in %s", catalog.Len(), cfg.Banner.Path)

	rl.SetTraceLogCallback(utils.RaylibLogCallback)

	window := NewWindow(cfg, catalog, config.OpenSession("parallax-banner"))
	defer window.Close()

	utils.Info("Starting render loop...")
	window.Run()
}

// unpackBundle extracts the configured bundle once and converts its
// textures so later runs can load them as plain PNGs.
func unpackBundle(cfg *config.Config) error {
	if _, err := os.Stat(cfg.Banner.ExtractDir); err == nil {
		utils.Info("Using previously unpacked bundle in %s", cfg.Banner.ExtractDir)
		return nil
	}

	utils.Info("Unpacking %s...", cfg.Banner.Pkg)
	if err := convert.ExtractPkg(cfg.Banner.Pkg, cfg.Banner.ExtractDir); err != nil {
		return err
	}
	_, err := convert.ConvertTextures(context.Background(), cfg.Banner.ExtractDir, "")
	return err
}

func runDecode(path string) {
	utils.Info("Testing decode: %s", path)
	img, err := convert.DecodeImage(path)
	if err != nil {
		utils.Error("Decode failed: %v", err)
		os.Exit(1)
	}

	if err := os.MkdirAll("test_out", 0755); err != nil {
		utils.Error("Failed to create test_out directory: %v", err)
		os.Exit(1)
	}

	baseName := filepath.Base(path)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	outPath := filepath.Join("test_out", baseName+".png")

	f, err := os.Create(outPath)
	if err != nil {
		utils.Error("Failed to create output file: %v", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		utils.Error("Failed to encode PNG: %v", err)
		os.Exit(1)
	}

	utils.Info("Decode successful! Saved to: %s", outPath)
}
