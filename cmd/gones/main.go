// Package main implements the nesgo NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"nesgo/internal/app"
	"nesgo/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to NES ROM file")
		configFile  = flag.String("config", "", "Path to configuration file")
		nogui       = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		frames      = flag.Int("frames", 120, "Frames to run in headless mode")
		screenshot  = flag.String("screenshot", "", "Headless mode: dump the final frame as a PPM to this path")
		genieCode   = flag.String("genie", "", "Comma-separated Game Genie codes to apply on load")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	fmt.Println("nesgo starting...")

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application := app.NewApplication(config)

	if *romFile == "" {
		log.Fatal("a ROM file is required: -rom <file>")
	}
	fmt.Printf("loading ROM: %s\n", *romFile)
	if err := application.LoadROM(*romFile); err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}
	fmt.Println("ROM loaded")

	if *genieCode != "" {
		applyGenieCodes(application, *genieCode)
	}

	if *nogui {
		runHeadlessMode(application, *frames, *screenshot)
	} else {
		if err := application.Run(); err != nil {
			log.Fatalf("GUI mode failed: %v", err)
		}
	}

	fmt.Println("nesgo shutting down")
}

// applyGenieCodes activates every comma-separated Game Genie code.
func applyGenieCodes(application *app.Application, codes string) {
	start := 0
	for i := 0; i <= len(codes); i++ {
		if i == len(codes) || codes[i] == ',' {
			code := codes[start:i]
			start = i + 1
			if code == "" {
				continue
			}
			canonical, err := application.AddGenieCode(code)
			if err != nil {
				log.Printf("genie code %q rejected: %v", code, err)
				continue
			}
			fmt.Printf("applied Game Genie code %s\n", canonical)
		}
	}
}

// runHeadlessMode drives the emulator through the Core->host API directly
// (StepFrame + PullAudio), without a window, for scripted or automated runs.
func runHeadlessMode(application *app.Application, frameCount int, screenshotPath string) {
	bus := application.GetBus()
	audioBuf := make([]float32, 4096)

	fmt.Printf("running %d frames headless...\n", frameCount)
	for frame := 0; frame < frameCount; frame++ {
		bus.StepFrame()
		for bus.PullAudio(audioBuf) > 0 {
			// drain the audio ring so it doesn't pressure-drop mid-run
		}
		if reason := bus.PollBreakReason(); reason != "" {
			fmt.Printf("stopped at frame %d: %s\n", frame, reason)
			break
		}
	}
	fmt.Println("headless run complete")

	if screenshotPath != "" {
		if err := saveFrameBufferAsPPM(bus.FrameBuffer(), screenshotPath); err != nil {
			log.Printf("failed to write screenshot: %v", err)
		} else {
			fmt.Printf("wrote final frame to %s\n", screenshotPath)
		}
	}
}

// saveFrameBufferAsPPM writes the frame buffer as a plain-text PPM image.
func saveFrameBufferAsPPM(frameBuffer *[256 * 240]uint32, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n256 240\n255\n")
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			pixel := frameBuffer[y*256+x]
			r := (pixel >> 16) & 0xFF
			g := (pixel >> 8) & 0xFF
			b := pixel & 0xFF
			fmt.Fprintf(file, "%d %d %d ", r, g, b)
		}
		fmt.Fprintf(file, "\n")
	}
	return nil
}

// setupGracefulShutdown sets up signal handling for graceful shutdown.
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\ninterrupt received, shutting down")
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("nesgo - a cycle-accurate NES emulator core")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesgo -rom <file> [options]        # Start with ROM loaded")
	fmt.Println("  nesgo -nogui -rom <file> [options] # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  nesgo -rom game.nes")
	fmt.Println("  nesgo -nogui -rom game.nes -frames 600 -screenshot out.ppm")
	fmt.Println("  nesgo -rom game.nes -genie AEZPZYVE")
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  Player 1:")
	fmt.Println("    W/A/S/D - D-Pad")
	fmt.Println("    J       - A Button")
	fmt.Println("    K       - B Button")
	fmt.Println("    Enter   - Start")
	fmt.Println("    Space   - Select")
	fmt.Println("  P         - Pause")
	fmt.Println("  Escape    - Quit")
}
