// Package app wires the emulator core to a desktop host: window, keyboard,
// and audio output via ebiten, plus JSON configuration. It has no
// save-state file handling. It is deliberately thin — a narrow harness exercising
// bus.Bus's public API, not a debugger or frontend shell.
package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/logdiag"
	"nesgo/internal/ppu"
)

const sampleRate = 44100

// Application is an ebiten.Game driving one loaded ROM.
type Application struct {
	config *Config
	bus    *bus.Bus
	romPath string

	frameImage *ebiten.Image
	audioCtx   *audio.Context
	audioPlay  *audio.Player
	audioBuf   []float32

	player1 keyBinding
	player2 keyBinding

	paused bool
}

type keyBinding struct {
	up, down, left, right, a, b, start, select_ ebiten.Key
}

// NewApplication creates an Application from the given configuration. The
// caller must still call LoadROM before Run.
func NewApplication(config *Config) *Application {
	if config == nil {
		config = NewConfig()
	}
	app := &Application{
		config:     config,
		bus:        bus.New(),
		frameImage: ebiten.NewImage(ppu.Width, ppu.Height),
	}
	app.player1 = parseKeyBinding(config.Input.Player1Keys)
	app.player2 = parseKeyBinding(config.Input.Player2Keys)

	if config.Audio.Enabled {
		app.audioCtx = audio.NewContext(config.Audio.SampleRate)
		app.bus.APU.SetSampleRate(config.Audio.SampleRate)
		app.audioBuf = make([]float32, 0, config.Audio.BufferSize)
	}

	return app
}

// LoadROM loads a ROM file and resets the system.
func (a *Application) LoadROM(path string) error {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("app: loading %s: %w", path, err)
	}
	a.romPath = path
	a.bus.Load(cart)
	a.bus.PPU.PAL(a.config.Emulation.Region == "PAL")
	a.bus.Reset(true)
	return nil
}

// GetBus exposes the underlying system bus, for headless drivers that want
// to step it directly instead of through the ebiten game loop.
func (a *Application) GetBus() *bus.Bus {
	return a.bus
}

// Run starts the ebiten game loop. It blocks until the window is closed.
func (a *Application) Run() error {
	w, h := a.config.GetWindowResolution()
	ebiten.SetWindowTitle(fmt.Sprintf("nesgo - %s", a.romPath))
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(a.config.Video.VSync)
	if a.config.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}
	return ebiten.RunGame(a)
}

// Update implements ebiten.Game. It samples input, drives one frame of
// emulation, and feeds the audio ring into the ebiten audio player.
func (a *Application) Update() error {
	if inpututilPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututilPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if a.paused {
		return nil
	}

	a.bus.SetInput(a.player1.sample(), a.player2.sample())
	a.bus.StepFrame()

	if reason := a.bus.PollBreakReason(); reason != "" {
		logdiag.Warnf("app: %s", reason)
	}

	if a.audioCtx != nil {
		a.pumpAudio()
	}

	return nil
}

// Draw implements ebiten.Game, blitting the core's framebuffer scaled to
// fill the window with one uniform scale factor, keeping the 256:240
// framebuffer's shape and centering it with black bars.
func (a *Application) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	fb := a.bus.FrameBuffer()
	pix := make([]byte, ppu.Width*ppu.Height*4)
	for i, px := range fb {
		pix[i*4+0] = byte(px >> 16)
		pix[i*4+1] = byte(px >> 8)
		pix[i*4+2] = byte(px)
		pix[i*4+3] = 0xFF
	}
	a.frameImage.WritePixels(pix)

	bounds := screen.Bounds()
	scaleX := float64(bounds.Dx()) / float64(ppu.Width)
	scaleY := float64(bounds.Dy()) / float64(ppu.Height)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	offsetX := (float64(bounds.Dx()) - float64(ppu.Width)*scale) / 2
	offsetY := (float64(bounds.Dy()) - float64(ppu.Height)*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(a.frameImage, op)
}

// Layout implements ebiten.Game.
func (a *Application) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// pumpAudio drains the core's audio ring and feeds it to an ebiten stream
// player, starting the player lazily once enough samples have queued.
func (a *Application) pumpAudio() {
	buf := a.audioBuf[:cap(a.audioBuf)]
	n := a.bus.PullAudio(buf)
	if n == 0 {
		return
	}
	pcm := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := buf[i]
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}
	if a.audioPlay == nil {
		a.audioPlay = a.audioCtx.NewPlayerF32(&monoStream{})
		a.audioPlay.SetVolume(float64(a.config.Audio.Volume))
		a.audioPlay.Play()
	}
}

// AddGenieCode activates a Game Genie code on the running system.
func (a *Application) AddGenieCode(code string) (string, error) {
	return a.bus.AddGenieCode(code)
}

// RemoveGenieCode deactivates a previously added Game Genie code.
func (a *Application) RemoveGenieCode(code string) {
	a.bus.RemoveGenieCode(code)
}

func inpututilPressed(key ebiten.Key) bool {
	return ebiten.IsKeyPressed(key)
}

func (k keyBinding) sample() [8]bool {
	return [8]bool{
		ebiten.IsKeyPressed(k.a),
		ebiten.IsKeyPressed(k.b),
		ebiten.IsKeyPressed(k.select_),
		ebiten.IsKeyPressed(k.start),
		ebiten.IsKeyPressed(k.up),
		ebiten.IsKeyPressed(k.down),
		ebiten.IsKeyPressed(k.left),
		ebiten.IsKeyPressed(k.right),
	}
}

func parseKeyBinding(m KeyMapping) keyBinding {
	return keyBinding{
		up:      keyByName(m.Up, ebiten.KeyArrowUp),
		down:    keyByName(m.Down, ebiten.KeyArrowDown),
		left:    keyByName(m.Left, ebiten.KeyArrowLeft),
		right:   keyByName(m.Right, ebiten.KeyArrowRight),
		a:       keyByName(m.A, ebiten.KeyJ),
		b:       keyByName(m.B, ebiten.KeyK),
		start:   keyByName(m.Start, ebiten.KeyEnter),
		select_: keyByName(m.Select, ebiten.KeySpace),
	}
}

// keyByName resolves a config key name to an ebiten.Key, falling back to
// fallback for anything it doesn't recognize.
func keyByName(name string, fallback ebiten.Key) ebiten.Key {
	switch name {
	case "Up":
		return ebiten.KeyArrowUp
	case "Down":
		return ebiten.KeyArrowDown
	case "Left":
		return ebiten.KeyArrowLeft
	case "Right":
		return ebiten.KeyArrowRight
	case "Return", "Enter":
		return ebiten.KeyEnter
	case "Space":
		return ebiten.KeySpace
	case "RShift":
		return ebiten.KeyShiftRight
	case "LShift":
		return ebiten.KeyShiftLeft
	case "RCtrl":
		return ebiten.KeyControlRight
	case "LCtrl":
		return ebiten.KeyControlLeft
	case "W":
		return ebiten.KeyW
	case "A":
		return ebiten.KeyA
	case "S":
		return ebiten.KeyS
	case "D":
		return ebiten.KeyD
	case "J":
		return ebiten.KeyJ
	case "K":
		return ebiten.KeyK
	case "N":
		return ebiten.KeyN
	case "M":
		return ebiten.KeyM
	default:
		return fallback
	}
}
