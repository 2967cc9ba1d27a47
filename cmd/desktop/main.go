package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

const statusHeight = 16

// Hack keyboard codes for keys that have no printable character.
var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:      128,
	ebiten.KeyBackspace:  129,
	ebiten.KeyArrowLeft:  130,
	ebiten.KeyArrowUp:    131,
	ebiten.KeyArrowRight: 132,
	ebiten.KeyArrowDown:  133,
	ebiten.KeyHome:       134,
	ebiten.KeyEnd:        135,
	ebiten.KeyPageUp:     136,
	ebiten.KeyPageDown:   137,
	ebiten.KeyInsert:     138,
	ebiten.KeyDelete:     139,
	ebiten.KeyEscape:     140,
	ebiten.KeyF1:         141,
	ebiten.KeyF2:         142,
	ebiten.KeyF3:         143,
	ebiten.KeyF4:         144,
	ebiten.KeyF5:         145,
	ebiten.KeyF6:         146,
	ebiten.KeyF7:         147,
	ebiten.KeyF8:         148,
	ebiten.KeyF9:         149,
	ebiten.KeyF10:        150,
	ebiten.KeyF11:        151,
	ebiten.KeyF12:        152,
}

type Game struct {
	vm            *cpu.CPU
	program       []uint16
	stepsPerFrame int
	snapshotPath  string

	screenImg *ebiten.Image // reused 512×256 canvas
	key       uint16
	paused    bool
	status    string
}

// runFrame advances the machine by one frame's worth of instructions.
func (g *Game) runFrame() {
	if g.paused || g.vm.Halted {
		return
	}
	g.vm.Run(g.stepsPerFrame)
}

// pressKey latches the code the program sees in KBD. The code stays until
// every key is released.
func (g *Game) pressKey(code uint16) {
	g.key = code
	g.vm.SetKey(code)
}

func (g *Game) releaseKeys() {
	g.key = 0
	g.vm.SetKey(0)
}

func (g *Game) reset() {
	if err := g.vm.Load(g.program); err != nil {
		g.status = err.Error()
		return
	}
	g.vm.RAM = [cpu.RAMSize]uint16{}
	g.status = "reset"
}

func (g *Game) handleHotkeys() bool {
	if !ebiten.IsKeyPressed(ebiten.KeyControl) {
		return false
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		if err := g.vm.HibernateToFile(g.snapshotPath); err != nil {
			g.status = err.Error()
		} else {
			g.status = "saved " + g.snapshotPath
		}
	}
	return true
}

func (g *Game) Update() error {
	if !g.handleHotkeys() {
		for _, r := range ebiten.AppendInputChars(nil) {
			if r < 128 {
				g.pressKey(uint16(r))
			}
		}
		for k, code := range specialKeys {
			if inpututil.IsKeyJustPressed(k) {
				g.pressKey(code)
			}
		}
		if g.key != 0 && len(inpututil.AppendPressedKeys(nil)) == 0 {
			g.releaseKeys()
		}
	}

	g.runFrame()
	return nil
}

func (g *Game) statusLine() string {
	state := "running"
	switch {
	case g.vm.Halted:
		state = "halted"
	case g.paused:
		state = "paused"
	}
	line := fmt.Sprintf("%-7s PC=%-5d A=%-5d D=%-6d KBD=%-3d cycles=%d", state, g.vm.PC, g.vm.A, int16(g.vm.D), g.key, g.vm.Cycles)
	if g.status != "" {
		line += "  " + g.status
	}
	return line
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.FramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	text.Draw(screen, g.statusLine(), basicfont.Face7x13, 2, cpu.ScreenHeight+12, color.White)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + statusHeight
}

func main() {
	stepsPerFrame := flag.Int("steps", 50000, "instructions executed per frame")
	scale := flag.Int("scale", 2, "window scale")
	snapshot := flag.String("snapshot", "hack_snapshot.zip", "Ctrl+S saves the machine here")
	restore := flag.String("restore", "", "start from a snapshot instead of a program")
	flag.Parse()
	defer glog.Flush()

	g := &Game{vm: cpu.NewCPU(), stepsPerFrame: *stepsPerFrame, snapshotPath: *snapshot}
	switch {
	case *restore != "":
		if err := g.vm.RestoreFromFile(*restore); err != nil {
			glog.Exitf("restore %s: %v", *restore, err)
		}
		g.program = append([]uint16(nil), g.vm.ROM[:g.vm.ProgramLen]...)
	case flag.NArg() == 1:
		words, err := utils.LoadProgram(flag.Arg(0))
		if err != nil {
			glog.Exitf("%v", err)
		}
		g.program = words
		if err := g.vm.Load(words); err != nil {
			glog.Exitf("%v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: desktop [flags] FILE.asm|FILE.hack")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*(*scale), (cpu.ScreenHeight+statusHeight)*(*scale))
	ebiten.SetWindowTitle("Hack Desktop")

	if err := ebiten.RunGame(g); err != nil {
		glog.Fatal(err)
	}
}
