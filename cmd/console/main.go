package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/term"

	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

// A terminal reports key presses but never releases, so a key stays in KBD
// for this many frames.
const holdFrames = 6

// Final bytes of the ANSI cursor sequences ESC [ x.
var csiKeys = map[byte]uint16{
	'A': 131, // up
	'B': 133, // down
	'C': 132, // right
	'D': 130, // left
	'H': 134, // home
	'F': 135, // end
}

// decodeKeys turns raw terminal input into Hack key codes. quit is set when
// the input holds Ctrl-C.
func decodeKeys(b []byte) (keys []uint16, quit bool) {
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == 3:
			return keys, true
		case c == '\r' || c == '\n':
			keys = append(keys, 128)
		case c == 127 || c == 8:
			keys = append(keys, 129)
		case c == 0x1b:
			if i+2 < len(b) && b[i+1] == '[' {
				if code, ok := csiKeys[b[i+2]]; ok {
					keys = append(keys, code)
					i += 2
					continue
				}
			}
			keys = append(keys, 140)
		case c >= ' ' && c < 127:
			keys = append(keys, uint16(c))
		}
	}
	return keys, false
}

// readKeys forwards decoded keys until Ctrl-C or a read error, then closes
// the channel.
func readKeys(r io.Reader, keys chan<- uint16) {
	defer close(keys)
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		codes, quit := decodeKeys(buf[:n])
		for _, k := range codes {
			keys <- k
		}
		if quit || err != nil {
			return
		}
	}
}

// renderScreen draws the 512×256 screen into at most cols×rows character
// cells. Each cell stacks two blocks of pixels using half-block glyphs, and a
// block is drawn when any of its pixels is set.
func renderScreen(c *cpu.CPU, cols, rows int) []string {
	if cols < 1 || rows < 1 {
		return nil
	}
	cellW := (cpu.ScreenWidth + cols - 1) / cols
	cellH := (cpu.ScreenHeight + 2*rows - 1) / (2 * rows)
	width := (cpu.ScreenWidth + cellW - 1) / cellW
	height := (cpu.ScreenHeight + 2*cellH - 1) / (2 * cellH)

	lines := make([]string, height)
	var sb strings.Builder
	for r := 0; r < height; r++ {
		sb.Reset()
		for col := 0; col < width; col++ {
			top := blockSet(c, col*cellW, 2*r*cellH, cellW, cellH)
			bottom := blockSet(c, col*cellW, (2*r+1)*cellH, cellW, cellH)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		lines[r] = sb.String()
	}
	return lines
}

func blockSet(c *cpu.CPU, x0, y0, w, h int) bool {
	for y := y0; y < y0+h && y < cpu.ScreenHeight; y++ {
		for x := x0; x < x0+w && x < cpu.ScreenWidth; x++ {
			if c.Pixel(x, y) {
				return true
			}
		}
	}
	return false
}

func terminalSize() (int, int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

func draw(w io.Writer, vm *cpu.CPU, cols, rows int) {
	bw := bufio.NewWriter(w)
	defer bw.Flush()
	bw.WriteString("\x1b[H")
	for _, line := range renderScreen(vm, cols, rows-1) {
		bw.WriteString(line)
		bw.WriteString("\x1b[K\r\n")
	}
	fmt.Fprintf(bw, "PC=%-5d A=%-5d D=%-6d KBD=%-3d cycles=%d\x1b[K", vm.PC, vm.A, int16(vm.D), vm.Key(), vm.Cycles)
}

func runInteractive(vm *cpu.CPU, steps, fps int) {
	fd := int(os.Stdin.Fd())
	keys := make(chan uint16, 64)
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			glog.Exitf("raw mode: %v", err)
		}
		defer term.Restore(fd, oldState)
		go readKeys(os.Stdin, keys)
	} else {
		glog.Warning("stdin is not a terminal, keyboard disabled")
	}

	fmt.Print("\x1b[2J")
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	held := 0
	for range ticker.C {
	drain:
		for {
			select {
			case k, ok := <-keys:
				if !ok {
					return
				}
				vm.SetKey(k)
				held = holdFrames
			default:
				break drain
			}
		}
		if held > 0 {
			held--
			if held == 0 {
				vm.SetKey(0)
			}
		}

		vm.Run(steps)
		cols, rows := terminalSize()
		draw(os.Stdout, vm, cols, rows)
		if vm.Halted {
			fmt.Print("\r\n")
			return
		}
	}
}

func main() {
	steps := flag.Int("steps", 20000, "instructions per frame")
	fps := flag.Int("fps", 30, "frames per second")
	once := flag.Bool("once", false, "run to completion, print the screen once and exit")
	maxSteps := flag.Int("max-steps", 10_000_000, "step limit with -once")
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: console [flags] FILE.asm|FILE.hack")
		flag.PrintDefaults()
		os.Exit(2)
	}
	words, err := utils.LoadProgram(flag.Arg(0))
	if err != nil {
		glog.Exitf("%v", err)
	}
	vm := cpu.NewCPU()
	if err := vm.Load(words); err != nil {
		glog.Exitf("%v", err)
	}

	if *once || !term.IsTerminal(int(os.Stdout.Fd())) {
		if _, err := vm.RunUntilDone(*maxSteps); errors.Is(err, cpu.ErrStepLimit) {
			glog.Warningf("%v", err)
		}
		cols, rows := terminalSize()
		for _, line := range renderScreen(vm, cols, rows-1) {
			fmt.Println(strings.TrimRight(line, " "))
		}
		fmt.Printf("PC=%d A=%d D=%d cycles=%d halted=%v\n", vm.PC, vm.A, int16(vm.D), vm.Cycles, vm.Halted)
		return
	}
	runInteractive(vm, *steps, *fps)
}
