package cpu

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestPixel(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase] = 0x0001               // (0,0)
	c.RAM[ScreenBase+1] = 0x8000             // (31,0)
	c.RAM[ScreenBase+32] = 0x0004            // (2,1)
	c.RAM[ScreenBase+ScreenWords-1] = 0x8000 // (511,255)

	set := map[[2]int]bool{{0, 0}: true, {31, 0}: true, {2, 1}: true, {511, 255}: true}
	for _, p := range [][2]int{{0, 0}, {1, 0}, {31, 0}, {16, 0}, {2, 1}, {2, 0}, {511, 255}, {510, 255}} {
		if got := c.Pixel(p[0], p[1]); got != set[p] {
			t.Errorf("Pixel(%d,%d) = %v; want %v", p[0], p[1], got, set[p])
		}
	}
	if c.Pixel(-1, 0) || c.Pixel(ScreenWidth, 0) || c.Pixel(0, ScreenHeight) {
		t.Error("out-of-range pixel reported set")
	}
}

func TestFramebufferRGBA(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase+33] = 0x0002 // row 1, x = 16+1

	fb := c.FramebufferRGBA()
	if len(fb) != ScreenWidth*ScreenHeight*4 {
		t.Fatalf("len = %d", len(fb))
	}
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			p := (y*ScreenWidth + x) * 4
			want := byte(0xFF)
			if c.Pixel(x, y) {
				want = 0
			}
			if fb[p] != want || fb[p+3] != 0xFF {
				t.Fatalf("pixel (%d,%d) = %v; want %#02x", x, y, fb[p:p+4], want)
			}
		}
	}
	if p := (1*ScreenWidth + 17) * 4; fb[p] != 0 {
		t.Errorf("pixel (17,1) not black")
	}
}

func TestFramebufferImage(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase] = 0xFFFF

	img := c.FramebufferImage()
	if b := img.Bounds(); b.Dx() != ScreenWidth || b.Dy() != ScreenHeight {
		t.Fatalf("bounds = %v", b)
	}
	if got := img.RGBAAt(15, 0); got != (color.RGBA{0, 0, 0, 0xFF}) {
		t.Errorf("(15,0) = %v; want black", got)
	}
	if got := img.RGBAAt(16, 0); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("(16,0) = %v; want white", got)
	}
}

func TestSaveScreenshot(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase] = 0x0001
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := c.SaveScreenshot(path); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Errorf("(0,0) not black in screenshot")
	}
}
