package cpu

import (
	"image"
	"image/png"
	"os"

	"hackasm/pkg/grid"
)

// wordsPerRow is the number of screen words covering one row of pixels.
const wordsPerRow = ScreenWidth / 16

// Pixel reports whether screen pixel (x, y) is set. Each row is 32 words and
// the least significant bit of a word is its leftmost pixel.
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	word := c.RAM[int(ScreenBase)+grid.Index(x/16, y, wordsPerRow)]
	return word&(1<<(x%16)) != 0
}

// FramebufferRGBA decodes the screen map into a 512×256 RGBA8888 byte slice.
// Set pixels are black on a white background.
func (c *CPU) FramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenWords; i++ {
		word := c.RAM[int(ScreenBase)+i]
		col, row := grid.GetGridCoords(i, wordsPerRow)
		start := grid.Index(col*16, row, ScreenWidth)
		for bit := 0; bit < 16; bit++ {
			v := byte(0xFF)
			if word&(1<<bit) != 0 {
				v = 0x00
			}
			p := (start + bit) * 4
			pixels[p+0] = v
			pixels[p+1] = v
			pixels[p+2] = v
			pixels[p+3] = 0xFF
		}
	}
	return pixels
}

// FramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) FramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.FramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, c.FramebufferImage())
}
