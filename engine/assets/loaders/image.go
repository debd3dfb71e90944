package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/lumo/engine/core"
	"github.com/spaghettifunk/lumo/engine/renderer/metadata"
)

// ImageLoader decodes PNG/JPEG files into tightly packed RGBA8 pixels and
// generates the full mip chain on the CPU. The GPU side then only copies;
// it never blits or filters.
type ImageLoader struct{}

func NewImageLoader() *ImageLoader {
	return &ImageLoader{}
}

func (il *ImageLoader) Load(path string) (*metadata.ImageResourceData, error) {
	file, err := os.Open(path)
	if err != nil {
		err := fmt.Errorf("failed to open image %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	defer file.Close()

	decoded, format, err := image.Decode(file)
	if err != nil {
		err := fmt.Errorf("failed to decode image %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	base := toRGBA(decoded)
	width := uint32(base.Rect.Dx())
	height := uint32(base.Rect.Dy())

	data := &metadata.ImageResourceData{
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		MipLevels:    BuildMipChain(base),
	}

	core.LogDebug("loaded %s image %s: %dx%d, %d mip levels", format, path, width, height, len(data.MipLevels))
	return data, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	return rgba
}

// BuildMipChain scales the base image down level by level until 1x1,
// filtering each level from the previous one with Catmull-Rom. Level 0 is
// the base pixels themselves.
func BuildMipChain(base *image.RGBA) [][]byte {
	width := uint32(base.Rect.Dx())
	height := uint32(base.Rect.Dy())
	levels := metadata.MipLevelCount(width, height)

	chain := make([][]byte, 0, levels)
	chain = append(chain, packPixels(base))

	previous := base
	for level := uint32(1); level < levels; level++ {
		w, h := metadata.MipExtent(width, height, level)
		scaled := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
		draw.CatmullRom.Scale(scaled, scaled.Rect, previous, previous.Rect, draw.Src, nil)
		chain = append(chain, packPixels(scaled))
		previous = scaled
	}
	return chain
}

// packPixels strips any row padding so the result is width*height*4 bytes.
func packPixels(img *image.RGBA) []byte {
	width := img.Rect.Dx()
	height := img.Rect.Dy()
	rowBytes := width * 4

	if img.Stride == rowBytes {
		out := make([]byte, rowBytes*height)
		copy(out, img.Pix)
		return out
	}

	out := make([]byte, 0, rowBytes*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		out = append(out, row...)
	}
	return out
}
