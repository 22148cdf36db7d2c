package material

import (
	"fmt"
	"strings"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ProceduralPrefix marks a texture path as a generated texture, e.g.
// "builtin:checker"
const ProceduralPrefix = "builtin:"

const proceduralSize = 256

// IsProcedural reports whether path names a generated texture
func IsProcedural(path string) bool {
	return strings.HasPrefix(path, ProceduralPrefix)
}

// NewProceduralTexture generates the texture named by a "builtin:" path:
// checker, tiles, uv or gradient
func NewProceduralTexture(path string) (*ImageTexture, error) {
	switch strings.TrimPrefix(path, ProceduralPrefix) {
	case "checker":
		return NewCheckerboardTexture(proceduralSize, proceduralSize, 32, White, Grey), nil
	case "tiles":
		return NewCheckerboardTexture(proceduralSize, proceduralSize, 16, LightGray, DarkRed), nil
	case "uv":
		return NewUVDebugTexture(proceduralSize, proceduralSize), nil
	case "gradient":
		return NewGradientTexture(proceduralSize, proceduralSize, Blue, White), nil
	default:
		return nil, fmt.Errorf("unknown procedural texture %q", path)
	}
}

// NewCheckerboardTexture alternates two colors in squares of checkSize pixels
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}
	return NewImageTexture(width, height, pixels)
}

// NewUVDebugTexture shows texture coordinates as colors: u in red, v in
// green. Pixel rows run top-down, so v is 1 at the top row.
func NewUVDebugTexture(width, height int) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		v := 1 - float64(y)/float64(max(height-1, 1))
		for x := 0; x < width; x++ {
			u := float64(x) / float64(max(width-1, 1))
			pixels[y*width+x] = core.NewVec3(u, v, 0)
		}
	}
	return NewImageTexture(width, height, pixels)
}

// NewGradientTexture blends from top (at v=1) to bottom (at v=0)
func NewGradientTexture(width, height int, top, bottom core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		t := float64(y) / float64(max(height-1, 1))
		c := top.Multiply(1 - t).Add(bottom.Multiply(t))
		for x := 0; x < width; x++ {
			pixels[y*width+x] = c
		}
	}
	return NewImageTexture(width, height, pixels)
}
