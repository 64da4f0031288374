package bench

import (
	"fmt"

	fastnoiselite "github.com/furui/fastnoiselite-go"
	"github.com/oliverbestmann/fbobench/render"
)

// texture edge length of the generated textures
const textureSize = 32

// GenerateTexturePixels produces the RGBA8 pixels of texture idx out
// of total. The pattern is a gradient keyed on the texture index with
// a simplex noise overlay, fully deterministic per index.
func GenerateTexturePixels(idx, total int) []byte {
	noise := fastnoiselite.NewNoise()
	noise.SetNoiseType(fastnoiselite.NoiseTypeOpenSimplex2)
	noise.Seed = int32(idx)

	pixels := make([]byte, textureSize*textureSize*4)

	for y := 0; y < textureSize; y++ {
		for x := 0; x < textureSize; x++ {
			r := float32((x+idx*7)%textureSize) / (textureSize - 1)
			g := float32((y+idx*13)%textureSize) / (textureSize - 1)
			b := float32(idx) / float32(total)

			// noise in [-1, 1], used to roughen the gradient a bit
			n := float32(noise.GetNoise2D(
				fastnoiselite.FNLfloat(x),
				fastnoiselite.FNLfloat(y),
			))

			shade := 0.75 + 0.25*n

			o := (y*textureSize + x) * 4
			pixels[o+0] = byte(clamp01(r*shade) * 255)
			pixels[o+1] = byte(clamp01(g*shade) * 255)
			pixels[o+2] = byte(clamp01(b) * 255)
			pixels[o+3] = byte(clamp01(0.9) * 255)
		}
	}

	return pixels
}

// BuildTextureSet generates and uploads count textures. The caller
// owns the returned handles.
func BuildTextureSet(backend render.Backend, count int) ([]render.Texture, error) {
	textures := make([]render.Texture, 0, count)

	for i := 0; i < count; i++ {
		tex, err := backend.CreateTexture(textureSize, textureSize, GenerateTexturePixels(i, count))
		if err != nil {
			for _, t := range textures {
				t.Release()
			}

			return nil, fmt.Errorf("create texture %d: %w", i, err)
		}

		textures = append(textures, tex)
	}

	return textures, nil
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
