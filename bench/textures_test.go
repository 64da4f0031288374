package bench

import (
	"bytes"
	"testing"

	"github.com/oliverbestmann/fbobench/render"
)

func TestGenerateTexturePixelsDeterministic(t *testing.T) {
	a := GenerateTexturePixels(3, 16)
	b := GenerateTexturePixels(3, 16)

	if !bytes.Equal(a, b) {
		t.Error("pixels differ between two generations of the same index")
	}
}

func TestGenerateTexturePixelsDifferPerIndex(t *testing.T) {
	a := GenerateTexturePixels(0, 16)
	b := GenerateTexturePixels(1, 16)

	if bytes.Equal(a, b) {
		t.Error("textures 0 and 1 are identical")
	}
}

func TestGenerateTexturePixelsLayout(t *testing.T) {
	pixels := GenerateTexturePixels(0, 1)

	if want := textureSize * textureSize * 4; len(pixels) != want {
		t.Fatalf("len(pixels) = %d, want %d", len(pixels), want)
	}

	wantAlpha := byte(clamp01(0.9) * 255)
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] != wantAlpha {
			t.Fatalf("pixel %d alpha = %d, want %d", i/4, pixels[i], wantAlpha)
		}
	}
}

func TestBuildTextureSet(t *testing.T) {
	backend := render.NewHeadless()

	textures, err := BuildTextureSet(backend, 16)
	if err != nil {
		t.Fatalf("BuildTextureSet() error = %v", err)
	}

	if len(textures) != 16 {
		t.Fatalf("len(textures) = %d, want 16", len(textures))
	}

	for _, tex := range textures {
		tex.Release()
	}
}
