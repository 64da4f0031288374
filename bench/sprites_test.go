package bench

import (
	"testing"

	"github.com/oliverbestmann/fbobench/glm"
	"github.com/oliverbestmann/fbobench/render"
)

func TestSpriteAtDeterministic(t *testing.T) {
	world := glm.Vec2f{640, 360}

	a := SpriteAt(42, 1.5, world, 16)
	b := SpriteAt(42, 1.5, world, 16)

	if a != b {
		t.Errorf("SpriteAt() not deterministic: %+v vs %+v", a, b)
	}
}

func TestSpriteAtCyclicTextureAssignment(t *testing.T) {
	world := glm.Vec2f{640, 360}

	for i := 0; i < 64; i++ {
		s := SpriteAt(i, 0, world, 16)

		if s.Texture != i%16 {
			t.Fatalf("sprite %d texture = %d, want %d", i, s.Texture, i%16)
		}
	}
}

func TestSpriteAtStaysInWorld(t *testing.T) {
	world := glm.Vec2f{640, 360}

	for i := 0; i < 1000; i++ {
		s := SpriteAt(i, 2.0, world, 16)

		if abs(s.Pos[0]) > world[0]/2 || abs(s.Pos[1]) > world[1]/2 {
			t.Fatalf("sprite %d at %v is outside the visible world %v", i, s.Pos, world)
		}

		if s.Size <= 0 {
			t.Fatalf("sprite %d size = %v, want positive", i, s.Size)
		}
	}
}

func TestEmitRequestsReusesBuffer(t *testing.T) {
	backend := render.NewHeadless()

	textures, err := BuildTextureSet(backend, 4)
	if err != nil {
		t.Fatalf("BuildTextureSet() error = %v", err)
	}

	world := glm.Vec2f{640, 360}
	camera := Camera(640, 360, 1)

	requests := EmitRequests(nil, textures, 100, 0, world, camera)
	if len(requests) != 100 {
		t.Fatalf("len(requests) = %d, want 100", len(requests))
	}

	// a second frame with fewer sprites must reuse the backing array
	again := EmitRequests(requests, textures, 50, 0.1, world, camera)
	if len(again) != 50 {
		t.Fatalf("len(again) = %d, want 50", len(again))
	}

	if &again[0] != &requests[0] {
		t.Error("request buffer was reallocated")
	}
}

func TestWorldVisible(t *testing.T) {
	world := WorldVisible(1920, 1080, 3)

	if world[0] != 640 || world[1] != 360 {
		t.Errorf("WorldVisible(1920, 1080, 3) = %v, want {640 360}", world)
	}
}
