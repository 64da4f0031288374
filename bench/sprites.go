package bench

import (
	"github.com/oliverbestmann/fbobench/glm"
	"github.com/oliverbestmann/fbobench/render"
)

// golden ratio conjugate, spreads the sprites evenly around the spiral
const goldenRatio = 0.618033988

// Sprite is the per frame state of one animated quad. Sprites are not
// stored between frames, they are a pure function of index and elapsed
// time so runs are reproducible.
type Sprite struct {
	Pos     glm.Vec2f
	Size    float32
	Alpha   float32
	Texture int
}

// SpriteAt computes sprite i at the given elapsed time. world is the
// visible world size in world units.
func SpriteAt(i int, elapsed float32, world glm.Vec2f, textureCount int) Sprite {
	fi := float32(i)

	halfW := world[0] / 2
	halfH := world[1] / 2

	angle := glm.Rad(fi*goldenRatio*glm.Tau + elapsed*0.5)

	radius := abs(glm.Sin(glm.Rad(fi*0.01))) * min(halfW, halfH) * 0.8

	return Sprite{
		Pos: glm.Vec2f{
			glm.Cos(angle) * radius,
			glm.Sin(angle) * radius,
		},
		Size:    8 + glm.Sin(glm.Rad(fi*0.1))*4,
		Alpha:   0.8 + glm.Sin(glm.Rad(fi*0.3))*0.2,
		Texture: i % textureCount,
	}
}

// EmitRequests produces the ordered draw requests of one frame. The
// order is fixed by sprite index, batching later in the pipeline must
// never change it.
func EmitRequests(dst []render.DrawRequest, textures []render.Texture, count int, elapsed float32, world glm.Vec2f, camera glm.Mat3f) []render.DrawRequest {
	dst = dst[:0]

	for i := 0; i < count; i++ {
		s := SpriteAt(i, elapsed, world, len(textures))

		dst = append(dst, render.DrawRequest{
			Texture:   textures[s.Texture],
			Transform: camera,
			Quad: glm.RectangleFromXYWH(
				s.Pos[0]-s.Size/2,
				s.Pos[1]-s.Size/2,
				s.Size,
				s.Size,
			),
			Color: glm.Vec4f{1, 1, 1, s.Alpha},
		})
	}

	return dst
}

// Camera maps world units into clip space for the given viewport size
// and zoom, matching the 2d camera of the original harness.
func Camera(width, height uint32, scale float32) glm.Mat3f {
	return glm.ScaleMat3(
		1/float32(width)*2*scale,
		1/float32(height)*2*scale,
	)
}

// WorldVisible is the world size covered by the viewport at the given
// zoom.
func WorldVisible(width, height uint32, scale float32) glm.Vec2f {
	return glm.Vec2f{
		float32(width) / scale,
		float32(height) / scale,
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}
