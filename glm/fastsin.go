package glm

import (
	"golang.org/x/mobile/exp/f32"
)

// Sin is a fast float32 sine. Good enough for animation,
// do not use where exact values matter.
func Sin(r Rad) float32 {
	return f32.Sin(float32(r))
}

// Cos is a fast float32 cosine, see Sin.
func Cos(r Rad) float32 {
	return f32.Cos(float32(r))
}
