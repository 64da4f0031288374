package glm

import (
	"golang.org/x/exp/constraints"
)

type numeric interface {
	constraints.Float | ~uint32
}

// Rad is an angle in radians.
type Rad float32

// Tau is one full turn.
const Tau = 6.28318530717958647692
