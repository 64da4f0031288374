package render

import (
	"github.com/oliverbestmann/fbobench/glm"
)

// DrawRequest asks for one textured quad. Requests are submitted in
// the exact order the caller produced them, draw order is never
// changed by batching.
type DrawRequest struct {
	// Texture to sample. Compared by handle identity when batching.
	Texture Texture

	// Transform from quad space into target space.
	Transform glm.Mat3f

	// Quad geometry in local space.
	Quad glm.Rectangle2f

	// Straight alpha color multiplier.
	Color glm.Vec4f
}

// Batch is a maximal contiguous run of draw requests sharing one
// texture binding. It can be rendered with a single draw call.
type Batch struct {
	Texture  Texture
	Requests []DrawRequest
}

func (b Batch) Len() int {
	return len(b.Requests)
}

// Dispatcher coalesces ordered draw requests into batches and keeps
// count of the batches it emitted. A texture change between two
// adjacent requests is a batch break.
type Dispatcher struct {
	emitted uint64
}

// Coalesce splits requests into the minimal ordered sequence of
// batches. Requests are neither reordered nor deduplicated, so the
// result has exactly one batch per maximal run of equal textures, and
// no batches at all for empty input. The returned batches alias the
// input slice.
func (d *Dispatcher) Coalesce(requests []DrawRequest) []Batch {
	if len(requests) == 0 {
		return nil
	}

	var batches []Batch

	start := 0

	for i := 1; i < len(requests); i++ {
		if requests[i].Texture != requests[start].Texture {
			batches = append(batches, Batch{
				Texture:  requests[start].Texture,
				Requests: requests[start:i:i],
			})

			start = i
		}
	}

	batches = append(batches, Batch{
		Texture:  requests[start].Texture,
		Requests: requests[start:],
	})

	d.emitted += uint64(len(batches))

	return batches
}

// BatchCount returns the total number of batches emitted so far.
func (d *Dispatcher) BatchCount() uint64 {
	return d.emitted
}
