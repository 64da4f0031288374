package render

import (
	"testing"
)

// textures returns n distinct texture handles.
func testTextures(t *testing.T, backend *Headless, n int) []Texture {
	t.Helper()

	textures := make([]Texture, n)

	for i := range textures {
		tex, err := backend.CreateTexture(1, 1, make([]byte, 4))
		if err != nil {
			t.Fatalf("CreateTexture() error = %v", err)
		}

		textures[i] = tex
	}

	return textures
}

func requestsFor(textures []Texture, assignment []int) []DrawRequest {
	requests := make([]DrawRequest, len(assignment))

	for i, idx := range assignment {
		requests[i] = DrawRequest{Texture: textures[idx]}
	}

	return requests
}

func TestCoalesceEmpty(t *testing.T) {
	var d Dispatcher

	batches := d.Coalesce(nil)
	if len(batches) != 0 {
		t.Errorf("Coalesce(nil) = %d batches, want 0", len(batches))
	}

	if d.BatchCount() != 0 {
		t.Errorf("BatchCount() = %d, want 0", d.BatchCount())
	}
}

func TestCoalesceRuns(t *testing.T) {
	backend := NewHeadless()
	textures := testTextures(t, backend, 3)

	tests := []struct {
		name       string
		assignment []int
		wantSizes  []int
	}{
		{
			name:       "single texture",
			assignment: []int{0, 0, 0, 0, 0},
			wantSizes:  []int{5},
		},
		{
			name:       "alternating every element",
			assignment: []int{0, 1, 0, 1},
			wantSizes:  []int{1, 1, 1, 1},
		},
		{
			name:       "three maximal runs",
			assignment: []int{0, 0, 1, 1, 1, 2},
			wantSizes:  []int{2, 3, 1},
		},
		{
			name:       "same texture in non adjacent runs",
			assignment: []int{0, 1, 0},
			wantSizes:  []int{1, 1, 1},
		},
		{
			name:       "single request",
			assignment: []int{2},
			wantSizes:  []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Dispatcher

			batches := d.Coalesce(requestsFor(textures, tt.assignment))

			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("Coalesce() = %d batches, want %d", len(batches), len(tt.wantSizes))
			}

			for i, b := range batches {
				if b.Len() != tt.wantSizes[i] {
					t.Errorf("batch %d has %d requests, want %d", i, b.Len(), tt.wantSizes[i])
				}

				if b.Texture != b.Requests[0].Texture {
					t.Errorf("batch %d texture does not match its first request", i)
				}

				for _, req := range b.Requests {
					if req.Texture != b.Texture {
						t.Errorf("batch %d mixes textures", i)
					}
				}
			}

			if d.BatchCount() != uint64(len(tt.wantSizes)) {
				t.Errorf("BatchCount() = %d, want %d", d.BatchCount(), len(tt.wantSizes))
			}
		})
	}
}

// Batch count depends only on the number of maximal runs, not on the
// total request count.
func TestCoalesceRunCountIndependentOfLength(t *testing.T) {
	backend := NewHeadless()
	textures := testTextures(t, backend, 2)

	for _, total := range []int{10, 100, 10000} {
		assignment := make([]int, total)
		for i := total / 2; i < total; i++ {
			assignment[i] = 1
		}

		var d Dispatcher

		batches := d.Coalesce(requestsFor(textures, assignment))
		if len(batches) != 2 {
			t.Errorf("total=%d: Coalesce() = %d batches, want 2", total, len(batches))
		}
	}
}

func TestCoalescePreservesOrder(t *testing.T) {
	backend := NewHeadless()
	textures := testTextures(t, backend, 2)

	requests := requestsFor(textures, []int{0, 0, 1, 1, 0})

	// tag the requests with their original position
	for i := range requests {
		requests[i].Color[0] = float32(i)
	}

	var d Dispatcher

	var flattened []float32
	for _, b := range d.Coalesce(requests) {
		for _, req := range b.Requests {
			flattened = append(flattened, req.Color[0])
		}
	}

	for i, got := range flattened {
		if got != float32(i) {
			t.Fatalf("request order changed: position %d holds request %v", i, got)
		}
	}

	if len(flattened) != len(requests) {
		t.Errorf("batches contain %d requests, want %d", len(flattened), len(requests))
	}
}

func TestCoalesceCyclicWorstCase(t *testing.T) {
	backend := NewHeadless()
	textures := testTextures(t, backend, 16)

	const sprites = 2000

	assignment := make([]int, sprites)
	for i := range assignment {
		assignment[i] = i % len(textures)
	}

	var d Dispatcher

	batches := d.Coalesce(requestsFor(textures, assignment))
	if len(batches) != sprites {
		t.Errorf("cyclic assignment: Coalesce() = %d batches, want %d", len(batches), sprites)
	}
}
