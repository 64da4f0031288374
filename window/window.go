// Package window wraps glfw window creation for the benchmark. No
// input handling, the harness only needs a surface to present to.
package window

import (
	"fmt"

	"github.com/oliverbestmann/webgpu/wgpu"
	"github.com/oliverbestmann/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Window struct {
	win *glfw.Window
}

func New(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()

		return nil, fmt.Errorf("create window: %w", err)
	}

	return &Window{win: win}, nil
}

func (w *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.win)
}

func (w *Window) GetSize() (uint32, uint32) {
	width, height := w.win.GetSize()
	return uint32(width), uint32(height)
}

// Poll processes pending window events and reports whether the window
// wants to stay open.
func (w *Window) Poll() bool {
	glfw.PollEvents()
	return !w.win.ShouldClose()
}

func (w *Window) Terminate() {
	w.win.Destroy()
	glfw.Terminate()
}
