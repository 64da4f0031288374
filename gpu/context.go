// Package gpu implements the wgpu backed renderer of the harness.
package gpu

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/oliverbestmann/webgpu/wgpu"
)

var forceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"

func init() {
	runtime.LockOSThread()

	switch strings.ToUpper(os.Getenv("WGPU_LOG_LEVEL")) {
	case "OFF":
		wgpu.SetLogLevel(wgpu.LogLevelOff)
	case "ERROR":
		wgpu.SetLogLevel(wgpu.LogLevelError)
	case "WARN":
		wgpu.SetLogLevel(wgpu.LogLevelWarn)
	case "INFO":
		wgpu.SetLogLevel(wgpu.LogLevelInfo)
	case "DEBUG":
		wgpu.SetLogLevel(wgpu.LogLevelDebug)
	case "TRACE":
		wgpu.SetLogLevel(wgpu.LogLevelTrace)
	}
}

// Context owns the wgpu handles every render command needs: the device
// with its queue, the surface to present to and the adapter the device
// was requested from.
type Context struct {
	*wgpu.Device
	*wgpu.Queue
	Surface *wgpu.Surface
	Adapter *wgpu.Adapter
}

// NewContext brings up the wgpu stack against the given surface. On
// failure every handle created so far is released again.
func NewContext(sd *wgpu.SurfaceDescriptor) (*Context, error) {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	ctx := &Context{
		Surface: instance.CreateSurface(sd),
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    ctx.Surface,
	})
	if err != nil {
		ctx.Release()

		return nil, fmt.Errorf("request adapter: %w", err)
	}

	ctx.Adapter = adapter

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		ctx.Release()

		return nil, fmt.Errorf("request device: %w", err)
	}

	ctx.Device = device
	ctx.Queue = device.GetQueue()

	return ctx, nil
}

func (ctx *Context) Release() {
	if ctx.Queue != nil {
		ctx.Queue.Release()
		ctx.Queue = nil
	}

	if ctx.Device != nil {
		ctx.Device.Release()
		ctx.Device = nil
	}

	if ctx.Adapter != nil {
		ctx.Adapter.Release()
		ctx.Adapter = nil
	}

	if ctx.Surface != nil {
		ctx.Surface.Release()
		ctx.Surface = nil
	}
}
