// Package texturearray implements the Texture Array Registry (§6): a
// string-path-to-layer-index map whose indices stay stable for the life of
// the process. Registration is the only mutation and is idempotent, so a
// single exclusive mutex guards it per §5's shared-resource policy.
package texturearray

import (
	"image"
	"image/color"
	"sync"

	"github.com/charmbracelet/log"
)

// Registry maps texture paths to stable GPU texture-array layer indices.
// The actual image upload is an external collaborator (out of scope, §1);
// this type only owns the path<->index mapping consumed by face instances.
type Registry struct {
	mu     sync.Mutex
	layers []string
	index  map[string]int
	log    *log.Logger
}

func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{index: make(map[string]int), log: logger}
}

// GetOrRegister returns path's stable layer index, registering it on first
// use. Idempotent: repeated calls with the same path return the same index.
func (r *Registry) GetOrRegister(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.index[path]; ok {
		return idx
	}
	idx := len(r.layers)
	r.layers = append(r.layers, path)
	r.index[path] = idx
	return idx
}

// Layers returns the registered paths in stable layer order.
func (r *Registry) Layers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.layers))
	copy(out, r.layers)
	return out
}

// MissingTexturePlaceholder procedurally draws a magenta/black checkerboard
// for any path whose image asset failed to load, matching §7's "asset
// missing" policy: log and continue, render with a missing-texture
// indicator rather than crash.
func MissingTexturePlaceholder(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	magenta := color.NRGBA{255, 0, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := magenta
			if (x < half) != (y < half) {
				c = black
			}
			img.Set(x, y, c)
		}
	}
	return img
}
