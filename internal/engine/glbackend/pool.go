package glbackend

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Faultbox/xrp/internal/engine/gpu"
)

// pool recycles render targets by descriptor. Released targets go onto a
// free list and are handed out again before new storage is allocated.
type pool struct {
	mu      sync.Mutex
	maxSize int
	create  func(gpu.TextureDesc) (*target, error)
	destroy func(*target)

	free map[gpu.TextureDesc][]*target
	live map[uuid.UUID]*target

	allocated int
}

func newPool(maxSize int, create func(gpu.TextureDesc) (*target, error), destroy func(*target)) *pool {
	return &pool{
		maxSize: maxSize,
		create:  create,
		destroy: destroy,
		free:    make(map[gpu.TextureDesc][]*target),
		live:    make(map[uuid.UUID]*target),
	}
}

func (p *pool) get(desc gpu.TextureDesc) (*gpu.RenderTexture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", desc.Width, desc.Height)
	}
	if desc.Width > p.maxSize || desc.Height > p.maxSize {
		return nil, fmt.Errorf("%dx%d: %w", desc.Width, desc.Height, gpu.ErrTextureTooLarge)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var t *target
	if list := p.free[desc]; len(list) > 0 {
		t = list[len(list)-1]
		p.free[desc] = list[:len(list)-1]
	} else {
		var err error
		if t, err = p.create(desc); err != nil {
			return nil, err
		}
		p.allocated++
	}

	rt := &gpu.RenderTexture{ID: uuid.New(), Desc: desc, Native: t.texture}
	p.live[rt.ID] = t
	return rt, nil
}

// put returns rt's storage to the free list. Unknown or already released
// textures are ignored.
func (p *pool) put(rt *gpu.RenderTexture) {
	if rt == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.live[rt.ID]
	if !ok {
		return
	}
	delete(p.live, rt.ID)
	p.free[t.desc] = append(p.free[t.desc], t)
}

// lookup returns the storage behind a live texture.
func (p *pool) lookup(rt *gpu.RenderTexture) (*target, bool) {
	if rt == nil {
		return nil, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.live[rt.ID]
	return t, ok
}

// trim destroys every free target and returns how many were dropped.
func (p *pool) trim() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for desc, list := range p.free {
		for _, t := range list {
			p.destroy(t)
			n++
		}
		delete(p.free, desc)
	}
	p.allocated -= n
	return n
}

// close destroys all storage, live or free.
func (p *pool) close() {
	p.trim()

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.live {
		p.destroy(t)
		delete(p.live, id)
	}
	p.allocated = 0
}

func (p *pool) stats() (live, free int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, list := range p.free {
		free += len(list)
	}
	return len(p.live), free
}
