package gpu

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Recorder is an in-memory Device. It keeps every executed command, tracks
// live temporaries and mirrors global state. Headless runs and tests use it
// in place of a real GPU.
type Recorder struct {
	mu       sync.Mutex
	caps     Caps
	cmds     []Command
	state    *GlobalState
	live     map[uuid.UUID]*RenderTexture
	acquired int
}

// NewRecorder creates a recorder reporting caps.
func NewRecorder(caps Caps) *Recorder {
	if caps.MaxTextureSize == 0 {
		caps.MaxTextureSize = 16384
	}
	return &Recorder{
		caps:  caps,
		state: NewGlobalState(),
		live:  make(map[uuid.UUID]*RenderTexture),
	}
}

func (r *Recorder) Caps() Caps {
	return r.caps
}

func (r *Recorder) GetTemporary(desc TextureDesc) (*RenderTexture, error) {
	if desc.Width > r.caps.MaxTextureSize || desc.Height > r.caps.MaxTextureSize {
		return nil, fmt.Errorf("%dx%d: %w", desc.Width, desc.Height, ErrTextureTooLarge)
	}
	rt := &RenderTexture{ID: uuid.New(), Desc: desc}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[rt.ID] = rt
	r.acquired++
	return rt, nil
}

func (r *Recorder) ReleaseTemporary(rt *RenderTexture) {
	if rt == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, rt.ID)
}

func (r *Recorder) Execute(cmds []Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cmds {
		r.state.Apply(c)
		r.cmds = append(r.cmds, c)
	}
	return nil
}

// Commands returns every command executed so far.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.cmds...)
}

// State returns the mirrored global state.
func (r *Recorder) State() *GlobalState {
	return r.state
}

// Live returns the number of temporaries acquired and not yet released.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Acquired returns the total number of temporaries handed out.
func (r *Recorder) Acquired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acquired
}

// Reset forgets recorded commands and counters. Global state is kept,
// matching a device whose globals persist across frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds = nil
	r.acquired = 0
}
