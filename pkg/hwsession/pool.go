package hwsession

// FramePool is an index-addressed arena of equally sized host buffers.
// It grows one buffer at a time and never shrinks until released.
type FramePool struct {
	frameSize int
	frames    [][]byte
}

// NewFramePool creates an empty pool whose buffers are frameSize bytes.
func NewFramePool(frameSize int) *FramePool {
	return &FramePool{frameSize: frameSize}
}

// FrameSize returns the size of every buffer.
func (p *FramePool) FrameSize() int {
	return p.frameSize
}

// Len returns the number of buffers allocated.
func (p *FramePool) Len() int {
	return len(p.frames)
}

// Acquire returns the buffer for the n-th decoded frame (1-based),
// allocating one more buffer when n exceeds the pool size.
func (p *FramePool) Acquire(n int) []byte {
	for len(p.frames) < n {
		p.frames = append(p.frames, make([]byte, p.frameSize))
	}
	return p.frames[n-1]
}

// At returns the buffer at index i.
func (p *FramePool) At(i int) []byte {
	return p.frames[i]
}

// Resize replaces every buffer with one of the new size. The buffer count
// is kept; contents are discarded.
func (p *FramePool) Resize(frameSize int) {
	if frameSize == p.frameSize {
		return
	}
	p.frameSize = frameSize
	for i := range p.frames {
		p.frames[i] = make([]byte, frameSize)
	}
}

// Release drops all buffers.
func (p *FramePool) Release() {
	p.frames = nil
}
