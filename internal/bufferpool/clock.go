package bufferpool

// Replacer picks the frame to reuse once every frame is occupied.
type Replacer interface {
	RecordAccess(frameID int)
	SetEvictable(frameID int, evictable bool)
	Evict() (frameID int, ok bool)
	Remove(frameID int)
	Size() int
}

type clockSlot struct {
	present   bool
	evictable bool
	ref       bool
}

// clockReplacer is CLOCK (second chance) over frame ids [0, capacity).
type clockReplacer struct {
	slots []clockSlot
	hand  int
	size  int // evictable slots
}

var _ Replacer = (*clockReplacer)(nil)

func newClockReplacer(capacity int) *clockReplacer {
	if capacity <= 0 {
		capacity = 1
	}
	return &clockReplacer{slots: make([]clockSlot, capacity)}
}

func (c *clockReplacer) slot(id int) *clockSlot {
	if id < 0 || id >= len(c.slots) {
		return nil
	}
	return &c.slots[id]
}

func (c *clockReplacer) RecordAccess(id int) {
	if s := c.slot(id); s != nil {
		s.present = true
		s.ref = true
	}
}

// SetEvictable ignores frames that were never accessed.
func (c *clockReplacer) SetEvictable(id int, evictable bool) {
	s := c.slot(id)
	if s == nil || !s.present || s.evictable == evictable {
		return
	}
	s.evictable = evictable
	if evictable {
		c.size++
	} else {
		c.size--
	}
}

// Evict sweeps at most twice round the clock. The victim stops being
// tracked until it is accessed again.
func (c *clockReplacer) Evict() (int, bool) {
	n := len(c.slots)
	if c.size == 0 {
		return -1, false
	}
	for i := 0; i < 2*n; i++ {
		id := c.hand
		c.hand = (c.hand + 1) % n

		s := &c.slots[id]
		if !s.present || !s.evictable {
			continue
		}
		if s.ref {
			s.ref = false
			continue
		}
		*s = clockSlot{}
		c.size--
		return id, true
	}
	return -1, false
}

func (c *clockReplacer) Remove(id int) {
	s := c.slot(id)
	if s == nil || !s.present {
		return
	}
	if s.evictable {
		c.size--
	}
	*s = clockSlot{}
}

func (c *clockReplacer) Size() int { return c.size }
