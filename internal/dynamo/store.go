package dynamo

// LaneWidth is the group size of the data-parallel integrators. Store buffers
// are padded to a multiple of it so a full group never reads out of bounds.
const LaneWidth = 4

type Store struct {
	pos      []float32
	vel      []float32
	count    int
	capacity int
	boundary float32
}

func NewStore(capacity int, boundary float32) (*Store, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	padded := PadToLanes(capacity)
	return &Store{
		pos:      make([]float32, padded),
		vel:      make([]float32, padded),
		capacity: capacity,
		boundary: boundary,
	}, nil
}

// PadToLanes rounds n up to the next multiple of LaneWidth.
func PadToLanes(n int) int {
	return (n + LaneWidth - 1) / LaneWidth * LaneWidth
}

func (s *Store) Len() int          { return s.count }
func (s *Store) Cap() int          { return s.capacity }
func (s *Store) Boundary() float32 { return s.boundary }
func (s *Store) Full() bool        { return s.count == s.capacity }
func (s *Store) Reset()            { s.count = 0 }

// Add appends a particle and returns its id.
func (s *Store) Add(pos, vel float32) (int, error) {
	if s.count >= s.capacity {
		return -1, ErrCapacityExceeded
	}
	id := s.count
	s.pos[id] = pos
	s.vel[id] = vel
	s.count++
	return id, nil
}

// RemoveLast pops the most recently added particle. Array contents are left
// as they are; slots at or past count are never read through the accessors.
func (s *Store) RemoveLast() {
	if s.count == 0 {
		return
	}
	s.count--
}

func (s *Store) PositionOf(id int) float32 {
	s.check(id)
	return s.pos[id]
}

func (s *Store) VelocityOf(id int) float32 {
	s.check(id)
	return s.vel[id]
}

func (s *Store) check(id int) {
	if id < 0 || id >= s.count {
		panic(&InvalidIDError{ID: id, Count: s.count})
	}
}

// Buffers returns the full padded backing arrays. Only integrators should use
// them; entries at or past Len are unspecified.
func (s *Store) Buffers() (pos, vel []float32) {
	return s.pos, s.vel
}
