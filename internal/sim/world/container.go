package world

import "sort"

// Container is a storage point agents draw construction materials from.
// One container per tile.
type Container struct {
	Pos   Vec2i
	Items map[string]int
}

// ContainerStore indexes containers by tile and answers nearest-source
// queries. It satisfies the Storage interface the behavior FSMs depend on.
type ContainerStore struct {
	w     *World
	byPos map[Vec2i]*Container
}

func newContainerStore(w *World) *ContainerStore {
	return &ContainerStore{w: w, byPos: map[Vec2i]*Container{}}
}

// AddContainer creates (or returns) the container at pos.
func (s *ContainerStore) AddContainer(pos Vec2i) *Container {
	if c, ok := s.byPos[pos]; ok {
		return c
	}
	c := &Container{Pos: pos, Items: map[string]int{}}
	s.byPos[pos] = c
	return c
}

func (s *ContainerStore) At(pos Vec2i) *Container { return s.byPos[pos] }

func (s *ContainerStore) sortedPositions() []Vec2i {
	out := make([]Vec2i, 0, len(s.byPos))
	for p := range s.byPos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	return out
}

// FindSource returns the position of the nearest container holding at least
// one unit of materialID. Ties break by position order.
func (s *ContainerStore) FindSource(materialID string, near Vec2i) (Vec2i, bool) {
	var best *Container
	bestDist := 0
	for _, p := range s.sortedPositions() {
		c := s.byPos[p]
		if c.Items[materialID] <= 0 {
			continue
		}
		d := near.Manhattan(p)
		if best == nil || d < bestDist {
			best = c
			bestDist = d
		}
	}
	if best == nil {
		return Vec2i{}, false
	}
	return best.Pos, true
}

// Take withdraws count units of materialID from the container at pos.
// Returns false without a partial withdrawal when the stock is short.
func (s *ContainerStore) Take(pos Vec2i, materialID string, count int) bool {
	c := s.byPos[pos]
	if c == nil || count <= 0 || c.Items[materialID] < count {
		return false
	}
	c.Items[materialID] -= count
	if c.Items[materialID] <= 0 {
		delete(c.Items, materialID)
	}
	return true
}

// Deposit adds items to the container at pos, creating it if absent.
func (s *ContainerStore) Deposit(pos Vec2i, materialID string, count int) {
	if count <= 0 {
		return
	}
	s.AddContainer(pos).Items[materialID] += count
}
