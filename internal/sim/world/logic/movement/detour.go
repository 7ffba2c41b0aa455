package movement

type Pos struct {
	X int
	Y int
}

func dist(a, b Pos) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// DetourStep finds a passable next step from start that eventually reduces
// the distance to target within maxDepth steps. It is intentionally small and
// deterministic (fixed neighbor order, lexicographic tie-break) so agents on
// cluttered ground do not thrash between equivalent routes.
//
// Returns (nextStep, true) on success; nextStep is always a 4-neighbor of
// start.
func DetourStep(start, target Pos, maxDepth int, inBounds func(Pos) bool, blocked func(Pos) bool) (Pos, bool) {
	if maxDepth <= 0 {
		return Pos{}, false
	}

	startDist := dist(start, target)

	type qItem struct {
		p     Pos
		depth int
		first Pos
	}

	// Fixed neighbor order for determinism.
	dirs := []Pos{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

	visited := make(map[Pos]bool, 256)
	visited[start] = true

	queue := make([]qItem, 0, 256)
	for _, d := range dirs {
		np := Pos{X: start.X + d.X, Y: start.Y + d.Y}
		if !inBounds(np) || blocked(np) {
			continue
		}
		visited[np] = true
		queue = append(queue, qItem{p: np, depth: 1, first: np})
	}

	bestDist := startDist
	bestDepth := 0
	bestFirst := Pos{}
	found := false

	better := func(d, depth int, first Pos) bool {
		if !found {
			return true
		}
		if d != bestDist {
			return d < bestDist
		}
		if depth != bestDepth {
			return depth < bestDepth
		}
		if first.X != bestFirst.X {
			return first.X < bestFirst.X
		}
		return first.Y < bestFirst.Y
	}

	for head := 0; head < len(queue); head++ {
		it := queue[head]

		d := dist(it.p, target)
		if d < startDist && better(d, it.depth, it.first) {
			found = true
			bestDist = d
			bestDepth = it.depth
			bestFirst = it.first
		}

		if it.depth >= maxDepth {
			continue
		}
		for _, dir := range dirs {
			np := Pos{X: it.p.X + dir.X, Y: it.p.Y + dir.Y}
			if visited[np] || !inBounds(np) || blocked(np) {
				continue
			}
			visited[np] = true
			queue = append(queue, qItem{p: np, depth: it.depth + 1, first: it.first})
		}
	}

	if !found {
		return Pos{}, false
	}
	return bestFirst, true
}
