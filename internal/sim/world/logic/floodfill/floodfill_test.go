package floodfill

import "testing"

// gridClass builds a classifier from row strings:
// '#'=wall, 'D'=door, '.'=floor, ' '=terrain, anything outside=void.
func gridClass(rows []string) func(P) Class {
	return func(p P) Class {
		if p.Y < 0 || p.Y >= len(rows) {
			return ClassVoid
		}
		row := rows[p.Y]
		if p.X < 0 || p.X >= len(row) {
			return ClassVoid
		}
		switch row[p.X] {
		case '#':
			return ClassWall
		case 'D':
			return ClassDoor
		case '.':
			return ClassFloor
		case ' ':
			return ClassTerrain
		}
		return ClassVoid
	}
}

func TestFillEnclosedRoom(t *testing.T) {
	rows := []string{
		"###D###",
		"#.....#",
		"#.....#",
		"#######",
	}
	visited := map[P]bool{}
	reg, ok := Fill(P{1, 1}, gridClass(rows), visited, nil)
	if !ok {
		t.Fatalf("fill aborted without budget")
	}
	if len(reg.Floor) != 10 {
		t.Fatalf("floor tiles = %d, want 10", len(reg.Floor))
	}
	if !reg.Enclosed {
		t.Fatalf("room should be enclosed")
	}
	if len(reg.Doors) != 0 {
		// The door is on the outer ring, not adjacent to interior floor here.
		t.Fatalf("doors = %d, want 0", len(reg.Doors))
	}
}

func TestFillDoorAdjacentIsConnectorNotTraversed(t *testing.T) {
	rows := []string{
		"#####",
		"#...D...",
		"#####",
	}
	visited := map[P]bool{}
	reg, _ := Fill(P{1, 1}, gridClass(rows), visited, nil)
	if len(reg.Doors) != 1 {
		t.Fatalf("doors = %d, want 1", len(reg.Doors))
	}
	for _, p := range reg.Floor {
		if p.X > 3 {
			t.Fatalf("flood traversed through door to %v", p)
		}
	}
}

func TestFillLeakDisqualifiesEnclosure(t *testing.T) {
	rows := []string{
		"### ###",
		"#.....#",
		"#######",
	}
	visited := map[P]bool{}
	reg, _ := Fill(P{1, 1}, gridClass(rows), visited, nil)
	if reg.Enclosed {
		// (3,0) is terrain: the room above the gap leaks.
		t.Fatalf("room with terrain gap must not be enclosed")
	}
}

func TestFillVoidNeighborDisqualifiesEnclosure(t *testing.T) {
	rows := []string{
		"...",
	}
	visited := map[P]bool{}
	reg, _ := Fill(P{0, 0}, gridClass(rows), visited, nil)
	if reg.Enclosed {
		t.Fatalf("open floor strip must not be enclosed")
	}
	if len(reg.Floor) != 3 {
		t.Fatalf("floor tiles = %d, want 3", len(reg.Floor))
	}
}

func TestFillSharedVisitedPartitions(t *testing.T) {
	rows := []string{
		"#######",
		"#..#..#",
		"#######",
	}
	visited := map[P]bool{}
	a, _ := Fill(P{1, 1}, gridClass(rows), visited, nil)
	b, _ := Fill(P{4, 1}, gridClass(rows), visited, nil)
	if len(a.Floor) != 2 || len(b.Floor) != 2 {
		t.Fatalf("partition sizes = %d,%d want 2,2", len(a.Floor), len(b.Floor))
	}
	// Second Fill from an already-visited tile is a no-op.
	c, _ := Fill(P{1, 1}, gridClass(rows), visited, nil)
	if len(c.Floor) != 0 {
		t.Fatalf("revisit should return empty region")
	}
}

func TestFillBudgetAborts(t *testing.T) {
	rows := []string{
		"########",
		"#......#",
		"########",
	}
	visited := map[P]bool{}
	budget := 3
	reg, ok := Fill(P{1, 1}, gridClass(rows), visited, &budget)
	if ok {
		t.Fatalf("expected budget abort")
	}
	if budget != 0 {
		t.Fatalf("budget = %d, want 0", budget)
	}
	// The room is walled on every side, but the abort stopped the scan
	// before that could be proven.
	if reg.Enclosed {
		t.Fatal("truncated region must not report enclosure")
	}
}
