package blueprint

import "testing"

var testSymbols = map[string]Symbol{
	"#": {Type: TypeWall, Material: "wood_wall"},
	".": {Type: TypeFloor, Material: "wood_floor"},
	"D": {Type: TypeDoor, Material: "wood_door"},
}

func TestNormalizeRotation(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 0}, {1, 1}, {3, 3}, {4, 0}, {-1, 3},
		{90, 1}, {180, 2}, {270, 3}, {360, 0}, {-90, 3},
	}
	for _, c := range cases {
		if got := NormalizeRotation(c.in); got != c.want {
			t.Fatalf("NormalizeRotation(%d)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestParseLayoutCounts(t *testing.T) {
	rows := []string{
		"###D###",
		"#.....#",
		"#.....#",
		"#######",
	}
	ps, err := ParseLayout(rows, testSymbols, 0, 0, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var walls, floors, doors int
	for _, p := range ps {
		switch p.Type {
		case TypeWall:
			walls++
		case TypeFloor:
			floors++
		case TypeDoor:
			doors++
		}
	}
	if walls != 17 || floors != 10 || doors != 1 {
		t.Fatalf("walls=%d floors=%d doors=%d, want 17/10/1", walls, floors, doors)
	}
}

func TestParseLayoutRotation90(t *testing.T) {
	rows := []string{"#D"}
	ps, err := ParseLayout(rows, testSymbols, 10, 10, 90)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// (0,0)->(10,10); (1,0) rotates clockwise to (0,1)->(10,11).
	if ps[0].X != 10 || ps[0].Y != 10 {
		t.Fatalf("anchor moved: %+v", ps[0])
	}
	if ps[1].X != 10 || ps[1].Y != 11 {
		t.Fatalf("rotated door at (%d,%d), want (10,11)", ps[1].X, ps[1].Y)
	}
}

func TestParseLayoutFullTurnIdentity(t *testing.T) {
	rows := []string{
		"#D#",
		"#.#",
	}
	base, err := ParseLayout(rows, testSymbols, 5, -3, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	turned, err := ParseLayout(rows, testSymbols, 5, -3, 360)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(base) != len(turned) {
		t.Fatalf("placement counts differ")
	}
	for i := range base {
		if base[i] != turned[i] {
			t.Fatalf("placement %d differs after full turn: %+v vs %+v", i, base[i], turned[i])
		}
	}
}

func TestParseLayoutRejectsRaggedRows(t *testing.T) {
	if _, err := ParseLayout([]string{"##", "#"}, testSymbols, 0, 0, 0); err == nil {
		t.Fatalf("expected ragged-row error")
	}
}

func TestParseLayoutRejectsUnknownSymbol(t *testing.T) {
	if _, err := ParseLayout([]string{"#X"}, testSymbols, 0, 0, 0); err == nil {
		t.Fatalf("expected unknown-symbol error")
	}
}

func TestParseLayoutSpaceSkipped(t *testing.T) {
	ps, err := ParseLayout([]string{"# #"}, testSymbols, 0, 0, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("placements = %d, want 2", len(ps))
	}
}
