package layout

import (
	"testing"

	"github.com/vanderheijden86/pantheon/pkg/genealogy"
	"github.com/vanderheijden86/pantheon/pkg/model"
	"github.com/vanderheijden86/pantheon/pkg/rings"
	"github.com/vanderheijden86/pantheon/pkg/testutil"
)

func zeusRings(t *testing.T) rings.Result {
	t.Helper()
	s := genealogy.BuildStore(testutil.Olympus())
	g, ok := s.EgoGraph("zeus")
	if !ok {
		t.Fatal("zeus should resolve")
	}
	return rings.ComputeRings(g, rings.FocusState{}, s)
}

func TestStrategiesPlaceEveryNodeOnce(t *testing.T) {
	res := zeusRings(t)
	for _, st := range []Strategy{Columns{}, DefaultRadial()} {
		t.Run(st.Name(), func(t *testing.T) {
			ps := st.Place(res, Size{W: 120, H: 40})
			if len(ps) != res.Len()+1 {
				t.Fatalf("got %d placements, want %d", len(ps), res.Len()+1)
			}
			if !ps[0].Central() || ps[0].Key != rings.CentralKey(res.Central.ID) {
				t.Errorf("first placement should be the central node, got %+v", ps[0])
			}
			if len(ByKey(ps)) != len(ps) {
				t.Error("placement keys must be unique")
			}
		})
	}
}

func TestGridPanelsTileTheScreen(t *testing.T) {
	size := Size{W: 100, H: 30}
	g := Columns{}.Grid(size)

	for y := g.Header.H; y < g.Footer.Y; y++ {
		for x := 0; x < size.W; x++ {
			_, inPanel := g.PanelAt(x, y)
			if inPanel == g.Central.Contains(x, y) {
				t.Fatalf("cell (%d,%d) covered by %v panels and central=%v", x, y, inPanel, g.Central.Contains(x, y))
			}
		}
	}
	if s, ok := g.PanelAt(99, 29-2); !ok || s != model.SectionChildren {
		t.Errorf("bottom-right cell should be in the children panel, got %q", s)
	}
	if _, ok := g.PanelAt(0, 0); ok {
		t.Error("header must not hit a panel")
	}
}

func TestColumnsRowsFollowRingOrder(t *testing.T) {
	res := zeusRings(t)
	size := Size{W: 100, H: 30}
	g := Columns{}.Grid(size)
	content := g.Content(model.SectionChildren)

	for _, p := range (Columns{}).Place(res, size) {
		if p.Section != model.SectionChildren {
			continue
		}
		if p.X != content.X || p.Y != content.Y+p.Index {
			t.Errorf("%s at (%d,%d), want (%d,%d)", p.Key, p.X, p.Y, content.X, content.Y+p.Index)
		}
		if p.Node.Key != res.Children[p.Index].Key {
			t.Errorf("index %d holds %s, want %s", p.Index, p.Node.Key, res.Children[p.Index].Key)
		}
	}
}

func TestColumnsFits(t *testing.T) {
	if (Columns{}).Fits(Size{W: MinWidth - 1, H: MinHeight}) {
		t.Error("narrow terminal should not fit")
	}
	if !(Columns{}).Fits(Size{W: MinWidth, H: MinHeight}) {
		t.Error("minimum size should fit")
	}
	g := Columns{}.Grid(Size{W: 10, H: 4})
	if c := g.Content(model.SectionParents); c.W < 0 || c.H < 0 {
		t.Errorf("content rect must never be negative: %+v", c)
	}
}

func TestRadialSectors(t *testing.T) {
	res := zeusRings(t)
	size := Size{W: 800, H: 800}
	cx, cy := 400, 400
	for _, p := range DefaultRadial().Place(res, size) {
		switch p.Section {
		case model.SectionParents:
			if p.Y >= cy {
				t.Errorf("parent %s below centre", p.Key)
			}
		case model.SectionChildren:
			if p.Y <= cy {
				t.Errorf("child %s above centre", p.Key)
			}
		case model.SectionSiblings:
			if p.X >= cx {
				t.Errorf("sibling %s right of centre", p.Key)
			}
		case model.SectionConsorts:
			if p.X <= cx {
				t.Errorf("consort %s left of centre", p.Key)
			}
		default:
			if p.X != cx || p.Y != cy {
				t.Errorf("central node at (%d,%d)", p.X, p.Y)
			}
		}
	}
}

func TestRadialChildrenLeftToRight(t *testing.T) {
	res := zeusRings(t)
	prev := -1
	for _, p := range DefaultRadial().Place(res, Size{W: 800, H: 800}) {
		if p.Section != model.SectionChildren {
			continue
		}
		if p.X <= prev {
			t.Errorf("child %d at x=%d not right of previous x=%d", p.Index, p.X, prev)
		}
		prev = p.X
	}
}
