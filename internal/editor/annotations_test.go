package editor

import (
	"math"
	"testing"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/document"
)

func TestBBox(t *testing.T) {
	t.Parallel()

	points := []document.Point{
		{X: 100, Y: 200},
		{X: 300, Y: 150},
		{X: 250, Y: 400},
	}
	r := bbox(points, 5)
	want := document.Rect{LLX: 95, LLY: 145, URX: 305, URY: 405}
	if r != want {
		t.Errorf("bbox() = %+v, want %+v", r, want)
	}
}

func TestStrokeQuads(t *testing.T) {
	t.Parallel()

	// A horizontal segment yields a quad of exactly width height.
	points := []document.Point{{X: 0, Y: 100}, {X: 50, Y: 100}}
	quads := strokeQuads(points, 10)
	if len(quads) != 1 {
		t.Fatalf("len(quads) = %d, want 1", len(quads))
	}
	q := quads[0]
	if math.Abs(q.P1.Y-105) > 1e-9 || math.Abs(q.P3.Y-95) > 1e-9 {
		t.Errorf("quad edges at %.1f and %.1f, want 105 and 95", q.P1.Y, q.P3.Y)
	}
}

func TestStrokeQuads_SkipsDegenerateSegments(t *testing.T) {
	t.Parallel()

	points := []document.Point{
		{X: 0, Y: 0},
		{X: 0, Y: 0},
		{X: 10, Y: 0},
	}
	quads := strokeQuads(points, 4)
	if len(quads) != 1 {
		t.Errorf("len(quads) = %d, want 1 (zero-length segment dropped)", len(quads))
	}
}

func TestAddPolygonAndList(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	points := []document.Point{
		{X: 100, Y: 100},
		{X: 200, Y: 100},
		{X: 150, Y: 200},
	}
	desc, err := suite.Annots.AddPolygon(0, points, StyleOptions{Stroke: "red"})
	if err != nil {
		t.Fatalf("AddPolygon() error: %v", err)
	}
	if desc.Type != "Polygon" {
		t.Errorf("Type = %q, want Polygon", desc.Type)
	}

	list, err := suite.Annots.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
}

func TestAddPolygon_RejectsTooFewPoints(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	_, err := suite.Annots.AddPolygon(0, []document.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, StyleOptions{})
	if !isInvalid(err) {
		t.Errorf("AddPolygon with 2 points error = %v, want InvalidOperationError", err)
	}
}

func TestAddNoteAndDelete(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	desc, err := suite.Annots.AddNote(0, document.Point{X: 72, Y: 600}, "check this section", "Comment")
	if err != nil {
		t.Fatalf("AddNote() error: %v", err)
	}

	if err := suite.Annots.Delete(0, desc.Index); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	list, err := suite.Annots.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len(list) after delete = %d, want 0", len(list))
	}

	if err := suite.Annots.Delete(0, 0); !isInvalid(err) {
		t.Errorf("Delete of missing index error = %v, want InvalidOperationError", err)
	}
}

func TestAddStamp(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	rect := document.Rect{LLX: 72, LLY: 700, URX: 272, URY: 740}
	desc, err := suite.Annots.AddStamp(0, rect, "APPROVED", StyleOptions{Stroke: "green"})
	if err != nil {
		t.Fatalf("AddStamp() error: %v", err)
	}
	if desc.Rect != rect {
		t.Errorf("Rect = %+v, want %+v", desc.Rect, rect)
	}
}

func TestAddFreehandHighlight(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	points := []document.Point{
		{X: 72, Y: 72},
		{X: 144, Y: 72},
		{X: 216, Y: 80},
	}
	desc, err := suite.Annots.AddFreehandHighlight(0, points, 12, "yellow", 0.4)
	if err != nil {
		t.Fatalf("AddFreehandHighlight() error: %v", err)
	}
	if desc.Type != "Highlight" {
		t.Errorf("Type = %q, want Highlight", desc.Type)
	}
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one", "two")
	points := []document.Point{
		{X: 100, Y: 100},
		{X: 200, Y: 100},
		{X: 150, Y: 200},
	}
	if _, err := suite.Annots.AddPolygon(0, points, StyleOptions{Stroke: "red", Fill: "blue"}); err != nil {
		t.Fatalf("AddPolygon() error: %v", err)
	}
	if _, err := suite.Annots.AddNote(1, document.Point{X: 72, Y: 600}, "revisit", "Comment"); err != nil {
		t.Fatalf("AddNote() error: %v", err)
	}

	flattened, err := suite.Annots.Flatten()
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flattened != 2 {
		t.Errorf("Flatten() = %d, want 2", flattened)
	}

	// The annotation objects are gone; their form is page content now.
	for page := 0; page < 2; page++ {
		list, err := suite.Annots.List(page)
		if err != nil {
			t.Fatalf("List(%d) error: %v", page, err)
		}
		if len(list) != 0 {
			t.Errorf("page %d has %d annotations after flatten, want 0", page, len(list))
		}
	}
}

func TestFlatten_NoAnnotations(t *testing.T) {
	t.Parallel()

	suite := newTestSuite(t, "one")
	flattened, err := suite.Annots.Flatten()
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if flattened != 0 {
		t.Errorf("Flatten() = %d, want 0", flattened)
	}
}
