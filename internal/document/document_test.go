package document

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const sampleDoc = `General:
  Name: Desert
  Extensions: [.des, .tem]
Terrain:
  TerrainType@Clear:
    Type: Clear
    Color: 134, 95, 69
  TerrainType@Clear:
    Type: Water
Templates:
  Template@1:
    Id: 1
    Tiles:
`

func TestParseKeepsOrderAndRepeatedKeys(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var keys []string
	for _, n := range doc.Nodes {
		keys = append(keys, n.Key)
	}
	if diff := cmp.Diff([]string{"General", "Terrain", "Templates"}, keys); diff != "" {
		t.Errorf("section order mismatch (-want +got):\n%s", diff)
	}

	terrain, err := doc.Section("Terrain")
	if err != nil {
		t.Fatalf("Section(Terrain) failed: %v", err)
	}
	if len(terrain.Nodes) != 2 {
		t.Fatalf("expected 2 terrain nodes, got %d", len(terrain.Nodes))
	}
	if got := terrain.Nodes[1].String("Type", ""); got != "Water" {
		t.Errorf("expected second terrain type Water, got %q", got)
	}
}

func TestParseSequenceMatchesCommaList(t *testing.T) {
	seq, err := Parse([]byte("General:\n  Extensions: [.des, .tem]\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	flat, err := Parse([]byte("General:\n  Extensions: .des, .tem\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	a, _ := seq.Section("General")
	b, _ := flat.Section("General")
	want := []string{".des", ".tem"}
	if diff := cmp.Diff(want, a.StringList("Extensions", nil)); diff != "" {
		t.Errorf("sequence list mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, b.StringList("Extensions", nil)); diff != "" {
		t.Errorf("comma list mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptySectionIsPresent(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	templates, _ := doc.Section("Templates")
	tmpl := templates.Nodes[0]

	tiles, err := tmpl.Section("Tiles")
	if err != nil {
		t.Fatalf("expected empty Tiles section to be present: %v", err)
	}
	if len(tiles.Nodes) != 0 {
		t.Errorf("expected no tiles, got %d", len(tiles.Nodes))
	}

	if _, err := tmpl.Section("Missing"); !errors.Is(err, ErrMissingSection) {
		t.Errorf("expected ErrMissingSection, got %v", err)
	}
	if _, err := doc.Section("Nope"); !errors.Is(err, ErrMissingSection) {
		t.Errorf("expected ErrMissingSection for top-level section, got %v", err)
	}
}

func TestParseRejectsNonMappingTopLevel(t *testing.T) {
	if _, err := Parse([]byte("- a\n- b\n")); err == nil {
		t.Errorf("expected error for sequence document")
	}
}

func TestFieldDefaultsAndErrors(t *testing.T) {
	n := NewNode("Entry").
		Set("Flag", "False").
		Set("Id", "70000").
		Set("Size", "2,3").
		Set("Color", "128,10,20,30")

	if b, err := n.Bool("Flag", true); err != nil || b {
		t.Errorf("Bool(Flag) = %v, %v; want false, nil", b, err)
	}
	if b, err := n.Bool("Absent", true); err != nil || !b {
		t.Errorf("Bool(Absent) = %v, %v; want default true", b, err)
	}

	_, err := n.Uint16("Id", 0)
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldError for out-of-range id, got %v", err)
	}
	if fe.Key != "Id" || fe.Value != "70000" {
		t.Errorf("unexpected field error contents: %+v", fe)
	}

	p, err := n.Point("Size", image.Point{})
	if err != nil || p != image.Pt(2, 3) {
		t.Errorf("Point(Size) = %v, %v", p, err)
	}

	c, err := n.Color("Color", color.RGBA{})
	if err != nil {
		t.Fatalf("Color failed: %v", err)
	}
	if want := (color.RGBA{A: 128, R: 10, G: 20, B: 30}); c != want {
		t.Errorf("Color = %v, want %v", c, want)
	}
	if got := FormatColor(c); got != "128,10,20,30" {
		t.Errorf("FormatColor = %q", got)
	}
	if got := FormatColor(color.RGBA{R: 1, G: 2, B: 3, A: 255}); got != "1,2,3" {
		t.Errorf("FormatColor(opaque) = %q", got)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	n := NewNode("TerrainType@Clear").
		Set("Type", "Clear").
		Set("Buildable", FormatBool(true)).
		Set("Color", "1,2,3")
	n.Nodes = append(n.Nodes, &Node{Key: "Tiles", Nodes: []*Node{{Key: "0", Value: "Clear"}}})

	data, err := n.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse of marshalled node failed: %v\n%s", err, data)
	}
	if diff := cmp.Diff([]*Node{n}, doc.Nodes); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFS(t *testing.T) {
	fsys := fstest.MapFS{"rules/desert.yaml": {Data: []byte(sampleDoc)}}
	doc, err := ReadFS(fsys, "rules/desert.yaml")
	if err != nil {
		t.Fatalf("ReadFS failed: %v", err)
	}
	general, err := doc.Section("General")
	if err != nil {
		t.Fatalf("Section failed: %v", err)
	}
	if got := general.String("Name", ""); got != "Desert" {
		t.Errorf("Name = %q, want Desert", got)
	}

	if _, err := ReadFS(fsys, "missing.yaml"); err == nil {
		t.Errorf("expected error for missing document")
	}
}
