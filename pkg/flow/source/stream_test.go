package source

import "testing"

func TestStream_Next_TracksRowsAndColumns(t *testing.T) {
	s := NewStream(New("memory://test", "ab\ncé"))

	var got []Position
	for !s.AtEnd() {
		_, next, ok := s.Next()
		if !ok {
			t.Fatal("Next() reported end before AtEnd()")
		}
		s = next
		got = append(got, s.Pos)
	}

	want := []Position{
		{Index: 1, Row: 0, Column: 1},
		{Index: 2, Row: 0, Column: 2},
		{Index: 3, Row: 1, Column: 0},
		{Index: 4, Row: 1, Column: 1},
		{Index: 6, Row: 1, Column: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("len(positions) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStream_Immutable(t *testing.T) {
	s := NewStream(New("memory://test", "xy"))
	r, next, _ := s.Next()
	if r != 'x' {
		t.Fatalf("Next() = %q, want 'x'", r)
	}
	if s.Pos.Index != 0 {
		t.Errorf("original stream advanced to %d", s.Pos.Index)
	}
	if next.Pos.Index != 1 {
		t.Errorf("next stream at %d, want 1", next.Pos.Index)
	}
}

func TestSource_Line(t *testing.T) {
	src := New("memory://test", "first\r\nsecond\nthird")
	tests := []struct {
		row  int
		want string
	}{
		{0, "first"},
		{1, "second"},
		{2, "third"},
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := src.Line(tt.row); got != tt.want {
			t.Errorf("Line(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestSpan_TextAndString(t *testing.T) {
	src := New("main.flow", "a = 1;")
	start := NewStream(src)
	end := start
	for i := 0; i < 5; i++ {
		_, end, _ = end.Next()
	}
	span := start.SpanTo(end)
	if span.Text() != "a = 1" {
		t.Errorf("Text() = %q, want %q", span.Text(), "a = 1")
	}
	if span.String() != "main.flow:1:1" {
		t.Errorf("String() = %q, want %q", span.String(), "main.flow:1:1")
	}
	if (Span{}).String() != "<unknown>" {
		t.Errorf("zero span String() = %q", Span{}.String())
	}
}
