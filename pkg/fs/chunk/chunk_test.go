package chunk

import (
	"testing"
)

func TestIndexForOffset(t *testing.T) {
	cases := []struct {
		offset uint64
		want   uint32
	}{
		{0, 0},
		{1, 0},
		{Size - 1, 0},
		{Size, 1},
		{Size + 1, 1},
		{3 * Size, 3},
	}
	for _, c := range cases {
		if got := IndexForOffset(c.offset); got != c.want {
			t.Errorf("IndexForOffset(%d) = %d, want %d", c.offset, got, c.want)
		}
	}
}

func TestCount(t *testing.T) {
	cases := []struct {
		size uint64
		want uint32
	}{
		{0, 0},
		{1, 1},
		{Size - 1, 1},
		{Size, 1},
		{Size + 1, 2},
		{2 * Size, 2},
		{2*Size + 1, 3},
	}
	for _, c := range cases {
		if got := Count(c.size); got != c.want {
			t.Errorf("Count(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestRange(t *testing.T) {
	cases := []struct {
		offset, length uint64
		wantStart      uint32
		wantEnd        uint32
	}{
		{0, 10, 0, 0},
		{0, Size, 0, 0},
		{0, Size + 1, 0, 1},
		{Size - 1, 2, 0, 1},
		{Size, Size, 1, 1},
		{0, 0, 0, 0},
		{2 * Size, 0, 2, 2},
	}
	for _, c := range cases {
		start, end := Range(c.offset, c.length)
		if start != c.wantStart || end != c.wantEnd {
			t.Errorf("Range(%d, %d) = (%d, %d), want (%d, %d)",
				c.offset, c.length, start, end, c.wantStart, c.wantEnd)
		}
	}
}

func TestBounds(t *testing.T) {
	start, end := Bounds(0)
	if start != 0 || end != Size {
		t.Errorf("Bounds(0) = (%d, %d), want (0, %d)", start, end, Size)
	}

	start, end = Bounds(3)
	if start != 3*Size || end != 4*Size {
		t.Errorf("Bounds(3) = (%d, %d), want (%d, %d)", start, end, 3*Size, 4*Size)
	}
}

func TestSlices_SingleChunk(t *testing.T) {
	var slices []Slice
	for s := range Slices(100, 500) {
		slices = append(slices, s)
	}

	if len(slices) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(slices))
	}

	s := slices[0]
	if s.Index != 0 {
		t.Errorf("Index = %d, want 0", s.Index)
	}
	if s.Offset != 100 {
		t.Errorf("Offset = %d, want 100", s.Offset)
	}
	if s.Length != 500 {
		t.Errorf("Length = %d, want 500", s.Length)
	}
	if s.BufOffset != 0 {
		t.Errorf("BufOffset = %d, want 0", s.BufOffset)
	}
}

func TestSlices_SpansTwoChunks(t *testing.T) {
	// Starts 10 bytes before the first chunk boundary.
	var slices []Slice
	for s := range Slices(Size-10, 30) {
		slices = append(slices, s)
	}

	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}

	s0 := slices[0]
	if s0.Index != 0 || s0.Offset != Size-10 || s0.Length != 10 || s0.BufOffset != 0 {
		t.Errorf("slice 0 = %+v, want {Index:0 Offset:%d Length:10 BufOffset:0}", s0, Size-10)
	}

	s1 := slices[1]
	if s1.Index != 1 || s1.Offset != 0 || s1.Length != 20 || s1.BufOffset != 10 {
		t.Errorf("slice 1 = %+v, want {Index:1 Offset:0 Length:20 BufOffset:10}", s1)
	}
}

func TestSlices_ManyChunks(t *testing.T) {
	// Exactly three full chunks starting at a boundary.
	var slices []Slice
	for s := range Slices(Size, 3*Size) {
		slices = append(slices, s)
	}

	if len(slices) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(slices))
	}
	for i, s := range slices {
		if s.Index != uint32(i+1) {
			t.Errorf("slice %d: Index = %d, want %d", i, s.Index, i+1)
		}
		if s.Offset != 0 || s.Length != Size {
			t.Errorf("slice %d: Offset/Length = %d/%d, want 0/%d", i, s.Offset, s.Length, Size)
		}
		if s.BufOffset != i*Size {
			t.Errorf("slice %d: BufOffset = %d, want %d", i, s.BufOffset, i*Size)
		}
	}
}

func TestSlices_ZeroLength(t *testing.T) {
	for s := range Slices(1234, 0) {
		t.Fatalf("zero-length range must yield nothing, got %+v", s)
	}
}

func TestSlices_EarlyStop(t *testing.T) {
	count := 0
	for range Slices(0, 5*Size) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("stopped after %d slices, want 2", count)
	}
}
