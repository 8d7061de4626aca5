// Package chunk defines constants and helpers for chunk-level file segmentation.
//
// Files are split into fixed-size chunks, each stored as one value in the
// key-value store. Writes are read-modify-write per chunk: the affected chunk
// is fetched, the write window patched in, and the whole chunk stored back.
// A chunk with no stored value is sparse and reads back as zeros.
//
// Size is an interop constant. Every implementation sharing a store must use
// the same value; changing it breaks files written with the old layout.
package chunk

const (
	// Size is the size of a chunk in bytes. It must stay safely below the
	// store's maximum value size.
	Size = 2048
)

// IndexForOffset calculates the chunk index holding a file offset.
//
// Example:
//
//	IndexForOffset(0)    → 0
//	IndexForOffset(Size) → 1
func IndexForOffset(offset uint64) uint32 {
	return uint32(offset / Size)
}

// OffsetInChunk calculates the offset within the owning chunk.
func OffsetInChunk(offset uint64) uint32 {
	return uint32(offset % Size)
}

// Count returns the number of chunks needed for a file of the given size,
// i.e. ceil(size/Size). A zero-size file has zero chunks.
func Count(size uint64) uint32 {
	return uint32((size + Size - 1) / Size)
}

// Range calculates the inclusive range of chunk indices a byte range spans.
//
// Example:
//
//	Range(0, 10)     → (0, 0)
//	Range(0, Size+1) → (0, 1)
func Range(offset, length uint64) (startChunk, endChunk uint32) {
	if length == 0 {
		return IndexForOffset(offset), IndexForOffset(offset)
	}
	return IndexForOffset(offset), IndexForOffset(offset + length - 1)
}

// Bounds returns the file-level byte range covered by a chunk index.
// The end offset is exclusive.
func Bounds(index uint32) (start, end uint64) {
	start = uint64(index) * Size
	return start, start + Size
}

// clip returns the portion of a file-level range that falls within the given
// chunk, as an in-chunk offset and length. Both are 0 when there is no overlap.
func clip(index uint32, fileOffset, length uint64) (offsetInChunk, clippedLength uint32) {
	chunkStart, chunkEnd := Bounds(index)

	if fileOffset+length <= chunkStart || fileOffset >= chunkEnd {
		return 0, 0
	}

	overlapStart := max(fileOffset, chunkStart)
	overlapEnd := min(fileOffset+length, chunkEnd)
	return uint32(overlapStart - chunkStart), uint32(overlapEnd - overlapStart)
}

// Slice is the portion of a byte range that falls within a single chunk.
type Slice struct {
	// Index is the chunk this slice belongs to.
	Index uint32

	// Offset is the byte offset within the chunk.
	Offset uint32

	// Length is the slice length in bytes (never exceeds Size).
	Length uint32

	// BufOffset is the offset into the caller's buffer where this slice's
	// bytes live.
	BufOffset int
}

// Slices iterates over the per-chunk slices of a file-level byte range, in
// ascending chunk order. A zero-length range yields nothing.
//
// Usage:
//
//	for s := range chunk.Slices(offset, uint64(len(buf))) {
//	    patch(s.Index, s.Offset, buf[s.BufOffset:s.BufOffset+int(s.Length)])
//	}
func Slices(fileOffset, length uint64) func(yield func(Slice) bool) {
	return func(yield func(Slice) bool) {
		if length == 0 {
			return
		}

		startChunk, endChunk := Range(fileOffset, length)
		bufOffset := 0

		for index := startChunk; index <= endChunk; index++ {
			offsetInChunk, sliceLen := clip(index, fileOffset+uint64(bufOffset), length-uint64(bufOffset))
			if sliceLen == 0 {
				continue
			}

			s := Slice{
				Index:     index,
				Offset:    offsetInChunk,
				Length:    sliceLen,
				BufOffset: bufOffset,
			}
			if !yield(s) {
				return
			}
			bufOffset += int(sliceLen)
		}
	}
}
