package domain

// Bitmap is a fixed-capacity bit vector tracking which claim slots of a
// campaign have been paid. Bits only ever transition from unset to set.
type Bitmap []byte

// NewBitmap returns a bitmap with capacity for n bits, all unset.
func NewBitmap(n uint32) Bitmap {
	return make(Bitmap, (n+7)/8)
}

// Get reports whether bit i is set. Out-of-range indexes read as unset.
func (b Bitmap) Get(i uint32) bool {
	byteIdx := i / 8
	if int(byteIdx) >= len(b) {
		return false
	}
	return b[byteIdx]&(1<<(i%8)) != 0
}

// Set sets bit i. Out-of-range indexes are ignored; callers are expected to
// range-check against the campaign's leaf count first.
func (b Bitmap) Set(i uint32) {
	byteIdx := i / 8
	if int(byteIdx) >= len(b) {
		return
	}
	b[byteIdx] |= 1 << (i % 8)
}

// Clone returns an independent copy of the bitmap.
func (b Bitmap) Clone() Bitmap {
	return append(Bitmap(nil), b...)
}
