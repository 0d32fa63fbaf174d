package holdem

import (
	"fmt"
)

// HandBucket packs the per-street abstracted hand strength of one player:
//
//	preflop + flop*R + turn*R^2 + river*R^3
//
// A node on a given street only looks at the components of streets that
// have already been dealt.
type HandBucket int32

// PackBucket builds a HandBucket from per-street components with resolution r.
func PackBucket(r int, streets [NumBettingStreets]int) HandBucket {
	var h, scale int = 0, 1
	for _, b := range streets {
		if b < 0 || b >= r {
			panic(fmt.Errorf("bucket component %d out of range for resolution %d", b, r))
		}

		h += b * scale
		scale *= r
	}

	return HandBucket(h)
}

// Component returns the bucket index for a single street.
func (h HandBucket) Component(r int, s Street) int {
	v := int(h)
	for i := Street(0); i < s; i++ {
		v /= r
	}

	return v % r
}

// At returns the effective bucket observed by a node on street s. Terminal
// streets see the full River resolution.
func (h HandBucket) At(r int, s Street) HandBucket {
	if s > River {
		s = River
	}

	mod := 1
	for i := Street(0); i <= s; i++ {
		mod *= r
	}

	return h % HandBucket(mod)
}

// String formats the bucket as hex, one digit per street when r == 16.
func (h HandBucket) String() string {
	return fmt.Sprintf("%04X", int32(h))
}
