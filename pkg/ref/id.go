package ref

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID produces a fresh random 128-bit identifier rendered as 32 hex
// characters. For feature and dataset kinds the first character is
// overwritten with 'f'/'d', trading one hex digit of entropy for O(1)
// kind recovery from the string alone. No collision detection is done;
// uuid.New panics if the entropy source fails rather than returning a
// degraded identifier.
func NewID(kind Kind) string {
	u := uuid.New()
	id := hex.EncodeToString(u[:])

	switch kind {
	case KindFeature:
		id = "f" + id[1:]
	case KindDataset:
		id = "d" + id[1:]
	}
	return id
}

// IsID reports whether s is a 32-character hex token with UUID v4 version
// and variant nibbles. Tagged identifiers produced by NewID pass, since
// tagging only rewrites the first character.
func IsID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	// Version nibble must be 4, variant nibble one of 8/9/a/b.
	if s[12] != '4' {
		return false
	}
	switch s[16] {
	case '8', '9', 'a', 'b':
		return true
	}
	return false
}
