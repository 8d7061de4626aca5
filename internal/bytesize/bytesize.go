// Package bytesize parses and formats human-readable byte counts, so
// configuration can express store value limits and cache sizes as "4Ki"
// or "256Mi" instead of raw digits.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a byte count that unmarshals from strings like "1Gi",
// "500MB" or "4096". It implements encoding.TextUnmarshaler, which lets
// mapstructure decode it directly inside configuration structs.
//
// Units ending in "i" are binary (x1024), the rest are decimal (x1000).
// A bare number is taken as bytes.
type ByteSize uint64

const (
	B ByteSize = 1

	KB ByteSize = 1e3
	MB ByteSize = 1e6
	GB ByteSize = 1e9
	TB ByteSize = 1e12

	KiB ByteSize = 1 << 10
	MiB ByteSize = 1 << 20
	GiB ByteSize = 1 << 30
	TiB ByteSize = 1 << 40
)

var unitMultipliers = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB,
	"m": MB, "mb": MB,
	"g": GB, "gb": GB,
	"t": TB, "tb": TB,
	"ki": KiB, "kib": KiB,
	"mi": MiB, "mib": MiB,
	"gi": GiB, "gib": GiB,
	"ti": TiB, "tib": TiB,
}

// Parse converts a human-readable byte size into a ByteSize. The number
// may carry a fraction ("1.5Gi") and the unit is case-insensitive.
func Parse(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	// Split at the first character that cannot belong to the number.
	cut := len(trimmed)
	for i, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' {
			cut = i
			break
		}
	}

	numStr := trimmed[:cut]
	unitStr := strings.TrimSpace(trimmed[cut:])
	if numStr == "" {
		return 0, fmt.Errorf("invalid byte size %q: missing number", s)
	}

	multiplier, ok := unitMultipliers[strings.ToLower(unitStr)]
	if !ok {
		return 0, fmt.Errorf("invalid byte size %q: unknown unit %q", s, unitStr)
	}

	if strings.Contains(numStr, ".") {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		return ByteSize(num * float64(multiplier)), nil
	}

	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	return ByteSize(num) * multiplier, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText implements encoding.TextMarshaler. The output is exact and
// parses back to the same value: multiples of a binary unit use that
// unit, everything else is emitted as plain bytes.
func (b ByteSize) MarshalText() ([]byte, error) {
	switch {
	case b >= TiB && b%TiB == 0:
		return fmt.Appendf(nil, "%dTi", b/TiB), nil
	case b >= GiB && b%GiB == 0:
		return fmt.Appendf(nil, "%dGi", b/GiB), nil
	case b >= MiB && b%MiB == 0:
		return fmt.Appendf(nil, "%dMi", b/MiB), nil
	case b >= KiB && b%KiB == 0:
		return fmt.Appendf(nil, "%dKi", b/KiB), nil
	default:
		return fmt.Appendf(nil, "%d", uint64(b)), nil
	}
}

// String renders the size for humans, scaled to the largest binary unit.
// Unlike MarshalText the result is rounded.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}

// Uint64 returns the size as a uint64.
func (b ByteSize) Uint64() uint64 {
	return uint64(b)
}

// Int64 returns the size as an int64. Overflows for sizes past 8EiB.
func (b ByteSize) Int64() int64 {
	return int64(b)
}

// Int returns the size as an int, for APIs that take plain int bounds.
func (b ByteSize) Int() int {
	return int(b)
}
