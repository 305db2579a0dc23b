// Package units maps symbolic size units to byte multipliers.
package units

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/BryceDouglasJames/fileslicer/pkg/types"
)

const (
	Byte     uint64 = 1
	Kilobyte        = 1024 * Byte
	Megabyte        = 1024 * Kilobyte
)

// ErrUnknownUnit is returned by Parse for unrecognized unit codes.
var ErrUnknownUnit = errors.New("unknown unit")

// Resolve returns the byte multiplier for u.
// Unknown units resolve to the megabyte multiplier; use Parse to reject them up front.
func Resolve(u types.Unit) uint64 {
	switch u {
	case types.UnitBytes:
		return Byte
	case types.UnitKilobytes:
		return Kilobyte
	default:
		return Megabyte
	}
}

// Parse maps a unit code ("bytes", "KB", "MB") to a Unit.
// Matching is case-insensitive and accepts a few common spellings.
func Parse(code string) (types.Unit, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "bytes", "byte", "b":
		return types.UnitBytes, nil
	case "kb", "kib", "kilobytes":
		return types.UnitKilobytes, nil
	case "mb", "mib", "megabytes":
		return types.UnitMegabytes, nil
	}
	return types.UnitUnknown, fmt.Errorf("%w %q (want bytes, KB or MB)", ErrUnknownUnit, code)
}

// ParseLenient is Parse with the permissive megabyte fallback for unknown codes.
func ParseLenient(code string) types.Unit {
	u, err := Parse(code)
	if err != nil {
		return types.UnitMegabytes
	}
	return u
}

// Budget resolves a SizeSpec to a byte count.
// ok is false when value*multiplier overflows uint64.
func Budget(spec types.SizeSpec) (budget uint64, ok bool) {
	hi, lo := bits.Mul64(spec.Value, Resolve(spec.Unit))
	return lo, hi == 0
}
