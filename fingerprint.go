package gocas

import (
	"encoding/binary"
	"math"

	"github.com/dchest/siphash"
)

// fingerprint keys; fixed so that fingerprints are stable across processes
const (
	fpk0 = 0x676f636173000001
	fpk1 = 0x7472656568617368
)

// Fingerprint returns a 64-bit structural hash of e. Structurally equal
// trees (see Equal) have equal fingerprints; 1 and 1.0 hash differently.
func Fingerprint(e Expr) uint64 {
	return siphash.Hash(fpk0, fpk1, appendTree(nil, e))
}

// appendTree writes a pre-order encoding of e: one tag byte per node, then
// length-prefixed payloads. The arity of each tag is fixed, so the encoding
// is unambiguous.
func appendTree(buf []byte, e Expr) []byte {
	Walk(e, func(n Expr) bool {
		switch v := n.(type) {
		case *Num:
			if v.Exact() {
				buf = append(buf, 'q')
				buf = appendString(buf, v.rat.RatString())
			} else {
				f := v.f
				if f == 0 {
					f = 0 // -0.0 equals 0.0
				}
				buf = append(buf, 'f')
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
			}
		case *Name:
			buf = append(buf, 'n')
			buf = appendString(buf, v.id)
		case *BinOp:
			buf = append(buf, 'o', byte(v.op))
		case *Neg:
			buf = append(buf, 'm')
		case *Func:
			buf = append(buf, 'c')
			buf = appendString(buf, v.name)
		case *Transform:
			buf = append(buf, 't')
			buf = appendString(buf, v.name)
		}
		return true
	})
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
