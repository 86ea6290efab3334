// Package walkexpr evaluates the little expression language WalkSlicer
// uses to compute a span from nearby bytes: free variables b[i], h[i],
// w[i] and d[i] read an 8/16/32/64-bit little-endian integer at byte
// offset i relative to the walk pointer.
package walkexpr

import (
	"encoding/binary"
	"fmt"

	"nd/internal/mapper"
)

var varNames = []string{"b", "h", "w", "d"}
var arrayVars = map[string]bool{"b": true, "h": true, "w": true, "d": true}

// Expr is a compiled walk expression.
type Expr struct {
	e *mapper.Expr
}

// Parse compiles expr, which may reference b[i]/h[i]/w[i]/d[i].
func Parse(expr string) (*Expr, error) {
	e, err := mapper.Parse(expr, varNames, arrayVars)
	if err != nil {
		return nil, fmt.Errorf("walkexpr: %w", err)
	}
	return &Expr{e: e}, nil
}

// Eval evaluates the expression against window, treating index 0 as the
// byte at the current walk pointer. Reads past the end of window (or
// with a negative resulting index) are an error: the caller is expected
// to have requested enough lookahead first.
func (e *Expr) Eval(window []byte) (int64, error) {
	return e.e.Eval(mapper.ResolverFunc(func(name string, index int64) (int64, error) {
		width := map[string]int{"b": 1, "h": 2, "w": 4, "d": 8}[name]
		if index < 0 || index+int64(width) > int64(len(window)) {
			return 0, fmt.Errorf("walkexpr: %s[%d] reads outside the available window (len %d)", name, index, len(window))
		}
		buf := window[index : index+int64(width)]
		switch width {
		case 1:
			return int64(int8(buf[0])), nil
		case 2:
			return int64(int16(binary.LittleEndian.Uint16(buf))), nil
		case 4:
			return int64(int32(binary.LittleEndian.Uint32(buf))), nil
		case 8:
			return int64(binary.LittleEndian.Uint64(buf)), nil
		}
		return 0, fmt.Errorf("walkexpr: unknown variable %q", name)
	}))
}
