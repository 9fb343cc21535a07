// Package common holds the primitive helpers shared by instruction
// implementations.
package common

import "math/rand/v2"

// RelationTest reports whether "lhs op rhs" holds. Supported operators are
// =, <, >, <=, >= and !=; an empty operator is treated as =. Any other
// operator yields false.
func RelationTest(lhs, rhs float64, op string) bool {
	switch op {
	case "=", "":
		return lhs == rhs
	case "<":
		return lhs < rhs
	case ">":
		return lhs > rhs
	case "<=":
		return lhs <= rhs
	case ">=":
		return lhs >= rhs
	case "!=":
		return lhs != rhs
	default:
		return false
	}
}

// StringRelationTest compares two strings with = (or empty) and !=.
// Ordering operators are not defined on text and yield false.
func StringRelationTest(lhs, rhs, op string) bool {
	switch op {
	case "=", "":
		return lhs == rhs
	case "!=":
		return lhs != rhs
	default:
		return false
	}
}

// LogicalNegation returns !b.
func LogicalNegation(b bool) bool {
	return !b
}

// NewRand returns a deterministic generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Random returns an integer in the closed interval [0, max]. Random(r, 0) is
// always 0. A nil generator uses the global source.
func Random(r *rand.Rand, max uint64) uint64 {
	if max == 0 {
		return 0
	}
	if max == ^uint64(0) {
		if r == nil {
			return rand.Uint64()
		}
		return r.Uint64()
	}
	if r == nil {
		return rand.Uint64N(max + 1)
	}
	return r.Uint64N(max + 1)
}

// ModifyNumber applies an assignment operator: =, +, -, * or /. It reports
// false, leaving cur unchanged, for an unknown operator or a division by
// zero.
func ModifyNumber(cur float64, op string, v float64) (float64, bool) {
	switch op {
	case "=", "":
		return v, true
	case "+":
		return cur + v, true
	case "-":
		return cur - v, true
	case "*":
		return cur * v, true
	case "/":
		if v == 0 {
			return cur, false
		}
		return cur / v, true
	default:
		return cur, false
	}
}

// ModifyText applies = (replace) or + (append) to a string.
func ModifyText(cur, op, v string) (string, bool) {
	switch op {
	case "=", "":
		return v, true
	case "+":
		return cur + v, true
	default:
		return cur, false
	}
}
