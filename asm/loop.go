package asm

// maxWhileIterations is the safety cap on `!while` iterations described in
// §4.8, guarding against a condition that never becomes false.
const maxWhileIterations = 100000

// forRange produces the inclusive sequence of values a `!for v, a, b` loop
// binds v to: ascending when a <= b, descending (step -1) when a > b.
func forRange(a, b int32) []int32 {
	var out []int32
	if a <= b {
		for v := a; v <= b; v++ {
			out = append(out, v)
		}
		return out
	}
	for v := a; v >= b; v-- {
		out = append(out, v)
	}
	return out
}
