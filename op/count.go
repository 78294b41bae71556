//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package op

// AndCount returns the triple count of num AND operations.
func AndCount(num, width int) Count {
	return Count{Bitwise: num}
}

// LessCount returns the triple count of num LESS operations of width
// bits: one AND for the bit comparisons and two ANDs for every
// prefix level except the last one.
func LessCount(num, width int) Count {
	return Count{Bitwise: num * max(1, 2*levels(width))}
}

// EqualCount returns the triple count of num EQUAL operations.
func EqualCount(num, width int) Count {
	return Count{Bitwise: num * levels(width)}
}

// MuxCount returns the triple count of num MUX operations. The
// bidirectional MUX has the same count.
func MuxCount(num, width int) Count {
	return Count{Bitwise: num}
}

// ArithToBoolCount returns the triple count of num arithmetic to
// boolean conversions.
func ArithToBoolCount(num, width int) Count {
	return Count{Bitwise: num * 2 * levels(width)}
}

// BoolToArithCount returns the triple count of num boolean to
// arithmetic conversions.
func BoolToArithCount(num, width int) Count {
	return Count{Arith: num * width}
}

// MultiplyCount returns the triple count of num multiplications.
func MultiplyCount(num, width int) Count {
	return Count{Arith: num}
}

// ArithLessCount returns the triple count of num arithmetic LESS
// operations.
func ArithLessCount(num, width int) Count {
	return ArithToBoolCount(2*num, width).
		Add(LessCount(num, width)).
		Add(BoolToArithCount(num, 1))
}

// ArithEqualCount returns the triple count of num arithmetic EQUAL
// operations.
func ArithEqualCount(num, width int) Count {
	return ArithToBoolCount(2*num, width).
		Add(EqualCount(num, width)).
		Add(BoolToArithCount(num, 1))
}

// ArithMuxCount returns the triple count of num arithmetic MUX
// operations.
func ArithMuxCount(num, width int) Count {
	return MultiplyCount(num, width)
}
