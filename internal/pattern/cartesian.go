package pattern

import (
	"fmt"
	"math/bits"
	"strings"
)

// productCount returns the size of the cartesian product over lists with the
// given sizes. ok is false when the size does not fit in a uint64.
func productCount(sizes []int) (n uint64, ok bool) {
	if len(sizes) == 0 {
		return 0, true
	}
	n = 1
	for _, size := range sizes {
		hi, lo := bits.Mul64(n, uint64(size))
		if hi != 0 {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// checkLimit fails with ErrResourceExhausted when the product over sizes
// exceeds limit. A zero limit disables the check.
func checkLimit(sizes []int, limit uint64) (uint64, error) {
	n, ok := productCount(sizes)
	if !ok {
		return 0, fmt.Errorf("%w: product overflows uint64 (limit %d)", ErrResourceExhausted, limit)
	}
	if limit > 0 && n > limit {
		return 0, fmt.Errorf("%w: %d candidates (limit %d)", ErrResourceExhausted, n, limit)
	}
	return n, nil
}

// product concatenates one member of every list, in list order, for every
// combination. The last list varies fastest:
//
//	product([["a","b"], ["1","2"]]) = ["a1", "a2", "b1", "b2"]
//
// Nothing is allocated when the result would exceed limit.
func product(lists [][]string, limit uint64) ([]string, error) {
	sizes := make([]int, len(lists))
	for i, list := range lists {
		sizes[i] = len(list)
	}
	n, err := checkLimit(sizes, limit)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []string{}, nil
	}

	result := make([]string, 0, n)
	index := make([]int, len(lists))
	var b strings.Builder
	for {
		b.Reset()
		for i, list := range lists {
			b.WriteString(list[index[i]])
		}
		result = append(result, b.String())

		// advance the odometer from the right
		i := len(lists) - 1
		for ; i >= 0; i-- {
			index[i]++
			if index[i] < len(lists[i]) {
				break
			}
			index[i] = 0
		}
		if i < 0 {
			return result, nil
		}
	}
}
