// Copyright (c) The UnRez Authors
// Licensed under the MIT license

package main

import "fmt"

const sizePrefixes = "kMGTPEZY"

// sprintSize formats a byte count compactly with SI prefixes: at most
// three significant digits, rounding half to even unless discarded digits
// force rounding up. When bytes is set the exact count is printed instead.
func sprintSize(size int64, bytes bool) string {
	if bytes {
		return fmt.Sprintf("%d B", size)
	}
	if size <= 0 {
		return "0 B"
	}
	if size < 1000 {
		return fmt.Sprintf("%d B", size)
	}
	hasRem := false
	var rem int64
	var pfx int
	for pfx = 0; ; pfx++ {
		rem = size % 1000
		size /= 1000
		if size < 1000 || pfx+1 == len(sizePrefixes) {
			break
		}
		if rem > 0 {
			hasRem = true
		}
	}
	n := size
	if n < 10 {
		m := rem / 10
		rem %= 10
		if rem > 5 || rem == 5 && (m&1 != 0 || hasRem) {
			m++
			if m == 100 {
				m = 0
				n++
				if n == 10 {
					return fmt.Sprintf("10.0 %cB", sizePrefixes[pfx])
				}
			}
		}
		return fmt.Sprintf("%d.%02d %cB", n, m, sizePrefixes[pfx])
	}
	if n < 100 {
		m := rem / 100
		rem %= 100
		if rem > 50 || rem == 50 && (m&1 != 0 || hasRem) {
			m++
			if m == 10 {
				m = 0
				n++
				if n == 100 {
					return fmt.Sprintf("100 %cB", sizePrefixes[pfx])
				}
			}
		}
		return fmt.Sprintf("%d.%d %cB", n, m, sizePrefixes[pfx])
	}
	if rem > 500 || rem == 500 && (n&1 != 0 || hasRem) {
		n++
	}
	if n >= 1000 && pfx+1 < len(sizePrefixes) {
		return fmt.Sprintf("1.00 %cB", sizePrefixes[pfx+1])
	}
	return fmt.Sprintf("%d %cB", n, sizePrefixes[pfx])
}
