// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

package query

import "strings"

var soundexCodes = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex returns the phonetic code of a name: the first letter followed by
// three digits. Names with no Latin letters (or empty names) code as "Z000",
// matching the Gramps convention for unset surnames.
func Soundex(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper); i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	if len(letters) == 0 {
		return "Z000"
	}

	code := []byte{letters[0]}
	prev := soundexCodes[letters[0]]
	for _, ch := range letters[1:] {
		digit := soundexCodes[ch]
		switch {
		case digit == 0:
			// Vowels and H/W/Y: H and W do not reset the previous code,
			// vowels do.
			if ch != 'H' && ch != 'W' {
				prev = 0
			}
		case digit != prev:
			code = append(code, digit)
			prev = digit
			if len(code) == 4 {
				return string(code)
			}
		}
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}
