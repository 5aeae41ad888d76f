// Package cipher implements the Playfair digraph substitution cipher.
// It offers no security, it exists to give the simulator a realistic payload.
package cipher

import (
	"errors"
	"strings"
	"unicode"
)

// alphabet omits J, which is folded into I
const alphabet = "ABCDEFGHIKLMNOPQRSTUVWXYZ"

var ErrEmptyKey = errors.New("key must contain at least one letter")

type Matrix [5][5]rune

type position struct {
	row, col int
}

// KeyMatrix builds the 5x5 key square: the unique letters of key followed by the rest of the alphabet.
func KeyMatrix(key string) Matrix {
	key = strings.ReplaceAll(strings.ToUpper(key), "J", "I")
	seen := make(map[rune]bool, 25)
	letters := make([]rune, 0, 25)
	for _, c := range key + alphabet {
		if !strings.ContainsRune(alphabet, c) || seen[c] {
			continue
		}
		seen[c] = true
		letters = append(letters, c)
	}
	var m Matrix
	for i, c := range letters {
		m[i/5][i%5] = c
	}
	return m
}

func (m Matrix) Rows() []string {
	rows := make([]string, 5)
	for i, row := range m {
		rows[i] = string(row[:])
	}
	return rows
}

func (m Matrix) index() map[rune]position {
	idx := make(map[rune]position, 25)
	for r, row := range m {
		for c, ch := range row {
			idx[ch] = position{r, c}
		}
	}
	return idx
}

// Digraphs normalizes text into letter pairs, separating doubled letters and padding an odd tail with X.
func Digraphs(text string) []string {
	var sb strings.Builder
	for _, c := range strings.ToUpper(text) {
		if c > unicode.MaxASCII || !unicode.IsLetter(c) {
			continue
		}
		if c == 'J' {
			c = 'I'
		}
		sb.WriteRune(c)
	}
	t := []rune(sb.String())
	pairs := make([]string, 0, len(t)/2+1)
	for i := 0; i < len(t); {
		if i == len(t)-1 || t[i] == t[i+1] {
			pairs = append(pairs, string([]rune{t[i], 'X'}))
			i++
		} else {
			pairs = append(pairs, string(t[i:i+2]))
			i += 2
		}
	}
	return pairs
}

func hasLetter(key string) bool {
	return strings.ContainsFunc(strings.ToUpper(key), func(r rune) bool {
		return strings.ContainsRune(alphabet+"J", r)
	})
}

func transform(m Matrix, a, b rune, shift int) string {
	idx := m.index()
	pa, pb := idx[a], idx[b]
	wrap := func(x int) int {
		return (x + shift + 5) % 5
	}
	switch {
	case pa.row == pb.row:
		return string([]rune{m[pa.row][wrap(pa.col)], m[pb.row][wrap(pb.col)]})
	case pa.col == pb.col:
		return string([]rune{m[wrap(pa.row)][pa.col], m[wrap(pb.row)][pb.col]})
	default:
		return string([]rune{m[pa.row][pb.col], m[pb.row][pa.col]})
	}
}

func Encrypt(plaintext, key string) (string, error) {
	if !hasLetter(key) {
		return "", ErrEmptyKey
	}
	m := KeyMatrix(key)
	var sb strings.Builder
	for _, pair := range Digraphs(plaintext) {
		r := []rune(pair)
		sb.WriteString(transform(m, r[0], r[1], 1))
	}
	return sb.String(), nil
}

// Decrypt reverses Encrypt. Padding letters inserted during encryption are kept, and a trailing
// unpaired letter is dropped.
func Decrypt(ciphertext, key string) (string, error) {
	if !hasLetter(key) {
		return "", ErrEmptyKey
	}
	m := KeyMatrix(key)
	idx := m.index()
	r := make([]rune, 0, len(ciphertext))
	for _, c := range strings.ToUpper(ciphertext) {
		if c == 'J' {
			c = 'I'
		}
		if _, ok := idx[c]; ok {
			r = append(r, c)
		}
	}
	var sb strings.Builder
	for i := 0; i+1 < len(r); i += 2 {
		sb.WriteString(transform(m, r[i], r[i+1], -1))
	}
	return sb.String(), nil
}

// Cells returns the matrix as single letter strings, row by row.
func (m Matrix) Cells() [][]string {
	cells := make([][]string, 5)
	for i, row := range m {
		cells[i] = make([]string, 5)
		for j, c := range row {
			cells[i][j] = string(c)
		}
	}
	return cells
}
