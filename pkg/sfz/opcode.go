package sfz

import (
	"strconv"
	"strings"
)

// sampleKey is the one opcode whose value runs to the end of the line, since
// sample paths may contain spaces.
const sampleKey = "sample"

// Opcode is a single key=value setting on a directive line.
type Opcode struct {
	Key   string
	Value string
}

// Tokenize splits the text after a directive tag into opcodes. Each
// whitespace-separated token is split once on '='; a token without '='
// yields an empty value. The sample opcode takes the rest of the line and
// ends tokenization.
func Tokenize(rest string) []Opcode {
	var ops []Opcode
	i := 0
	for i < len(rest) {
		for i < len(rest) && isSpace(rest[i]) {
			i++
		}
		if i >= len(rest) {
			break
		}
		start := i
		for i < len(rest) && !isSpace(rest[i]) {
			i++
		}

		key, value, found := strings.Cut(rest[start:i], "=")
		if key == sampleKey {
			if found {
				value = strings.TrimSpace(rest[start+len(sampleKey)+1:])
			}
			ops = append(ops, Opcode{Key: key, Value: value})
			break
		}
		ops = append(ops, Opcode{Key: key, Value: value})
	}
	return ops
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\v', '\f', '\r', '\n':
		return true
	}
	return false
}

// Number is a parsed opcode value. Defaulted is set when the text could not
// be parsed and Value holds the fallback instead.
type Number[T int | float64] struct {
	Value     T
	Defaulted bool
}

// ParseInt parses a signed integer, falling back to 0.
func ParseInt(s string) Number[int] {
	v, err := strconv.Atoi(s)
	if err != nil {
		return Number[int]{Defaulted: true}
	}
	return Number[int]{Value: v}
}

// ParseMIDI parses a note number or velocity in [0, 127], falling back to 0.
func ParseMIDI(s string) Number[int] {
	v, err := strconv.ParseUint(s, 10, 7)
	if err != nil {
		return Number[int]{Defaulted: true}
	}
	return Number[int]{Value: int(v)}
}

// ParseFloat parses a floating point value, falling back to 0.
func ParseFloat(s string) Number[float64] {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number[float64]{Defaulted: true}
	}
	return Number[float64]{Value: v}
}
