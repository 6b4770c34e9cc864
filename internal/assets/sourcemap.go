package assets

import (
	"encoding/json"
	"strings"
)

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// sourceMap builds a version 3 source map for a chunk made by concatenating
// whole files. Every generated line maps to column 0 of its source line.
type sourceMap struct {
	sources  []string
	contents []string
	lines    []string
	prevSrc  int
	prevLine int
}

func newSourceMap() *sourceMap {
	return &sourceMap{}
}

// add records file as the next section of the chunk.
func (m *sourceMap) add(file, text string) {
	idx := len(m.sources)
	m.sources = append(m.sources, file)
	m.contents = append(m.contents, text)

	for line := range strings.Split(text, "\n") {
		m.lines = append(m.lines, vlq(0)+vlq(idx-m.prevSrc)+vlq(line-m.prevLine)+vlq(0))
		m.prevSrc = idx
		m.prevLine = line
	}
}

func (m *sourceMap) encode(file string) ([]byte, error) {
	return json.Marshal(struct {
		Version        int      `json:"version"`
		File           string   `json:"file"`
		Sources        []string `json:"sources"`
		SourcesContent []string `json:"sourcesContent"`
		Names          []string `json:"names"`
		Mappings       string   `json:"mappings"`
	}{
		Version:        3,
		File:           file,
		Sources:        m.sources,
		SourcesContent: m.contents,
		Names:          []string{},
		Mappings:       strings.Join(m.lines, ";"),
	})
}

// vlq encodes n as a base64 variable-length quantity, sign in the low bit.
func vlq(n int) string {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	var out []byte
	for {
		digit := v & 31
		v >>= 5
		if v > 0 {
			digit |= 32
		}
		out = append(out, base64Digits[digit])
		if v == 0 {
			return string(out)
		}
	}
}
