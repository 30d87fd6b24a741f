// Package metrics derives cheap local text features for exchange telemetry.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features are size measures of one chat text.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures measures s. Words split on Unicode whitespace; an empty
// string has zero lines and a trailing newline opens a new one.
func CountFeatures(s string) Features {
	f := Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s != "" {
		f.Lines = 1 + strings.Count(s, "\n")
	}
	return f
}

// Sum totals the features of every text, counting lines per text.
func Sum(texts ...string) Features {
	var total Features
	for _, s := range texts {
		f := CountFeatures(s)
		total.Bytes += f.Bytes
		total.Runes += f.Runes
		total.Words += f.Words
		total.Lines += f.Lines
	}
	return total
}
