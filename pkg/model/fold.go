package model

import (
	"golang.org/x/text/cases"
)

// folder applies Unicode case folding for case-insensitive matching and ordering.
type folder struct {
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{caser: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.caser.String(s)
}

// key returns the form of s that is compared under cs.
func (f *folder) key(s string, cs CaseSensitivity) string {
	if cs == CaseSensitive {
		return s
	}
	return f.fold(s)
}
