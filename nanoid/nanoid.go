package nanoid

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	defaultSize = 16

	lowercase    = "abcdefghijklmnopqrstuvwxyz"
	numLowercase = "0123456789" + lowercase
)

func getSize(l ...int) int {
	size := defaultSize
	if len(l) > 0 && l[0] > 0 {
		size = l[0]
	}
	return size
}

// Must generate optional length nanoid with the default URL-safe alphabet
func Must(l ...int) string {
	return gonanoid.Must(getSize(l...))
}

// Lower generate optional length nanoid of lowercase letters and digits
func Lower(l ...int) string {
	return gonanoid.MustGenerate(numLowercase, getSize(l...))
}

// PrefixedLower generate a lowercase nanoid with a readable prefix, e.g. "sub_k3j9..."
func PrefixedLower(prefix string, l ...int) string {
	return prefix + "_" + Lower(l...)
}
