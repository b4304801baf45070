package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// locatorFolder strips diacritics: decompose, drop combining marks, recompose.
var locatorFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeLocator canonicalizes a free-form site/region identifier so that
// "Amazônia", " amazonia " and "AMAZONIA" all address the same region and
// cache fingerprint space.
func NormalizeLocator(locator string) string {
	folded, _, err := transform.String(locatorFolder, locator)
	if err != nil {
		folded = locator
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.Fields(folded), " ")
}
