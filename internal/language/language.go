// Package language normalizes user-supplied language input to the
// three-letter ISO 639-2/B codes the subtitle catalog expects.
package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// bibliographic maps ISO 639-2/T (terminology) codes to the 639-2/B
// (bibliographic) variants the catalog uses where the two differ.
var bibliographic = map[string]string{
	"bod": "tib",
	"ces": "cze",
	"cym": "wel",
	"deu": "ger",
	"ell": "gre",
	"eus": "baq",
	"fas": "per",
	"fra": "fre",
	"hye": "arm",
	"isl": "ice",
	"kat": "geo",
	"mkd": "mac",
	"mri": "mao",
	"msa": "may",
	"mya": "bur",
	"nld": "dut",
	"ron": "rum",
	"slk": "slo",
	"sqi": "alb",
	"zho": "chi",
}

// bCodes is the reverse set, so already-bibliographic input passes through.
var bCodes = func() map[string]bool {
	set := make(map[string]bool, len(bibliographic))
	for _, b := range bibliographic {
		set[b] = true
	}
	return set
}()

// Normalize resolves input like "en", "en-US", "eng" or "ger" to the
// catalog's ISO 639-2/B code. Unrecognized input is an error so it surfaces
// before any network call.
func Normalize(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return "", fmt.Errorf("empty language code")
	}
	if bCodes[trimmed] {
		return trimmed, nil
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("unrecognized language %q: %w", input, err)
	}
	base, _ := tag.Base()
	code := base.ISO3()
	if code == "" {
		return "", fmt.Errorf("language %q has no ISO 639-2 code", input)
	}
	if b, ok := bibliographic[code]; ok {
		code = b
	}
	return code, nil
}
