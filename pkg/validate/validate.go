// Package validate checks user-supplied language and country codes
// before they are baked into a search query.
package validate

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// supportedLangs is the set of language codes the search API indexes.
// Codes outside this table are well-formed BCP-47 but return no results.
var supportedLangs = map[string]bool{
	"am": true, "de": true, "ml": true, "sk": true, "ar": true, "el": true,
	"dv": true, "sl": true, "hy": true, "gu": true, "mr": true, "ckb": true,
	"eu": true, "ht": true, "ne": true, "es": true, "bn": true, "iw": true,
	"no": true, "sv": true, "bs": true, "hi": true, "or": true, "tl": true,
	"bg": true, "hi-latn": true, "pa": true, "ta": true, "my": true,
	"hu": true, "ps": true, "te": true, "hr": true, "is": true, "fa": true,
	"th": true, "ca": true, "in": true, "pl": true, "bo": true, "cs": true,
	"it": true, "pt": true, "zh-tw": true, "da": true, "ja": true,
	"ro": true, "tr": true, "nl": true, "kn": true, "ru": true, "uk": true,
	"en": true, "km": true, "sr": true, "ur": true, "et": true, "ko": true,
	"zh-cn": true, "ug": true, "fi": true, "lo": true, "sd": true,
	"vi": true, "fr": true, "lv": true, "si": true, "cy": true, "ka": true,
	"lt": true,
}

// LanguageCode validates a language filter code. It must be a
// well-formed BCP-47 tag and one of the languages the search API
// supports. The normalized lowercase code is returned.
func LanguageCode(code string) (string, error) {
	if _, err := language.Parse(code); err != nil {
		return "", fmt.Errorf("%s: is an invalid language code", code)
	}
	normalized := strings.ToLower(code)
	if !supportedLangs[normalized] {
		return "", fmt.Errorf("%s: is not supported by the search API, check the provider documentation for valid codes", code)
	}
	return normalized, nil
}

// CountryCode validates an ISO 3166-1 alpha-2 country code and returns
// its canonical uppercase form.
func CountryCode(code string) (string, error) {
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() {
		return "", fmt.Errorf("%s: is an invalid country code", code)
	}
	return region.String(), nil
}
