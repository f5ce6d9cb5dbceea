package shifts

import (
	"golang.org/x/text/language"
)

// Month is a month number with its display name in the active locale.
type Month struct {
	Number int
	Name   string
}

var monthNames = map[language.Tag][12]string{
	language.English: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	language.Russian: {
		"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
	},
}

// supported lists the month tables in matcher preference order; the first is the fallback.
var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

// MatchLocale resolves a BCP 47 tag or Accept-Language style list ("ru-RU", "en")
// to one of the supported locales. Unknown or malformed input falls back to English.
func MatchLocale(tag string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(prefs) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

func monthsFor(tag language.Tag) [12]string {
	if names, ok := monthNames[tag]; ok {
		return names
	}
	return monthNames[language.English]
}
