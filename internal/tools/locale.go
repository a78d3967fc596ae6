package tools

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const msgInfoNotFound = "Information of type '%s' not found."

func init() {
	_ = message.SetString(language.Spanish, msgInfoNotFound, "Información de tipo '%s' no encontrada.")
}

// ResolveLocale picks the language used for tool output. An empty configured
// value falls back to the host's LC_ALL, LC_TIME and LANG, then English.
func ResolveLocale(configured string) language.Tag {
	candidates := []string{configured, os.Getenv("LC_ALL"), os.Getenv("LC_TIME"), os.Getenv("LANG")}
	for _, c := range candidates {
		if tag, ok := parseLocale(c); ok {
			return tag
		}
	}
	return language.English
}

// parseLocale accepts BCP 47 tags and POSIX locale names such as es_ES.UTF-8.
func parseLocale(s string) (language.Tag, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	base, _ := tag.Base()
	return language.Make(base.String()), true
}

func printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

type clockLayout struct {
	time string
	date string
}

var clockLayouts = map[string]clockLayout{
	"en": {time: "3:04:05 PM", date: "1/2/2006"},
	"es": {time: "15:04:05", date: "2/1/2006"},
	"fr": {time: "15:04:05", date: "02/01/2006"},
	"it": {time: "15:04:05", date: "2/1/2006"},
	"pt": {time: "15:04:05", date: "02/01/2006"},
	"de": {time: "15:04:05", date: "2.1.2006"},
}

func layoutFor(tag language.Tag) clockLayout {
	base, _ := tag.Base()
	if l, ok := clockLayouts[base.String()]; ok {
		return l
	}
	return clockLayout{time: "15:04:05", date: "2006-01-02"}
}
