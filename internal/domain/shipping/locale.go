package shipping

import (
	"time"

	"golang.org/x/text/language"
)

// dateLayouts pairs each supported locale with its short date layout.
// The first entry is the fallback.
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.MustParse("en-IN"), "2/1/2006"},
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.Japanese, "2006/1/2"},
	{language.German, "2.1.2006"},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// DateFormatter renders calendar dates for one locale.
type DateFormatter struct {
	tag    language.Tag
	layout string
}

// NewDateFormatter picks the closest supported locale for an Accept-Language
// style string ("en-US", "ja-JP,ja;q=0.9"). Empty, malformed or unsupported
// input falls back to en-IN.
func NewDateFormatter(locale string) DateFormatter {
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return DateFormatter{tag: dateLayouts[0].tag, layout: dateLayouts[0].layout}
	}
	_, idx, conf := dateMatcher.Match(tags...)
	if conf == language.No {
		idx = 0
	}
	return DateFormatter{tag: dateLayouts[idx].tag, layout: dateLayouts[idx].layout}
}

// Locale returns the supported locale the formatter settled on.
func (f DateFormatter) Locale() string {
	if f.layout == "" {
		return dateLayouts[0].tag.String()
	}
	return f.tag.String()
}

// Format renders t as a short date.
func (f DateFormatter) Format(t time.Time) string {
	layout := f.layout
	if layout == "" {
		layout = dateLayouts[0].layout
	}
	return t.Format(layout)
}
