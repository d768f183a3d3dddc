package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/plaum/appointment-backend/internal/models"
)

// Confidence constants for the rule-based fallbacks. The values are fixed
// scores, not derived: full vs partial extraction, and parse success vs
// "cannot attempt" for normalization.
const (
	fallbackFullConfidence    = 0.7
	fallbackPartialConfidence = 0.5
	fallbackParsedConfidence  = 0.65
	fallbackNoParseConfidence = 0.4
)

// departmentKeywords is scanned in order; the first keyword present in the
// text wins. Matching is word-bounded so that e.g. "appointment" does not
// trigger the "ent" keyword.
var departmentKeywords = []string{
	"dentist",
	"dentistry",
	"dental",
	"cardiology",
	"cardiologist",
	"dermatology",
	"dermatologist",
	"orthopedics",
	"orthopaedics",
	"physiotherapy",
	"pediatrician",
	"paediatrician",
	"pediatrics",
	"general physician",
	"physician",
	"gp",
	"ent",
}

var departmentKeywordRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(departmentKeywords))
	for i, kw := range departmentKeywords {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return res
}()

var (
	time12Re     = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	time24Re     = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	relativeRe   = regexp.MustCompile(`(?i)\b(today|tomorrow|day after tomorrow|next\s+[a-z]+|this\s+[a-z]+)\b`)
	ordinalDayRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+[a-z]+\b`)
)

// FallbackExtractEntities is the rule-based replacement for the AI entity
// extractor. It never fails; missing information simply yields nil fields.
func FallbackExtractEntities(rawText string) models.EntityExtraction {
	entities := models.Entities{
		DatePhrase: findDatePhrase(rawText),
		TimePhrase: findTimePhrase(rawText),
		Department: findDepartment(rawText),
	}
	confidence := fallbackPartialConfidence
	if entities.DatePhrase != nil && entities.TimePhrase != nil && entities.Department != nil {
		confidence = fallbackFullConfidence
	}
	return models.EntityExtraction{Entities: entities, Confidence: confidence}
}

func findDepartment(rawText string) *string {
	for i, re := range departmentKeywordRes {
		if re.MatchString(rawText) {
			kw := departmentKeywords[i]
			return &kw
		}
	}
	return nil
}

// findTimePhrase tries the 12-hour pattern first; when both forms could
// match, the 12-hour interpretation wins.
func findTimePhrase(rawText string) *string {
	if m := time12Re.FindString(rawText); m != "" {
		return &m
	}
	if m := time24Re.FindString(rawText); m != "" {
		return &m
	}
	return nil
}

func findDatePhrase(rawText string) *string {
	if m := relativeRe.FindString(rawText); m != "" {
		return &m
	}
	if m := ordinalDayRe.FindString(rawText); m != "" {
		return &m
	}
	return nil
}

// FallbackNormalize is the rule-based replacement for the AI normalizer. It
// joins the date and time phrases, parses them relative to local midnight of
// referenceDate in loc, and formats the result as observed in loc.
func FallbackNormalize(entities models.Entities, referenceDate string, loc *time.Location) models.Normalization {
	tz := loc.String()
	noParse := models.Normalization{
		Normalized: models.Normalized{TZ: &tz},
		Confidence: fallbackNoParseConfidence,
	}

	var parts []string
	if entities.DatePhrase != nil {
		parts = append(parts, *entities.DatePhrase)
	}
	if entities.TimePhrase != nil {
		parts = append(parts, *entities.TimePhrase)
	}
	combined := strings.Join(parts, " ")
	if combined == "" {
		return noParse
	}

	ref, err := time.ParseInLocation("2006-01-02", referenceDate, loc)
	if err != nil {
		return noParse
	}
	resolved, ok := resolvePhrase(combined, ref)
	if !ok {
		return noParse
	}

	date := resolved.Format("2006-01-02")
	clock := resolved.Format("15:04")
	return models.Normalization{
		Normalized: models.Normalized{Date: &date, Time: &clock, TZ: &tz},
		Confidence: fallbackParsedConfidence,
	}
}
