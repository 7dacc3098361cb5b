package analyzer

import (
	"strings"

	"golang.org/x/text/language"
)

// RecommendationID identifies a canned recommendation
type RecommendationID int

const (
	RecommendColorDistribution RecommendationID = iota
	RecommendVisualBalance
	RecommendIncreaseContrast
)

// SupportedLocales lists the catalog languages; the first entry is the fallback.
var SupportedLocales = []language.Tag{language.English, language.Turkish}

var localeMatcher = language.NewMatcher(SupportedLocales)

var catalog = map[language.Tag]map[RecommendationID]string{
	language.English: {
		RecommendColorDistribution: "Consider balancing your color distribution more evenly.",
		RecommendVisualBalance:     "Try distributing the visual elements more evenly.",
		RecommendIncreaseContrast:  "Increasing the contrast would make your design more effective.",
	},
	language.Turkish: {
		RecommendColorDistribution: "Renk dağılımını daha dengeli hale getirmeyi düşünebilirsiniz.",
		RecommendVisualBalance:     "Görsel elemanları daha dengeli yerleştirmeyi deneyebilirsiniz.",
		RecommendIncreaseContrast:  "Kontrastı artırarak tasarımınızı daha etkili hale getirebilirsiniz.",
	},
}

// Message returns the localized text for a recommendation
func Message(locale language.Tag, id RecommendationID) string {
	if msgs, ok := catalog[closestLocale(locale)]; ok {
		return msgs[id]
	}
	return catalog[language.English][id]
}

// GenerateRecommendations runs the threshold checks in fixed order:
// dominant color, visual balance, contrast. The result is never nil.
func GenerateRecommendations(color ColorAnalysis, composition CompositionAnalysis, opts Options) []string {
	recommendations := make([]string, 0, 3)

	if len(color.ColorBalance) > 0 && maxOf(color.ColorBalance) > opts.Thresholds.ColorDominance {
		recommendations = append(recommendations, Message(opts.Locale, RecommendColorDistribution))
	}

	if composition.Balance > opts.Thresholds.Balance {
		recommendations = append(recommendations, Message(opts.Locale, RecommendVisualBalance))
	}

	if composition.Contrast < opts.Thresholds.MinContrast {
		recommendations = append(recommendations, Message(opts.Locale, RecommendIncreaseContrast))
	}

	return recommendations
}

// MatchLocale picks a supported locale from preferences given in priority
// order. Each preference may be a single tag ("tr") or an Accept-Language
// header value ("tr-TR,en;q=0.8"). Unmatched or empty preferences are
// skipped; English is returned when nothing matches.
func MatchLocale(preferences ...string) language.Tag {
	for _, pref := range preferences {
		pref = strings.TrimSpace(pref)
		if pref == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := localeMatcher.Match(tags...)
		if conf != language.No {
			return SupportedLocales[idx]
		}
	}
	return SupportedLocales[0]
}

func closestLocale(tag language.Tag) language.Tag {
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return SupportedLocales[0]
	}
	return SupportedLocales[idx]
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
