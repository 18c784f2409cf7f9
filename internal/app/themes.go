package app

import (
	"regexp"
	"sort"
	"strings"

	"trustwatch/internal/domain"
)

const (
	// themeCandidates is ranked first, then cut to themeKeep, so a
	// downstream re-sort of the published list stays stable.
	themeCandidates = 15
	themeKeep       = 10
)

type themePattern struct {
	topic string
	re    *regexp.Regexp
}

// ThemeEngine matches review text against the topic dictionary. Patterns are
// compiled once per dictionary load; matching is whole-word, so a term "car"
// never matches inside "care".
type ThemeEngine struct {
	patterns []themePattern
}

func NewThemeEngine(topics []domain.Topic) *ThemeEngine {
	ps := make([]themePattern, 0, len(topics))
	for _, t := range topics {
		alts := make([]string, 0, len(t.SearchTerms))
		for _, term := range t.SearchTerms {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			alts = append(alts, regexp.QuoteMeta(term))
		}
		if len(alts) == 0 {
			continue
		}
		re := regexp.MustCompile(`(^|[^a-z])(` + strings.Join(alts, "|") + `)([^a-z]|$)`)
		ps = append(ps, themePattern{topic: t.DisplayName, re: re})
	}
	return &ThemeEngine{patterns: ps}
}

// workingText picks the translated variant when present, else the original,
// lower-cased. Reviews without text contribute nothing.
func workingText(rv domain.Review) string {
	if rv.TextTranslated != nil && *rv.TextTranslated != "" {
		return strings.ToLower(*rv.TextTranslated)
	}
	if rv.Text != nil {
		return strings.ToLower(*rv.Text)
	}
	return ""
}

// Extract ranks topics per sentiment bucket by the number of distinct
// reviews mentioning them. Each review's text is normalized exactly once
// and shared across all three buckets: one scan over the week's reviews.
func (e *ThemeEngine) Extract(reviews []domain.Review) map[domain.Sentiment][]domain.ThemeCount {
	type bucketTopic struct {
		s     domain.Sentiment
		topic string
	}
	counts := make(map[bucketTopic]int)

	for _, rv := range reviews {
		text := workingText(rv)
		if text == "" {
			continue
		}
		s := domain.SentimentOf(rv.Rating)
		for _, p := range e.patterns {
			if p.re.MatchString(text) {
				counts[bucketTopic{s, p.topic}]++
			}
		}
	}

	out := make(map[domain.Sentiment][]domain.ThemeCount, 3)
	for _, s := range []domain.Sentiment{domain.Positive, domain.Neutral, domain.Negative} {
		list := make([]domain.ThemeCount, 0)
		for k, n := range counts {
			if k.s == s {
				list = append(list, domain.ThemeCount{Topic: k.topic, Count: n})
			}
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].Count != list[j].Count {
				return list[i].Count > list[j].Count
			}
			return list[i].Topic < list[j].Topic
		})
		if len(list) > themeCandidates {
			list = list[:themeCandidates]
		}
		if len(list) > themeKeep {
			list = list[:themeKeep]
		}
		out[s] = list
	}
	return out
}
