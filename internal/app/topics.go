package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"trustwatch/internal/domain"
)

// TopicImporter loads a topic dictionary file and replaces the stored set
// wholesale. The file is a flat JSON object of key to display name, e.g.
// {"customer_service": "Customer Service"}.
type TopicImporter struct {
	repo domain.BrandRepository
	log  zerolog.Logger
}

func NewTopicImporter(repo domain.BrandRepository, log zerolog.Logger) *TopicImporter {
	return &TopicImporter{repo: repo, log: log}
}

func (ti *TopicImporter) ImportFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read topics file: %w", err)
	}

	var dict map[string]string
	if err := json.Unmarshal(raw, &dict); err != nil {
		return 0, fmt.Errorf("parse topics file: %w", err)
	}

	topics := make([]domain.Topic, 0, len(dict))
	for key, name := range dict {
		key = strings.ToLower(strings.TrimSpace(key))
		name = strings.TrimSpace(name)
		if key == "" || name == "" {
			continue
		}
		topics = append(topics, domain.Topic{
			Key:         key,
			DisplayName: name,
			SearchTerms: deriveSearchTerms(key, name),
		})
	}
	// file iteration order is random; keep inserts deterministic
	sort.Slice(topics, func(i, j int) bool { return topics[i].Key < topics[j].Key })

	if err := ti.repo.ReplaceTopics(ctx, topics); err != nil {
		return 0, err
	}
	ti.log.Info().Int("topics", len(topics)).Str("file", path).Msg("topic dictionary replaced")
	return len(topics), nil
}

// deriveSearchTerms expands a topic into the phrases the theme scanner will
// look for: the key with underscores spaced out, the display name, and a
// naive plural or singular twin of the name.
func deriveSearchTerms(key, name string) []string {
	set := map[string]struct{}{}
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			set[term] = struct{}{}
		}
	}

	add(strings.ReplaceAll(key, "_", " "))
	add(name)
	lower := strings.ToLower(strings.TrimSpace(name))
	if strings.HasSuffix(lower, "s") && len(lower) > 3 {
		add(strings.TrimSuffix(lower, "s"))
	} else {
		add(lower + "s")
	}

	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
