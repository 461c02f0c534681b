package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benwu408/ai-journal/internal/knowledge"
	"github.com/benwu408/ai-journal/internal/model"
)

const (
	minEntriesForClustering = 3
	keywordMatchThreshold   = 2
	minClusterSize          = 2
)

// TopicClusters groups entries into the fixed thematic catalog by keyword
// frequency. Fewer than 3 entries total is not enough signal and yields an
// empty result. Ties keep catalog order.
func TopicClusters(entries []model.Entry) []model.TopicCluster {
	if len(entries) < minEntriesForClustering {
		return nil
	}

	var clusters []model.TopicCluster
	for _, topic := range knowledge.Topics {
		var matched []model.Entry
		seen := make(map[string]bool)
		for _, entry := range entries {
			if seen[entry.ID] {
				continue
			}
			if keywordMatches(entry, topic.Keywords) < keywordMatchThreshold {
				continue
			}
			seen[entry.ID] = true
			matched = append(matched, entry)
		}
		if len(matched) < minClusterSize {
			continue
		}
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].Date.After(matched[j].Date)
		})
		clusters = append(clusters, model.TopicCluster{
			Title:      topic.Name,
			EntryCount: len(matched),
			Entries:    matched,
			Tagline:    clusterTagline(len(matched)),
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].EntryCount > clusters[j].EntryCount
	})
	return clusters
}

// keywordMatches counts how many of the topic's keywords occur as
// substrings of the entry's combined free text.
func keywordMatches(entry model.Entry, keywords []string) int {
	text := strings.ToLower(entry.JournalText + " " + entry.ReflectionResponse + " " + entry.WhyText)
	count := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			count++
		}
	}
	return count
}

func clusterTagline(count int) string {
	if count == 1 {
		return "You wrote about this 1 time."
	}
	return fmt.Sprintf("You wrote about this %d times.", count)
}

// GetTopicClusters recomputes clusters over the full entry set.
func (s *Service) GetTopicClusters() ([]model.TopicCluster, error) {
	entries, err := s.store.ListEntries()
	if err != nil {
		return nil, err
	}
	return TopicClusters(entries), nil
}
