package posts

import (
	"sort"

	"github.com/japap-media/server/pkg/structs"
)

// CountReactions folds a viewer -> emoji map into per-emoji counts.
func CountReactions(reactions map[string]string) map[string]int64 {
	counts := make(map[string]int64)
	for _, emoji := range reactions {
		counts[emoji]++
	}
	return counts
}

// ReactionIndexes sorts counts by popularity, then emoji.
func ReactionIndexes(counts map[string]int64, myReaction string) []structs.V0ReactionIndex {
	indexes := []structs.V0ReactionIndex{}
	for emoji, count := range counts {
		if count <= 0 {
			continue
		}
		indexes = append(indexes, structs.V0ReactionIndex{
			Emoji:       emoji,
			Count:       count,
			UserReacted: emoji == myReaction,
		})
	}
	sort.Slice(indexes, func(i, j int) bool {
		if indexes[i].Count != indexes[j].Count {
			return indexes[i].Count > indexes[j].Count
		}
		return indexes[i].Emoji < indexes[j].Emoji
	})
	return indexes
}
