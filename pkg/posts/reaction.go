package posts

type Vote int8

const (
	VoteNone    Vote = 0
	VoteLike    Vote = 1
	VoteDislike Vote = -1
)

var AllowedEmojis = []string{"😂", "😱", "🔥", "❤️", "👀", "🤔", "😡", "💀"}

func ValidEmoji(emoji string) bool {
	for _, e := range AllowedEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

func (p *Post) VoteOf(viewerId string) Vote {
	if viewerId == "" || p.Votes == nil {
		return VoteNone
	}
	return p.Votes[viewerId]
}

// ToggleVote moves the viewer between neutral, liked and disliked.
// Casting the current vote again returns the viewer to neutral.
func (p *Post) ToggleVote(viewerId string, v Vote) {
	cur := p.VoteOf(viewerId)
	if cur != VoteNone {
		decrement(p.voteCounter(cur))
		delete(p.Votes, viewerId)
	}
	if cur == v || v == VoteNone {
		return
	}

	if p.Votes == nil {
		p.Votes = make(map[string]Vote)
	}
	p.Votes[viewerId] = v
	*p.voteCounter(v) += 1
}

func (p *Post) voteCounter(v Vote) *int64 {
	if v == VoteLike {
		return &p.Stats.Likes
	}
	return &p.Stats.Dislikes
}

// SetReaction stores emoji as the viewer's only reaction. Passing the
// viewer's current emoji, or an empty one, removes it.
func (p *Post) SetReaction(viewerId string, emoji string) bool {
	if p.Reactions == nil {
		p.Reactions = make(map[string]string)
	}
	removed, added := ApplyReaction(p.Reactions, viewerId, emoji)
	if removed == "" && added == "" {
		return false
	}

	if p.ReactionCounts == nil {
		p.ReactionCounts = make(map[string]int64)
	}
	if removed != "" {
		count := p.ReactionCounts[removed]
		decrement(&count)
		if count == 0 {
			delete(p.ReactionCounts, removed)
		} else {
			p.ReactionCounts[removed] = count
		}
	}
	if added != "" {
		p.ReactionCounts[added] += 1
	}
	return true
}

// ApplyReaction updates a viewer -> emoji map and reports what changed.
func ApplyReaction(reactions map[string]string, viewerId string, emoji string) (removed string, added string) {
	prev, had := reactions[viewerId]
	if had {
		delete(reactions, viewerId)
		removed = prev
	}
	if emoji == "" || emoji == prev {
		return removed, ""
	}
	reactions[viewerId] = emoji
	return removed, emoji
}

func decrement(counter *int64) {
	if *counter > 0 {
		*counter -= 1
	}
}
