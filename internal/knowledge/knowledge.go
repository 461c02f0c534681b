package knowledge

// Topic is a fixed thematic label with the lowercase keywords that map
// journal text onto it. Catalog order doubles as the tie-break order when
// clusters hold the same number of entries.
type Topic struct {
	Name     string
	Keywords []string
}

var Topics = []Topic{
	{
		Name: "Self-worth",
		Keywords: []string{
			"confiden", "self-esteem", "self worth", "proud of myself",
			"not good enough", "insecure", "worthless", "doubt myself",
			"compare myself",
		},
	},
	{
		Name: "Relationships",
		Keywords: []string{
			"friend", "family", "partner", "relationship", "mom", "dad",
			"argument", "lonely", "miss them", "love",
		},
	},
	{
		Name: "Work & Career",
		Keywords: []string{
			"work", "job", "boss", "career", "meeting", "deadline",
			"coworker", "interview", "promotion", "office",
		},
	},
	{
		Name: "Health & Wellness",
		Keywords: []string{
			"sleep", "exercise", "workout", "tired", "energy", "sick",
			"doctor", "eating", "headache", "rest",
		},
	},
	{
		Name: "Personal Growth",
		Keywords: []string{
			"learn", "growth", "improve", "progress", "new skill",
			"challenge myself", "habit", "reading", "practice",
		},
	},
	{
		Name: "Stress & Anxiety",
		Keywords: []string{
			"stress", "anxious", "anxiety", "overwhelm", "worried",
			"panic", "nervous", "pressure", "burnout",
		},
	},
	{
		Name: "Gratitude & Joy",
		Keywords: []string{
			"grateful", "gratitude", "thankful", "happy", "joy",
			"blessed", "appreciate", "smile", "laughed",
		},
	},
	{
		Name: "Future & Goals",
		Keywords: []string{
			"goal", "plan", "future", "dream", "someday", "hope to",
			"ambition", "next year", "vision",
		},
	},
}

// TopicLabels is the fixed enumeration used as candidate labels for AI
// topic classification; aiTopics on an entry is always a subset of it.
func TopicLabels() []string {
	labels := make([]string, 0, len(Topics))
	for _, topic := range Topics {
		labels = append(labels, topic.Name)
	}
	return labels
}

// EmotionLabels is the candidate set for AI emotion classification.
var EmotionLabels = []string{
	"happy", "calm", "excited", "grateful", "hopeful", "content",
	"anxious", "stressed", "sad", "angry", "tired", "lonely",
}
