package models

// Topic is one of the anatomical systems covered by the study material.
type Topic string

const (
	TopicLymphatic   Topic = "lymphatic"
	TopicRespiratory Topic = "respiratory"
	TopicDigestive   Topic = "digestive"

	// AnyTopic disables category filtering when configuring a quiz.
	AnyTopic Topic = "Any"
)

// Topics lists every known topic in display order.
var Topics = []Topic{TopicLymphatic, TopicRespiratory, TopicDigestive}

func (t Topic) Valid() bool {
	for _, known := range Topics {
		if t == known {
			return true
		}
	}
	return false
}

// Difficulty selects which question bank a quiz draws from.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// DefaultDifficulty is used when a bank document has no set for the requested tier.
const DefaultDifficulty = DifficultyIntermediate

func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

type QuestionType string

const (
	QuestionFreeResponse   QuestionType = "free_response"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionMatching       QuestionType = "matching"
	QuestionIdentification QuestionType = "identification"
)

var QuestionTypes = []QuestionType{
	QuestionFreeResponse,
	QuestionMultipleChoice,
	QuestionMatching,
	QuestionIdentification,
}

func (q QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if q == known {
			return true
		}
	}
	return false
}

// MasteryLevel summarizes recent quiz performance for one topic.
type MasteryLevel int

const (
	MasteryNotStarted MasteryLevel = iota
	MasteryBeginner
	MasteryIntermediate
	MasteryExpert
)

// MaxMastery is the highest level a topic can reach.
const MaxMastery = MasteryExpert

func (m MasteryLevel) String() string {
	switch m {
	case MasteryNotStarted:
		return "Not Started"
	case MasteryBeginner:
		return "Beginner"
	case MasteryIntermediate:
		return "Intermediate"
	case MasteryExpert:
		return "Expert"
	default:
		return "Unknown"
	}
}
