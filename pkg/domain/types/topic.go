package types

import "fmt"

// Topic is the mathematical subject classification of a problem
type Topic string

const (
	TopicAlgebra       Topic = "algebra"
	TopicProbability   Topic = "probability"
	TopicCalculus      Topic = "calculus"
	TopicLinearAlgebra Topic = "linear_algebra"
	TopicUnknown       Topic = "unknown"
)

// AllTopics returns every topic in classification priority order, followed by unknown
func AllTopics() []Topic {
	return []Topic{
		TopicAlgebra,
		TopicProbability,
		TopicCalculus,
		TopicLinearAlgebra,
		TopicUnknown,
	}
}

// IsValid checks if the topic is valid
func (t Topic) IsValid() bool {
	switch t {
	case TopicAlgebra,
		TopicProbability,
		TopicCalculus,
		TopicLinearAlgebra,
		TopicUnknown:
		return true
	default:
		return false
	}
}

func (t Topic) String() string {
	return string(t)
}

// ParseTopic parses a string into a Topic
func ParseTopic(s string) (Topic, error) {
	topic := Topic(s)
	if !topic.IsValid() {
		return "", fmt.Errorf("invalid topic: %s", s)
	}
	return topic, nil
}
