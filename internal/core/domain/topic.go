package domain

import "fmt"

// Topic is the closed label set returned by the domain classifier.
type Topic string

const (
	TopicAdministration Topic = "administration"
	TopicGreeting       Topic = "greeting"
	TopicBye            Topic = "bye"
	TopicOther          Topic = "other"
)

// ParseTopic validates a classifier label. An unrecognized label means the
// prompt/model contract is broken and is fatal, not retryable.
func ParseTopic(label string) (Topic, error) {
	switch Topic(label) {
	case TopicAdministration, TopicGreeting, TopicBye, TopicOther:
		return Topic(label), nil
	default:
		return "", WrapError(ErrContract, "parse topic", fmt.Errorf("unrecognized label %q", label))
	}
}
