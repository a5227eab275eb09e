// Package mq publishes user task lifecycle events to an optional message
// sink. The default sink is a no-op; swap in a real broker client when the
// deployment has one.
package mq

import "log"

// TopicUserTasks is the topic all task lifecycle events are published under.
const TopicUserTasks = "user_tasks"

// Event types.
const (
	EventTaskStarted   = "task.started"
	EventTaskCompleted = "task.completed"
)

// Event is the wire payload for one task lifecycle transition.
type Event struct {
	Type       string `json:"type"`
	TaskID     string `json:"task_id"`
	RequestURL string `json:"request_url"`
	AtMs       int64  `json:"at_ms"`
}

type Publisher interface {
	Publish(topic string, payload []byte) error
}

type Subscriber interface {
	Subscribe(topic string, handler func([]byte) error) error
}

type Noop struct{}

func (Noop) Publish(topic string, payload []byte) error               { return nil }
func (Noop) Subscribe(topic string, handler func([]byte) error) error { return nil }

// LogPublisher writes events to the process log. Useful in demos and when
// debugging event flow without a broker.
type LogPublisher struct{}

func (LogPublisher) Publish(topic string, payload []byte) error {
	log.Printf("mq %s: %s", topic, payload)
	return nil
}
