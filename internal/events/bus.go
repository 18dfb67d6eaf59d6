// Package events provides a typed publish/subscribe bus.
//
// Delivery is synchronous: Publish calls every subscriber of the topic, in the
// order they subscribed, before returning. The bus is meant to be driven from
// the frame thread; work from other goroutines should go through sched.Queue.
package events

import "sync"

// Topic names a channel whose payloads have type T.
type Topic[T any] struct {
	name string
}

// NewTopic creates a topic with the given name.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

// Name returns the topic name.
func (t Topic[T]) Name() string {
	return t.name
}

type subscriber struct {
	id uint64
	fn any
}

// Bus holds subscribers keyed by topic name.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string][]subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Subscribe registers fn for topic and returns a function that removes it.
func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic.name] = append(b.subs[topic.name], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic.name]
		for i, s := range list {
			if s.id == id {
				b.subs[topic.name] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers value to every subscriber of topic.
// Subscribers added or removed during delivery take effect on the next Publish.
func Publish[T any](b *Bus, topic Topic[T], value T) {
	b.mu.Lock()
	list := b.subs[topic.name]
	b.mu.Unlock()

	for _, s := range list {
		s.fn.(func(T))(value)
	}
}

// Signal publishes an empty payload on a notification topic.
func Signal(b *Bus, topic Topic[struct{}]) {
	Publish(b, topic, struct{}{})
}
