package events

import "context"

// Sink accepts worker results.
type Sink interface {
	Publish(message Message)
}

// ChannelSink forwards messages to a channel until its context is cancelled.
type ChannelSink struct {
	executionContext context.Context
	channel          chan<- Message
}

// NewChannelSink constructs a ChannelSink writing to the provided channel.
func NewChannelSink(executionContext context.Context, channel chan<- Message) ChannelSink {
	return ChannelSink{executionContext: executionContext, channel: channel}
}

// Publish delivers the message, or drops it once the context is done.
func (sink ChannelSink) Publish(message Message) {
	select {
	case sink.channel <- message:
	case <-sink.executionContext.Done():
	}
}
