package message

import (
	"context"

	"github.com/google/uuid"
	"github.com/jacobpatterson1549/swipe-words/server/log"
)

// Send is a utility function for sending messages out on a channel.
// The message is dropped if the context is done before it is sent.
// When debugging, it prints a message before and after the message is sent to help identify deadlocks.
func Send(ctx context.Context, m Message, out chan<- Message, debug bool, log log.Logger) {
	if debug {
		id := uuid.NewString()
		log.Printf("[id: %v] sending %v message: %v", id, m.Type, m.Info)
		defer log.Printf("[id: %v] message sent", id)
	}
	select {
	case <-ctx.Done():
	case out <- m:
	}
}
