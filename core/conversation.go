package core

// Conversation is an append-only, ordered sequence of messages. During a tool
// loop it is owned by the orchestrator and lent to the tool handler for the
// duration of one call. It is not safe for concurrent use.
type Conversation struct {
	messages []Message
}

// NewConversation starts a conversation seeded with history.
func NewConversation(history ...Message) *Conversation {
	msgs := make([]Message, len(history))
	copy(msgs, history)
	return &Conversation{messages: msgs}
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
}

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Messages returns a snapshot copy of the conversation.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}
