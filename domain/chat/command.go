package chat

import "chat-presence/domain"

// PostMessageCommand asks the router to store a message authored by From.
type PostMessageCommand struct {
	From string
	To   string
	Text string
	Kind domain.MessageKind
}

// ListMessagesCommand reads the messages visible to User.
// A nil Limit returns the whole history.
type ListMessagesCommand struct {
	User  string
	Limit *int
}

// EditMessageCommand overwrites a message. Only its sender may issue it.
type EditMessageCommand struct {
	ID        string
	Requester string
	To        string
	Text      string
	Kind      domain.MessageKind
}

type DeleteMessageCommand struct {
	ID        string
	Requester string
}
