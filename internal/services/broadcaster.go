package services

import "gambleio-server/internal/models"

// Broadcaster pushes live updates to connected clients.
type Broadcaster interface {
	BroadcastRoundUpdate(snapshot models.RoundSnapshot)
	BroadcastChatMessage(message models.ChatMessage)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastRoundUpdate(models.RoundSnapshot) {}
func (noopBroadcaster) BroadcastChatMessage(models.ChatMessage)   {}
