package mood

import (
	"math/rand"
	"sync"
)

// Replies is the fixed set of companion answers.
var Replies = []string{
	"Based on today's air quality, I recommend taking breaks every 90 minutes to maintain your focus.",
	"The current pollution levels might affect your energy. Try staying hydrated and consider some light indoor exercises.",
	"I understand you're feeling the effects of poor air quality. Deep breathing exercises can help you feel more centered.",
	"Given today's AQI, it's normal to feel less energetic. Would you like some tips for staying productive indoors?",
	"The air quality data suggests you might experience some fatigue. Have you been drinking enough water today?",
}

// Companion picks a reply uniformly at random from Replies using an injected source.
type Companion struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCompanion creates a Companion. Seed the source for reproducible replies.
func NewCompanion(rng *rand.Rand) *Companion {
	return &Companion{rng: rng}
}

// Reply answers a user message. The message content does not influence the reply.
func (c *Companion) Reply(message string) string {
	c.mu.Lock()
	i := c.rng.Intn(len(Replies))
	c.mu.Unlock()
	return Replies[i]
}
