package app

import (
	"sync"

	"github.com/dkeye/Boxcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// SpeakerArbiter grants at most one holder of the floor per topic.
type SpeakerArbiter struct {
	mu      sync.RWMutex
	holders map[domain.TopicName]domain.ConnID
}

func NewSpeakerArbiter() *SpeakerArbiter {
	return &SpeakerArbiter{holders: make(map[domain.TopicName]domain.ConnID)}
}

// Claim makes id the holder of topic if nobody holds it. The current
// holder claiming again succeeds; anyone else loses.
func (s *SpeakerArbiter) Claim(id domain.ConnID, topic domain.TopicName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if holder, ok := s.holders[topic]; ok {
		return holder == id
	}
	s.holders[topic] = id
	log.Info().Str("module", "app.speaker").Str("topic", string(topic)).Str("holder", string(id)).Msg("speaker claimed")
	return true
}

func (s *SpeakerArbiter) Release(topic domain.TopicName) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holders[topic]; !ok {
		return
	}
	delete(s.holders, topic)
	log.Info().Str("module", "app.speaker").Str("topic", string(topic)).Msg("speaker released")
}

func (s *SpeakerArbiter) HasHolder(topic domain.TopicName) bool {
	_, ok := s.Holder(topic)
	return ok
}

func (s *SpeakerArbiter) Holder(topic domain.TopicName) (domain.ConnID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.holders[topic]
	return id, ok
}
