package message

// Sentinels holds the control messages shared by the actors of one registry.
type Sentinels struct {
	eos       Message
	pollReady Message
}

// NewSentinels builds a fresh set of control messages.
func NewSentinels() Sentinels {
	return Sentinels{
		eos:       build(KindEOS, nil),
		pollReady: build(KindPollReady, nil),
	}
}

// EOS returns the end-of-stream message.
func (s Sentinels) EOS() Message { return s.eos }

// PollReady returns the message that tells pollers data is waiting.
func (s Sentinels) PollReady() Message { return s.pollReady }
