// Package message defines the envelope exchanged between actors.
//
// A Message carries an opaque payload and an ordered set of headers. Messages are immutable:
// every "modifying" method returns a copy.
//
//	msg := message.New("A17", message.WithHeader("seq", int64(3)))
//	seq, ok := message.SequenceKey(msg, "seq") // 3, true
//	tagged := msg.With("source", "db")         // msg is unchanged
//
// Every message receives an "id" header (a random UUID) and a "timestamp" header
// (creation time in Unix milliseconds) unless the caller supplies them.
//
// # Sentinels
//
// Control messages are distinguished by their Kind, never by a header value or payload type,
// so an ordinary message can not be mistaken for one:
//
//	sentinels := message.NewSentinels()
//	eos := sentinels.EOS()
//	eos.IsEOS()                      // true
//	message.New("EOS").IsEOS()       // false
//
// The channel registry builds one Sentinels value and hands it to the actors it serves.
package message
