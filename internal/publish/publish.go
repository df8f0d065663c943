// Package publish serializes caption and translation records to the
// conferencing data channel and optionally mirrors them as chat.
package publish

import (
	"encoding/json"

	"github.com/livekit-captions/caption-agent/internal/assembler"
	"github.com/livekit-captions/caption-agent/internal/logging"
	"github.com/livekit-captions/caption-agent/internal/translate"
)

// Topic is the data-channel topic every caption and translation record
// is addressed to.
const Topic = "captions"

// DataSender publishes a reliable data-channel message on a topic.
// Implemented by the session's room binding.
type DataSender interface {
	SendData(payload []byte, topic string) error
}

// ChatSender mirrors a caption or translation as a plain chat line.
type ChatSender interface {
	SendChat(line string) error
}

// Publisher implements both assembler.Publisher and translate.Publisher,
// fanning every record out to the room's data channel, an optional chat
// mirror, and the process-wide debug Hub.
type Publisher struct {
	data     DataSender
	chat     ChatSender
	sendChat bool
	hub      *Hub
}

// New creates a Publisher. hub may be nil if debug fan-out is not needed.
func New(data DataSender, chat ChatSender, sendChat bool, hub *Hub) *Publisher {
	return &Publisher{data: data, chat: chat, sendChat: sendChat, hub: hub}
}

// PublishCaption implements assembler.Publisher.
func (p *Publisher) PublishCaption(record assembler.CaptionRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		logging.Error(logging.CategoryPublish, "marshal caption record failed: %v", err)
		return
	}
	p.publish(payload)

	if p.sendChat && p.chat != nil {
		line := "[Transcript] " + record.Speaker + ": " + record.Text
		if err := p.chat.SendChat(line); err != nil {
			logging.Warning(logging.CategoryPublish, "chat mirror failed: %v", err)
		}
	}
}

// PublishTranslation implements translate.Publisher.
func (p *Publisher) PublishTranslation(record translate.TranslationRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		logging.Error(logging.CategoryPublish, "marshal translation record failed: %v", err)
		return
	}
	p.publish(payload)

	if p.sendChat && p.chat != nil {
		line := "[Translation] " + record.Speaker + ": " + record.TranslatedText
		if err := p.chat.SendChat(line); err != nil {
			logging.Warning(logging.CategoryPublish, "chat mirror failed: %v", err)
		}
	}
}

func (p *Publisher) publish(payload []byte) {
	if err := p.data.SendData(payload, Topic); err != nil {
		logging.Warning(logging.CategoryPublish, "publish failed: %v", err)
	}
	if p.hub != nil {
		p.hub.broadcast(payload)
	}
}
