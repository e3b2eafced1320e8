package domain

type MessageType string

const (
	// video room
	MessageAIAnalysis MessageType = "ai_analysis"
	MessageSystem     MessageType = "system"
	MessageError      MessageType = "error"

	// voice chat
	MessageAudio         MessageType = "audio"
	MessageTranscription MessageType = "transcription"
	MessageResponse      MessageType = "response"
)

const ParticipantLeftNotice = "A participant has left the call"

// RoomMessage is sent to video room participants.
type RoomMessage struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

// VoiceRequest is the inbound voice chat message.
type VoiceRequest struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
}

// VoiceMessage is the outbound voice chat message. Audio is base64 and set
// only on responses.
type VoiceMessage struct {
	Type  MessageType `json:"type"`
	Text  string      `json:"text"`
	Audio string      `json:"audio,omitempty"`
}
