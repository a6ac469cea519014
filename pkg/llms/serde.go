package llms

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Part type discriminators for serialized messages.
const (
	partTypeText         = "text"
	partTypeBinary       = "binary"
	partTypeToolCall     = "tool_call"
	partTypeToolResponse = "tool_response"
)

// MessagePartModel is a serializable rendition of a single content part.
type MessagePartModel struct {
	Type         string            `json:"type"`
	Text         string            `json:"text,omitempty"`
	MIMEType     string            `json:"mime_type,omitempty"`
	Data         []byte            `json:"data,omitempty"`
	ToolCall     *ToolCall         `json:"tool_call,omitempty"`
	ToolResponse *ToolCallResponse `json:"tool_response,omitempty"`
}

// MessageModel is a serializable rendition of a Message, used for
// persisting chat history.
type MessageModel struct {
	Role  Role               `json:"role"`
	Parts []MessagePartModel `json:"parts"`
}

// ConvertMessageToModel converts a Message into its serializable form.
func ConvertMessageToModel(msg Message) MessageModel {
	model := MessageModel{
		Role:  msg.Role,
		Parts: make([]MessagePartModel, 0, len(msg.Parts)),
	}
	for _, part := range msg.Parts {
		switch p := part.(type) {
		case TextContent:
			model.Parts = append(model.Parts, MessagePartModel{
				Type: partTypeText,
				Text: p.Text,
			})
		case BinaryContent:
			model.Parts = append(model.Parts, MessagePartModel{
				Type:     partTypeBinary,
				MIMEType: p.MIMEType,
				Data:     p.Data,
			})
		case ToolCall:
			tc := p
			model.Parts = append(model.Parts, MessagePartModel{
				Type:     partTypeToolCall,
				ToolCall: &tc,
			})
		case ToolCallResponse:
			tr := p
			model.Parts = append(model.Parts, MessagePartModel{
				Type:         partTypeToolResponse,
				ToolResponse: &tr,
			})
		}
	}
	return model
}

// ToMessage converts the serialized form back into a Message.
func (m MessageModel) ToMessage() Message {
	msg := Message{
		Role:  m.Role,
		Parts: make([]ContentPart, 0, len(m.Parts)),
	}
	for _, part := range m.Parts {
		switch part.Type {
		case partTypeText:
			msg.Parts = append(msg.Parts, TextContent{Text: part.Text})
		case partTypeBinary:
			msg.Parts = append(msg.Parts, BinaryContent{MIMEType: part.MIMEType, Data: part.Data})
		case partTypeToolCall:
			if part.ToolCall != nil {
				msg.Parts = append(msg.Parts, *part.ToolCall)
			}
		case partTypeToolResponse:
			if part.ToolResponse != nil {
				msg.Parts = append(msg.Parts, *part.ToolResponse)
			}
		}
	}
	return msg
}

// ToMessages converts a slice of serialized messages.
func ToMessages(models []MessageModel) []Message {
	msgs := make([]Message, len(models))
	for i, m := range models {
		msgs[i] = m.ToMessage()
	}
	return msgs
}

// MarshalMessage serializes a message as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	bs, err := json.Marshal(ConvertMessageToModel(msg))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return bs, nil
}

// UnmarshalMessage deserializes a message from JSON.
func UnmarshalMessage(bs []byte) (Message, error) {
	var model MessageModel
	if err := json.Unmarshal(bs, &model); err != nil {
		return Message{}, errors.Wrap(err, "failed to unmarshal message")
	}
	return model.ToMessage(), nil
}
