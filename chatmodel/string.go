package chatmodel

import "strings"

// String wraps a plain text answer as a ContentProvider, for assistants
// that return free-form text instead of a typed result.
type String struct {
	value string
}

func NewString(str string) *String {
	return &String{value: str}
}

// GetContent returns the text for the chat history.
func (s String) GetContent() string {
	return s.value
}

func (s String) String() string {
	return s.value
}

func (s String) Bytes() []byte {
	return []byte(s.value)
}

func (s *String) Unmarshal(bs []byte) error {
	s.value = strings.Trim(string(bs), "\"")
	return nil
}
