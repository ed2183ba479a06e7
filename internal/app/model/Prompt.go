package model

// Prompt is one scripted interview question.
type Prompt struct {
	ID       int    `json:"id" yaml:"id" validate:"gte=0"`
	Text     string `json:"text" yaml:"text" validate:"required"`
	AudioURL string `json:"audioUrl,omitempty" yaml:"audioUrl,omitempty"`
}

// QuestionList is the wire and document shape of the ordered prompt sequence.
type QuestionList struct {
	Items []Prompt `json:"items"`
}
