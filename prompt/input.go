package prompt

// Input supplies raw template text to FromInput.
type Input interface {
	Template() string
}

// Text is an Input backed by a plain string.
type Text string

// Template returns the string itself.
func (t Text) Template() string {
	return string(t)
}

// FromInput builds a Template from the text exposed by in.
// A nil in is rejected with ErrInvalidTemplate.
func FromInput(in Input) (*Template, error) {
	if in == nil {
		return nil, ErrInvalidTemplate
	}

	return New(in.Template())
}
