package model

// DefaultPersona is the system instruction used when settings carry none.
const DefaultPersona = "You are 'Cool boy ☺️'. You are a chill, friendly, and funny AI assistant. " +
	"You like to joke around, use emojis, and keep the vibe positive. If the user jokes, " +
	"you roast them back playfully. You are helpful but never boring."

// Settings holds the generation-shaping parameters and presentation
// preferences. It is a single process-wide value; updates replace the whole
// object, there is no partial patch.
type Settings struct {
	Temperature        float64 `json:"temperature"`
	TopK               int     `json:"top_k"`
	TopP               float64 `json:"top_p"`
	Theme              string  `json:"theme,omitempty"`
	PersonaInstruction string  `json:"persona_instruction,omitempty"`
}

// DefaultSettings returns the factory settings.
func DefaultSettings() Settings {
	return Settings{
		Temperature:        1.0,
		TopK:               64,
		TopP:               0.95,
		Theme:              "purple",
		PersonaInstruction: DefaultPersona,
	}
}
