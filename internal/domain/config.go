package domain

import "strings"

// DefaultTitleKey is the designated title field the model is asked to include.
const DefaultTitleKey = "タイトル"

// DefaultPlaceholder titles a page whose response carried no usable title.
const DefaultPlaceholder = "Could not parse ai response as JSON"

// TitleKeyToken is replaced with the configured title key inside the prompt.
const TitleKeyToken = "{title_key}"

// DefaultPrompt is the fixed page instruction sent with every image.
const DefaultPrompt = "Analyze the data from this image and return the key takeaways along with the numbers. " +
	"Keep the original Japanese. Return only a JSON object with key value pairs for each key point. " +
	"Make sure to include a " + TitleKeyToken + " field as well."

// ExtractionConfig holds internal extraction settings, not exposed to the inference service.
type ExtractionConfig struct {
	TitleKey    string
	Placeholder string
	Prompt      string
	MaxTokens   int
	Temperature float32
	JPEGQuality int
	DPI         float64
}

// DefaultExtractionConfig returns defaults tuned for Japanese institutional factbooks.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		TitleKey:    DefaultTitleKey,
		Placeholder: DefaultPlaceholder,
		Prompt:      DefaultPrompt,
		MaxTokens:   3000,
		Temperature: 0,
		JPEGQuality: 85,
		DPI:         150,
	}
}

// Instruction renders the prompt with the title key substituted.
func (c ExtractionConfig) Instruction() string {
	return strings.ReplaceAll(c.Prompt, TitleKeyToken, c.TitleKey)
}
