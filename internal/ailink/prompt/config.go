package prompt

// Config describes a prompt definition loaded from YAML frontmatter.
type Config struct {
	Slug           string    `yaml:"slug" json:"slug" validate:"required"`
	Name           string    `yaml:"name,omitempty" json:"name,omitempty"`
	Description    string    `yaml:"description,omitempty" json:"description,omitempty"`
	Version        string    `yaml:"version,omitempty" json:"version,omitempty"`
	Input          InputSpec `yaml:"input,omitempty" json:"input,omitempty"`
	SystemTemplate string    `yaml:"system_template,omitempty" json:"system_template,omitempty" validate:"required"`
	UserTemplate   string    `yaml:"user_template,omitempty" json:"user_template,omitempty"`
	// ResponseFormat is "text" or "json_object".
	ResponseFormat string `yaml:"response_format,omitempty" json:"response_format,omitempty" validate:"omitempty,oneof=text json_object"`
}

// InputSpec defines prompt input requirements.
type InputSpec struct {
	RequiredVariables []string `yaml:"required_variables,omitempty" json:"required_variables,omitempty"`
	OptionalVariables []string `yaml:"optional_variables,omitempty" json:"optional_variables,omitempty"`
}

// Prompt wraps a validated prompt configuration with its source.
type Prompt struct {
	Config Config
	Source string
}

// WantsJSON reports whether the prompt asks the provider for JSON mode.
func (p *Prompt) WantsJSON() bool {
	return p != nil && p.Config.ResponseFormat == "json_object"
}
