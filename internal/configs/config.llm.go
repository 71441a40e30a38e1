package configs

type LLM struct {
	Model          string       `yaml:"Model"`          // The model to use (e.g., "mistral:latest")
	BaseURL        string       `yaml:"BaseURL"`        // Base URL for the LLM API
	Temperature    float64      `yaml:"Temperature"`    // Temperature for response generation (0.0-1.0)
	TimeoutSeconds int          `yaml:"TimeoutSeconds"` // Request timeout; 0 means no timeout
	BackoffSeconds int          `yaml:"BackoffSeconds"` // Seconds to fail fast after a connection failure
	SystemPrompt   string       `yaml:"SystemPrompt"`   // System message sent with every turn
	APIKey         ConfigSecret `yaml:"APIKey" env:"AI_API_KEY"` // Optional bearer token
}

func (l *LLM) Validate() {
	if l.Temperature < 0.0 {
		l.Temperature = 0.0
	} else if l.Temperature > 1.0 {
		l.Temperature = 1.0 // Cap at 1.0
	}

	if l.Model == "" {
		l.Model = "mistral:latest"
	}

	if l.BaseURL == "" {
		l.BaseURL = "http://localhost:11434"
	}

	if l.TimeoutSeconds < 0 {
		l.TimeoutSeconds = 0 // 0 = block until the stream ends
	}

	if l.BackoffSeconds < 0 {
		l.BackoffSeconds = 0
	}

	if l.SystemPrompt == "" {
		l.SystemPrompt = "You are a helpful negotiation assistant."
	}
}

func GetLLMConfig() LLM {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData.LLM
}
