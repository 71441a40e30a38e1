package configs

type Analysis struct {
	EmotionEndpoint     string  `yaml:"EmotionEndpoint"`     // HTTP endpoint of the emotion classifier; empty disables it
	ConfidenceThreshold float64 `yaml:"ConfidenceThreshold"` // Minimum score to count a detected emotion
	ContextModel        string  `yaml:"ContextModel"`        // Model used for negotiation-context extraction
	ContextEnabled      bool    `yaml:"ContextEnabled"`      // Whether to run the context extractor per turn
	CacheSize           int     `yaml:"CacheSize"`           // Bounded enrichment cache capacity (FIFO)
}

func (a *Analysis) Validate() {
	if a.ConfidenceThreshold <= 0.0 || a.ConfidenceThreshold > 1.0 {
		a.ConfidenceThreshold = 0.6
	}

	if a.ContextModel == "" {
		a.ContextModel = "mistral"
	}

	if a.CacheSize < 1 {
		a.CacheSize = 10
	}
}

func GetAnalysisConfig() Analysis {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData.Analysis
}
