package configs

type Sessions struct {
	TTLSeconds int `yaml:"TTLSeconds"` // Sliding expiry for idle sessions
	MaxEntries int `yaml:"MaxEntries"` // Max cached sessions; 0 = unbounded
}

func (s *Sessions) Validate() {
	if s.TTLSeconds < 1 {
		s.TTLSeconds = 86400 // 24 hours
	}

	if s.MaxEntries < 0 {
		s.MaxEntries = 0
	}
}

func GetSessionsConfig() Sessions {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData.Sessions
}
