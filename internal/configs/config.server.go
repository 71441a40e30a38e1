package configs

type Server struct {
	PortString string `yaml:"Port"`        // Port the HTTP API listens on
	CORSOrigin string `yaml:"CORSOrigin"`  // Allowed origin for browser clients, "*" for any
	Locale     string `yaml:"Locale"`      // Language tag for canned API strings
}

func (s *Server) Validate() {
	if s.PortString == "" {
		s.PortString = "8000"
	}
	if s.CORSOrigin == "" {
		s.CORSOrigin = "*"
	}
	if s.Locale == "" {
		s.Locale = "en"
	}
}

func GetServerConfig() Server {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData.Server
}
