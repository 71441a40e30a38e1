package configs

import (
	"os"
	"sync"

	"github.com/NegoBotEngine/NegoBot/internal/fileloader"
)

// ConfigSecret is a string that should never be printed in logs.
type ConfigSecret string

func (c ConfigSecret) String() string {
	if c == "" {
		return ""
	}
	return "*****"
}

type Config struct {
	AppName  string   `yaml:"AppName"`
	Server   Server   `yaml:"Server"`
	LLM      LLM      `yaml:"LLM"`
	Analysis Analysis `yaml:"Analysis"`
	Sessions Sessions `yaml:"Sessions"`
	Archive  Archive  `yaml:"Archive"`
	Logs     Logs     `yaml:"Logs"`

	validated bool
}

var (
	configData     Config
	configDataLock sync.RWMutex
)

func (c *Config) Validate() {
	if c.AppName == "" {
		c.AppName = "AI Negotiation API"
	}

	c.Server.Validate()
	c.LLM.Validate()
	c.Analysis.Validate()
	c.Sessions.Validate()
	c.Archive.Validate()
	c.Logs.Validate()

	c.validated = true
}

// Load reads the yaml config file (if present), applies environment overrides
// and defaults. A missing file is not an error; defaults apply.
func Load(path string) error {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := fileloader.LoadFlatFile[Config](path)
			if err != nil {
				return err
			}
			cfg = loaded
		}
	}

	cfg.applyEnvOverrides()
	cfg.Validate()

	configDataLock.Lock()
	configData = cfg
	configDataLock.Unlock()

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.PortString = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		c.LLM.APIKey = ConfigSecret(v)
	}
	if v := os.Getenv("EMOTION_ENDPOINT"); v != "" {
		c.Analysis.EmotionEndpoint = v
	}
	if v := os.Getenv("ARCHIVE_DSN"); v != "" {
		c.Archive.DSN = ConfigSecret(v)
	}
}

// SetConfig replaces the whole config. Intended for tests and startup wiring.
func SetConfig(cfg Config) {
	cfg.Validate()
	configDataLock.Lock()
	configData = cfg
	configDataLock.Unlock()
}

func GetConfig() Config {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData
}
