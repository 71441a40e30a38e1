package configs

type Logs struct {
	Level      string `yaml:"Level"`      // DEBUG, INFO, WARN or ERROR
	File       string `yaml:"File"`       // Optional log file; rotated by size
	MaxSizeMB  int    `yaml:"MaxSizeMB"`  // Rotate after this many megabytes
	MaxBackups int    `yaml:"MaxBackups"` // Rotated files to keep
}

func (l *Logs) Validate() {
	if l.Level == "" {
		l.Level = "INFO"
	}

	if l.MaxSizeMB < 1 {
		l.MaxSizeMB = 10
	}

	if l.MaxBackups < 0 {
		l.MaxBackups = 3
	}
}

func GetLogsConfig() Logs {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData.Logs
}
