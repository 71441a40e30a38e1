package configs

type Archive struct {
	DSN ConfigSecret `yaml:"DSN" env:"ARCHIVE_DSN"` // MySQL DSN for the transcript archive; empty disables archiving
}

func (a *Archive) Validate() {
	// Nothing to clamp; an empty DSN simply disables the archive.
}

func GetArchiveConfig() Archive {
	configDataLock.RLock()
	defer configDataLock.RUnlock()

	if !configData.validated {
		configData.Validate()
	}
	return configData.Archive
}
