package constants

const (
	// Config file keys
	SettingTimezone      = "timezone"
	SettingBackupOnWrite = "backup_on_write"
	SettingDataPath      = "data_path"

	ConfigFileName = "config.yaml"
	EnvFileName    = ".env"

	// Default Settings Values
	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultBackupOnWrite = true
)
