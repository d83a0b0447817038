package config

const (
	defaultDataDir        = "~/.local/share/longbox"
	defaultLogDir         = "~/.local/share/longbox/logs"
	defaultAPIBind        = "127.0.0.1:7823"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultRecentLimit    = 20
	defaultThumbnailMaxPx = 320
	defaultMaxUploadMiB   = 512
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Library: Library{
			RecentLimit:    defaultRecentLimit,
			ThumbnailMaxPx: defaultThumbnailMaxPx,
			MaxUploadMiB:   defaultMaxUploadMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
