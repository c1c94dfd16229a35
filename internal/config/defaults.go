package config

// Progress store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	defaultTelegramBaseURL        = "https://api.telegram.org"
	defaultTelegramRequestTimeout = 30
	defaultTelegramPollTimeout    = 30
	defaultTelegramRetryAttempts  = 3
	defaultLessonsFile            = "~/.local/share/dripfeed/assets/lessons.json"
	defaultImagesDir              = "~/.local/share/dripfeed/assets/images"
	defaultAudioDir               = "~/.local/share/dripfeed/assets/audio"
	defaultVideosFile             = "~/.local/share/dripfeed/assets/videos.json"
	defaultProgressPath           = "~/.local/share/dripfeed/progress.json"
	defaultScheduleCron           = "0 6 * * *"
	defaultScheduleTimezone       = "Asia/Almaty"
	defaultSendDelaySeconds       = 1
	defaultChunkLimit             = 4096
	defaultLogLevel               = "info"
	defaultLogFormat              = "console"
	defaultLogDir                 = "~/.local/share/dripfeed/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Telegram: Telegram{
			BaseURL:        defaultTelegramBaseURL,
			RequestTimeout: defaultTelegramRequestTimeout,
			PollTimeout:    defaultTelegramPollTimeout,
			RetryAttempts:  defaultTelegramRetryAttempts,
		},
		Assets: Assets{
			LessonsFile: defaultLessonsFile,
			ImagesDir:   defaultImagesDir,
			AudioDir:    defaultAudioDir,
			VideosFile:  defaultVideosFile,
		},
		Progress: Progress{
			Backend: BackendFile,
			Path:    defaultProgressPath,
		},
		Schedule: Schedule{
			Cron:             defaultScheduleCron,
			Timezone:         defaultScheduleTimezone,
			SendDelaySeconds: defaultSendDelaySeconds,
			ChunkLimit:       defaultChunkLimit,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Dir:    defaultLogDir,
		},
	}
}
