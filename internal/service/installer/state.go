package installer

// EnvFile is what the wizard writes to <runtime>/.env.
type EnvFile struct {
	LineChannelSecret string `env:"LINE_CHANNEL_SECRET"`
	LineAccessToken   string `env:"LINE_CHANNEL_ACCESS_TOKEN"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL"`
	PublicBaseURL     string `env:"PUBLIC_BASE_URL"`
	StoreBackend      string `env:"STORE_BACKEND"`
	NotionAPIKey      string `env:"NOTION_API_KEY"`
	NotionDatabaseID  string `env:"NOTION_DATABASE_ID"`
	EnableTelegram    bool   `env:"ENABLE_TELEGRAM"`
	TelegramToken     string `env:"TELEGRAM_TOKEN"`
	TelegramOwnerID   string `env:"TELEGRAM_OWNER_ID"`
}

type InstallState struct {
	Env         EnvFile
	RuntimePath string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{RuntimePath: runtimePath}
}
