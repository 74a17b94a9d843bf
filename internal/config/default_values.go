package config

const (
	DefaultProviderKind      = "anthropic"
	DefaultProviderTimeoutMS = 60000
	DefaultProviderMaxTokens = 1000

	DefaultHistoryTokenLimit = 8000

	HistoryLatest = "latest"
	HistoryFull   = "full"
)

var defaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-2.5-flash",
}

var vendorKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}
