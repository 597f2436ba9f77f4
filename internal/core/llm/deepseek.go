package llm

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func NewDeepSeekProvider(apiKey string, model string, temperature float32, maxTokens int) *ChatProvider {
	if model == "" {
		model = "deepseek-chat"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = "https://api.deepseek.com"
	config.HTTPClient = &http.Client{
		Timeout: 60 * time.Second,
	}

	return newChatProvider("DeepSeek", config, model, temperature, maxTokens)
}
