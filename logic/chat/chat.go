package chat

import (
	"context"
	"log"

	"ap-agent/vars"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

func CreateOllamaChatModel(ctx context.Context, url string, modelName string) model.ToolCallingChatModel {
	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: url,       // Ollama 服务地址
		Model:   modelName, // 模型名称
	})
	if err != nil {
		log.Fatalf("create ollama chat model failed: %v", err)
	}
	return chatModel
}

func CreateOpenAIChatModel(ctx context.Context, apiKey string, modelName string) model.ToolCallingChatModel {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: apiKey,
		Model:  modelName,
	})
	if err != nil {
		log.Fatalf("create openai chat model failed: %v", err)
	}
	return chatModel
}

// CreateChatModel 按环境变量选择 LLM 提供方
func CreateChatModel(ctx context.Context) model.ToolCallingChatModel {
	if vars.LLMProvider == vars.ProviderOpenAI {
		return CreateOpenAIChatModel(ctx, vars.OPENAI_KEY, vars.OPENAIMODEL)
	}
	return CreateOllamaChatModel(ctx, vars.OLLAMA_PATH, vars.OLLAMAMODEL)
}
