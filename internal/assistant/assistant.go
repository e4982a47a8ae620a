package assistant

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/bayti-store/server/internal/catalog"
	logx "github.com/bayti-store/server/pkg/logger"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

// ================ Config ================

type ModelConfig struct {
	Model       string  `envconfig:"ASSISTANT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ASSISTANT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"ASSISTANT_TEMPERATURE" default:"0.7"`
}

type PromptConfig struct {
	ShopName string `envconfig:"ASSISTANT_SHOP_NAME" default:"Bayti"`
	ShopType string `envconfig:"ASSISTANT_SHOP_TYPE" default:"home goods and kitchenware store"`
}

type Config struct {
	APIKey       string
	BaseURL      string
	Model        ModelConfig
	Prompt       PromptConfig
	MaxToolCalls int
}

// Assistant answers storefront chat queries with product recommendations,
// grounding every suggestion in the live catalog through bound tools.
type Assistant struct {
	model        *gemini.ChatModel
	tools        map[string]tool.InvokableTool
	repo         ConversationRepository
	promptCfg    PromptConfig
	maxToolCalls int
}

func New(ctx context.Context, cfg Config, store catalog.Store, repo ConversationRepository) (*Assistant, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &cfg.Model.Temperature,
		MaxTokens:   &cfg.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating assistant model")
		return nil, fmt.Errorf("error creating assistant model: %w", err)
	}

	a := &Assistant{
		model:        chatModel,
		tools:        map[string]tool.InvokableTool{},
		repo:         repo,
		promptCfg:    cfg.Prompt,
		maxToolCalls: cfg.MaxToolCalls,
	}
	if a.maxToolCalls <= 0 {
		a.maxToolCalls = 6
	}

	infos := make([]*schema.ToolInfo, 0, 2)
	for _, t := range []tool.BaseTool{newSearchProductsTool(store), newGetProductDetailsTool(store)} {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		invokable, ok := t.(tool.InvokableTool)
		if !ok {
			return nil, fmt.Errorf("tool %s is not invokable", info.Name)
		}
		a.tools[info.Name] = invokable
		infos = append(infos, info)
	}
	if err := chatModel.BindTools(infos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	return a, nil
}

// renderSystemPrompt renders the system prompt via the Eino prompt component
// so prompt callbacks fire the same way they do for model calls.
func (a *Assistant) renderSystemPrompt(ctx context.Context) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"ShopName":    a.promptCfg.ShopName,
		"ShopType":    a.promptCfg.ShopType,
		"SearchTool":  ToolSearchProducts,
		"DetailsTool": ToolGetProductDetails,
	})
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// Chat appends the user query to the conversation, runs a bounded tool-calling
// loop against the model, persists the reply, and returns it.
func (a *Assistant) Chat(ctx context.Context, conversationID, query string) (string, error) {
	if err := a.repo.AddMessage(ctx, conversationID, schema.UserMessage(query)); err != nil {
		return "", err
	}

	history, err := a.repo.LoadHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}
	system, err := a.renderSystemPrompt(ctx)
	if err != nil {
		return "", err
	}

	messages := make([]*schema.Message, 0, len(history)+1)
	messages = append(messages, schema.SystemMessage(system))
	messages = append(messages, history...)

	for calls := 0; ; {
		out, err := a.model.Generate(ctx, messages)
		if err != nil {
			logx.Error().Err(err).Str("conversationID", conversationID).Msg("assistant generation failed")
			return "", fmt.Errorf("assistant generation: %w", err)
		}

		if len(out.ToolCalls) == 0 {
			if err := a.repo.AddMessage(ctx, conversationID, schema.AssistantMessage(out.Content, nil)); err != nil {
				logx.Warn().Err(err).Str("conversationID", conversationID).Msg("failed to persist assistant reply")
			}
			return out.Content, nil
		}

		messages = append(messages, out)
		for _, tc := range out.ToolCalls {
			calls++
			if calls > a.maxToolCalls {
				logx.Warn().Str("conversationID", conversationID).Int("calls", calls).Msg("tool call limit reached")
				return "", fmt.Errorf("assistant exceeded the tool call limit")
			}
			messages = append(messages, a.runTool(ctx, tc))
		}
	}
}

func (a *Assistant) runTool(ctx context.Context, tc schema.ToolCall) *schema.Message {
	t, ok := a.tools[tc.Function.Name]
	if !ok {
		logx.Warn().Str("tool", tc.Function.Name).Msg("model requested an unknown tool")
		return schema.ToolMessage(fmt.Sprintf("unknown tool: %s", tc.Function.Name), tc.ID)
	}

	result, err := t.InvokableRun(ctx, tc.Function.Arguments)
	if err != nil {
		logx.Warn().Err(err).Str("tool", tc.Function.Name).Msg("tool execution failed")
		return schema.ToolMessage(fmt.Sprintf("tool error: %v", err), tc.ID)
	}
	return schema.ToolMessage(result, tc.ID)
}

// Reset clears the conversation history.
func (a *Assistant) Reset(ctx context.Context, conversationID string) error {
	return a.repo.ClearHistory(ctx, conversationID)
}
