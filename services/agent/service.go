package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// maxToolRounds bounds the tool-use loop so one question can never
// spin the model indefinitely.
const maxToolRounds = 5

// Service is the tutor agent. It answers subject questions with a
// Claude model that can search the study-material index before
// responding.
type Service struct {
	client *anthropic.Client
	tools  []AgentTool
}

func NewService(anthropicAPIKey string, retriever ContextProvider) (*Service, error) {
	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))

	tools := []AgentTool{}
	if retriever != nil {
		tools = append(tools, NewSearchStudyMaterialTool(retriever))
	}

	return &Service{
		client: &client,
		tools:  tools,
	}, nil
}

// Answer runs the tool-use loop for one question and returns the final
// text reply.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	log.Printf("[INFO] Tutor agent answering question (%d chars)", len(question))

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
	}
	toolSpecs := s.buildAnthropicToolSpecs()

	for round := 0; round < maxToolRounds; round++ {
		response, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.ModelClaude4Sonnet20250514,
			MaxTokens: 4096,
			System: []anthropic.TextBlockParam{
				{Text: tutorSystemPrompt},
			},
			Messages: messages,
			Tools:    toolSpecs,
		})
		if err != nil {
			log.Printf("[ERROR] Failed to call Anthropic API: %v", err)
			return "", fmt.Errorf("failed to call Anthropic API: %w", err)
		}

		var textParts []string
		var toolUses []anthropic.ToolUseBlock
		for _, block := range response.Content {
			switch block := block.AsAny().(type) {
			case anthropic.TextBlock:
				textParts = append(textParts, block.Text)
			case anthropic.ToolUseBlock:
				toolUses = append(toolUses, block)
			}
		}

		if len(toolUses) == 0 {
			return strings.TrimSpace(strings.Join(textParts, "\n")), nil
		}

		messages = append(messages, response.ToParam())

		toolResultBlocks := []anthropic.ContentBlockParamUnion{}
		for _, toolUse := range toolUses {
			log.Printf("[INFO] Executing tool: %s", toolUse.Name)

			inputJSON, _ := json.Marshal(toolUse.Input)
			result, err := s.executeTool(ctx, toolUse.Name, string(inputJSON))
			if err != nil {
				log.Printf("[ERROR] Tool execution failed: %v", err)
				result = fmt.Sprintf("Error: %v", err)
			}

			toolResultBlocks = append(toolResultBlocks, anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: toolUse.ID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: result}},
					},
				},
			})
		}
		messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
	}

	return "", fmt.Errorf("tool loop exceeded %d rounds without a final answer", maxToolRounds)
}

func (s *Service) buildAnthropicToolSpecs() []anthropic.ToolUnionParam {
	var toolSpecs []anthropic.ToolUnionParam
	for _, tool := range s.tools {
		toolSpecs = append(toolSpecs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: tool.GetAnthropicToolSpec(),
			},
		})
	}
	return toolSpecs
}

func (s *Service) executeTool(ctx context.Context, toolName, arguments string) (string, error) {
	for _, tool := range s.tools {
		if tool.Name() == toolName {
			return tool.Call(ctx, arguments)
		}
	}
	return "", fmt.Errorf("tool %s not found", toolName)
}
