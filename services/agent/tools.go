package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
)

// AgentTool is a capability the tutor model can invoke during a turn.
type AgentTool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) (string, error)
	GetAnthropicToolSpec() anthropic.ToolInputSchemaParam
}

// ContextProvider retrieves study-material passages for a topic.
type ContextProvider interface {
	TopicContext(ctx context.Context, topic string, limit int) ([]string, error)
}

type SearchStudyMaterialInput struct {
	Query string `json:"query" jsonschema:"required,description=The topic or question to search study material for"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of passages to return (default: 3)"`
}

type SearchStudyMaterialTool struct {
	retriever ContextProvider
}

func NewSearchStudyMaterialTool(retriever ContextProvider) SearchStudyMaterialTool {
	return SearchStudyMaterialTool{retriever: retriever}
}

func (s SearchStudyMaterialTool) Name() string {
	return "search_study_material"
}

func (s SearchStudyMaterialTool) Description() string {
	return "Searches the indexed study material for passages relevant to a topic or question"
}

func (s SearchStudyMaterialTool) Call(ctx context.Context, input string) (string, error) {
	var params SearchStudyMaterialInput
	if err := json.Unmarshal([]byte(input), &params); err != nil {
		return "", fmt.Errorf("failed to parse search tool input: %v", err)
	}

	if params.Limit <= 0 {
		params.Limit = 3
	}

	passages, err := s.retriever.TopicContext(ctx, params.Query, params.Limit)
	if err != nil {
		return "", fmt.Errorf("failed to search study material: %v", err)
	}
	if len(passages) == 0 {
		return "No study material found for this query.", nil
	}

	return strings.Join(passages, "\n\n---\n\n"), nil
}

func (s SearchStudyMaterialTool) GetAnthropicToolSpec() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[SearchStudyMaterialInput]()
}

func generateAnthropicSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}
