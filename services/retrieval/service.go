package retrieval

import (
	"context"
	"fmt"
	"log"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const studyMaterialNamespace = "study-material"

// Service retrieves study-material passages from the vector index.
// The quiz generator and the tutor agent both ground their prompts on
// what it returns.
type Service struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewService(apiKey, openaiAPIKey, indexName string) (*Service, error) {
	log.Printf("[INFO] Initializing retrieval service for index %s", indexName)

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &Service{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}, nil
}

// TopicContext returns up to limit passages relevant to the topic,
// best match first.
func (s *Service) TopicContext(ctx context.Context, topic string, limit int) ([]string, error) {
	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: studyMaterialNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	queryEmbeddings, err := s.embedder.EmbedDocuments(ctx, []string{topic})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding for topic %q: %w", topic, err)
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryEmbeddings[0],
		TopK:            uint32(limit),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors for topic %q: %w", topic, err)
	}

	log.Printf("[INFO] Retrieved %d passages for topic %q", len(result.Matches), topic)

	var passages []string
	for _, match := range result.Matches {
		if match.Vector.Metadata == nil {
			continue
		}
		metadata := match.Vector.Metadata.AsMap()

		passage := ""
		if subject, ok := metadata["subject"].(string); ok && subject != "" {
			passage = "Subject: " + subject + "\n"
		}
		if content, ok := metadata["content"].(string); ok && content != "" {
			passage += content
		}
		if passage != "" {
			passages = append(passages, passage)
		}
	}

	if len(passages) == 0 {
		log.Printf("[WARN] No study material found for topic %q", topic)
		return []string{}, nil
	}

	if len(passages) > limit {
		passages = passages[:limit]
	}
	return passages, nil
}
