package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"mentor/config"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

// Ingests a directory of markdown study material into the vector
// index. File name (minus extension) becomes the subject; sections are
// chunked on headings so retrieval returns focused passages.

const indexNamespace = "study-material"

type materialChunk struct {
	ID      string
	Subject string
	Source  string
	Index   int
	Heading string
	Content string
}

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func main() {
	dir := flag.String("dir", "study-material", "directory of markdown files to index")
	flag.Parse()

	log.Printf("[INFO] Starting study material indexing from %s", *dir)

	cfg := config.Load()

	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(cfg.OpenAIAPIKey),
	)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create OpenAI client: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Fatalf("[ERROR] Failed to create embedder: %v", err)
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.PineconeAPIKey,
	})
	if err != nil {
		log.Fatalf("[ERROR] Failed to create Pinecone client: %v", err)
	}

	if err := ensurePineconeIndex(pc, cfg.PineconeIndexName); err != nil {
		log.Fatalf("[ERROR] Failed to ensure Pinecone index: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.md"))
	if err != nil {
		log.Fatalf("[ERROR] Failed to list material files: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("[ERROR] No markdown files found in %s", *dir)
	}

	log.Printf("[INFO] Found %d material files", len(files))

	for i, file := range files {
		log.Printf("[INFO] Processing file %d/%d: %s", i+1, len(files), file)

		if err := processFile(pc, cfg.PineconeIndexName, file, embedder); err != nil {
			log.Printf("[ERROR] Failed to process %s: %v", file, err)
			continue
		}

		log.Printf("[INFO] Successfully processed %s", file)
	}

	log.Printf("[INFO] Study material indexing completed")
}

func ensurePineconeIndex(pc *pinecone.Client, indexName string) error {
	ctx := context.Background()

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			log.Printf("[INFO] Index %s already exists", indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", indexName)
	dimension := int32(1536) // OpenAI ada-002 embedding dimension
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"project": "mentor-study-material"},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", indexName)
			break
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", indexName)
		time.Sleep(10 * time.Second)
	}

	return nil
}

func processFile(pc *pinecone.Client, indexName, file string, embedder embeddings.Embedder) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	subject := strings.ToLower(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)))
	subject = strings.ReplaceAll(subject, "_", " ")
	subject = strings.ReplaceAll(subject, "-", " ")

	chunks := chunkBySections(subject, filepath.Base(file), string(content))
	if len(chunks) == 0 {
		log.Printf("[INFO] No content in %s, skipping", file)
		return nil
	}
	log.Printf("[INFO] Created %d chunks for subject %q", len(chunks), subject)

	if err := deleteExistingVectors(pc, indexName, subject); err != nil {
		return fmt.Errorf("failed to delete existing vectors: %w", err)
	}

	vectors, err := createVectors(chunks, embedder)
	if err != nil {
		return fmt.Errorf("failed to create vectors: %w", err)
	}

	return upsertVectors(pc, indexName, vectors)
}

func chunkBySections(subject, source, content string) []materialChunk {
	var chunks []materialChunk
	var current strings.Builder
	var heading string
	index := 0

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text == "" {
			return
		}
		chunks = append(chunks, materialChunk{
			ID:      fmt.Sprintf("%s_chunk_%d", strings.ReplaceAll(subject, " ", "_"), index),
			Subject: subject,
			Source:  source,
			Index:   index,
			Heading: heading,
			Content: text,
		})
		index++
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		if match := headingPattern.FindStringSubmatch(line); match != nil {
			flush()
			heading = match[2]
		}
		current.WriteString(line + "\n")
	}
	flush()

	return chunks
}

func deleteExistingVectors(pc *pinecone.Client, indexName, subject string) error {
	ctx := context.Background()

	idxConn, err := indexConnection(pc, indexName)
	if err != nil {
		return err
	}

	prefix := strings.ReplaceAll(subject, " ", "_") + "_chunk_"
	limit := uint32(100)

	listResp, err := idxConn.ListVectors(ctx, &pinecone.ListVectorsRequest{
		Prefix: &prefix,
		Limit:  &limit,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Namespace not found") {
			return nil
		}
		return fmt.Errorf("failed to list vectors: %w", err)
	}

	for {
		ids := make([]string, 0, len(listResp.VectorIds))
		for _, id := range listResp.VectorIds {
			if id != nil {
				ids = append(ids, *id)
			}
		}
		if len(ids) > 0 {
			if err := idxConn.DeleteVectorsById(ctx, ids); err != nil {
				return fmt.Errorf("failed to delete vector batch: %w", err)
			}
			log.Printf("[INFO] Deleted %d stale vectors for subject %q", len(ids), subject)
		}

		if listResp.NextPaginationToken == nil {
			return nil
		}
		listResp, err = idxConn.ListVectors(ctx, &pinecone.ListVectorsRequest{
			Prefix:          &prefix,
			Limit:           &limit,
			PaginationToken: listResp.NextPaginationToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list next batch of vectors: %w", err)
		}
	}
}

func createVectors(chunks []materialChunk, embedder embeddings.Embedder) ([]*pinecone.Vector, error) {
	ctx := context.Background()

	var texts []string
	for _, chunk := range chunks {
		texts = append(texts, fmt.Sprintf("Subject: %s\nHeading: %s\n\n%s", chunk.Subject, chunk.Heading, chunk.Content))
	}

	vectorValues, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	var vectors []*pinecone.Vector
	for i, chunk := range chunks {
		metadata, err := structpb.NewStruct(map[string]any{
			"subject":     chunk.Subject,
			"source":      chunk.Source,
			"chunk_index": chunk.Index,
			"heading":     chunk.Heading,
			"content":     chunk.Content,
			"created_at":  time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create metadata struct for chunk %s: %w", chunk.ID, err)
		}

		vectors = append(vectors, &pinecone.Vector{
			Id:       chunk.ID,
			Values:   &vectorValues[i],
			Metadata: metadata,
		})
	}

	return vectors, nil
}

func upsertVectors(pc *pinecone.Client, indexName string, vectors []*pinecone.Vector) error {
	ctx := context.Background()

	idxConn, err := indexConnection(pc, indexName)
	if err != nil {
		return err
	}

	batchSize := 10
	for i := 0; i < len(vectors); i += batchSize {
		end := i + batchSize
		if end > len(vectors) {
			end = len(vectors)
		}

		count, err := idxConn.UpsertVectors(ctx, vectors[i:end])
		if err != nil {
			return fmt.Errorf("failed to upsert vector batch: %w", err)
		}
		log.Printf("[INFO] Upserted %d vectors (batch %d)", count, i/batchSize+1)
	}

	return nil
}

func indexConnection(pc *pinecone.Client, indexName string) (*pinecone.IndexConnection, error) {
	ctx := context.Background()

	idxDesc, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: indexNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return idxConn, nil
}
