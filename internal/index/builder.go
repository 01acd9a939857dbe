package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"paperlens/internal/config"
	"paperlens/internal/models"
	"paperlens/internal/providers"
	"paperlens/internal/util"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Builder chunks section text and embeds it into an Index.
type Builder struct {
	embedder    providers.EmbeddingProvider
	chunkSize   int
	overlap     int
	batchSize   int
	concurrency int
	dim         int
	limiter     *rate.Limiter
}

func NewBuilder(cfg config.Config, embedder providers.EmbeddingProvider) *Builder {
	b := &Builder{
		embedder:    embedder,
		chunkSize:   cfg.ChunkSize,
		overlap:     cfg.ChunkOverlap,
		batchSize:   cfg.EmbedBatchSize,
		concurrency: cfg.EmbedConcurrency,
		dim:         cfg.EmbedDim,
	}
	if b.batchSize <= 0 {
		b.batchSize = 32
	}
	if b.concurrency <= 0 {
		b.concurrency = 1
	}
	if cfg.EmbedRPS > 0 {
		burst := int(cfg.EmbedRPS)
		if burst < 1 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(cfg.EmbedRPS), burst)
	}
	return b
}

// Chunk splits every section body into overlapping chunks. A section whose
// body is blank contributes its heading line as a single chunk at the section
// start. Chunk IDs and offsets depend only on the text and the chunk
// parameters. pageAt may be nil.
func (b *Builder) Chunk(secs []models.Section, pageAt func(off int) int) []models.Chunk {
	var out []models.Chunk
	for si, sec := range secs {
		spans := util.SplitSpans(sec.Text, b.chunkSize, b.overlap)
		if len(spans) == 0 && strings.TrimSpace(sec.Heading) != "" {
			c := models.Chunk{
				ID:           strconv.Itoa(si) + "-h",
				Section:      sec.Name,
				SectionIndex: si,
				DocOffset:    sec.Start,
				Text:         sec.Heading,
			}
			if pageAt != nil {
				c.Page = pageAt(c.DocOffset)
			}
			out = append(out, c)
			continue
		}
		for _, sp := range spans {
			c := models.Chunk{
				ID:           strconv.Itoa(si) + "-" + strconv.Itoa(sp.Start),
				Section:      sec.Name,
				SectionIndex: si,
				Offset:       sp.Start,
				DocOffset:    sec.BodyStart + sp.Start,
				Text:         sec.Text[sp.Start:sp.End],
			}
			if pageAt != nil {
				c.Page = pageAt(c.DocOffset)
			}
			out = append(out, c)
		}
	}
	return out
}

// Build chunks and embeds the document's sections. It returns a complete index
// or an error, never a partial index.
func (b *Builder) Build(ctx context.Context, doc *models.Document) (*Index, error) {
	chunks := b.Chunk(doc.Sections, doc.PageAt)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("build index: %w", util.ErrEmptyDocument)
	}

	nBatches := (len(chunks) + b.batchSize - 1) / b.batchSize
	vectors := make([][]float32, len(chunks))
	ids := make([]string, nBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for bi := 0; bi < nBatches; bi++ {
		lo := bi * b.batchSize
		hi := min(lo+b.batchSize, len(chunks))
		g.Go(func() error {
			if b.limiter != nil {
				if err := b.limiter.Wait(gctx); err != nil {
					return fmt.Errorf("%w: %w", util.ErrEmbeddingService, err)
				}
			}
			inputs := make([]string, 0, hi-lo)
			for _, c := range chunks[lo:hi] {
				inputs = append(inputs, c.Text)
			}
			vecs, info, err := b.embedder.Embed(gctx, providers.EmbedRequest{
				Operation: "index",
				Inputs:    inputs,
				Dimension: b.dim,
			})
			if err != nil {
				return wrapEmbed(fmt.Errorf("embed batch %d: %w", bi, err))
			}
			if len(vecs) != len(inputs) {
				return fmt.Errorf("%w: batch %d returned %d vectors for %d chunks", util.ErrEmbeddingService, bi, len(vecs), len(inputs))
			}
			for i, v := range vecs {
				nv, err := normalize(v)
				if err != nil {
					return fmt.Errorf("%w: chunk %s: %v", util.ErrEmbeddingService, chunks[lo+i].ID, err)
				}
				vectors[lo+i] = nv
			}
			ids[bi] = info.ID()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: chunk %s has dimension %d, expected %d", util.ErrEmbeddingService, chunks[i].ID, len(v), dim)
		}
	}
	for _, id := range ids[1:] {
		if id != ids[0] {
			return nil, fmt.Errorf("%w: mixed embedders %s and %s", util.ErrEmbeddingService, ids[0], id)
		}
	}

	log.Printf("index built document_id=%s chunks=%d dim=%d embedder=%s", doc.ID, len(chunks), dim, ids[0])
	return &Index{chunks: chunks, vectors: vectors, dim: dim, embedder: ids[0]}, nil
}

func wrapEmbed(err error) error {
	if errors.Is(err, util.ErrEmbeddingService) {
		return err
	}
	return fmt.Errorf("%w: %w", util.ErrEmbeddingService, err)
}
