package rag

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultEncoding is used by the current OpenAI embedding models.
	DefaultEncoding = "cl100k_base"
	// DefaultChunkSize is the chunk size in tokens.
	DefaultChunkSize = 400
	// DefaultChunkOverlap is the overlap between consecutive chunks in tokens.
	DefaultChunkOverlap = 40
)

var (
	encodingCache   = make(map[string]*tiktoken.Tiktoken)
	encodingCacheMu sync.Mutex
)

func getEncoding(name string) (*tiktoken.Tiktoken, error) {
	encodingCacheMu.Lock()
	defer encodingCacheMu.Unlock()

	if enc, ok := encodingCache[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get encoding %s", name)
	}
	encodingCache[name] = enc
	return enc, nil
}

// Chunker splits text into overlapping token windows.
type Chunker struct {
	enc       *tiktoken.Tiktoken
	chunkSize int
	overlap   int
}

// NewChunker creates a chunker for the encoding. Zero chunkSize uses the
// default; an overlap that is negative or does not fit the chunk size is
// replaced with a safe one.
func NewChunker(encoding string, chunkSize, overlap int) (*Chunker, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		// the window must always advance, even for small chunk sizes
		overlap = min(DefaultChunkOverlap, chunkSize/10)
	}

	enc, err := getEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Chunker{
		enc:       enc,
		chunkSize: chunkSize,
		overlap:   overlap,
	}, nil
}

// CountTokens returns the number of tokens in the text.
func (c *Chunker) CountTokens(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// Split returns the text split into chunks of at most chunkSize tokens,
// with the configured overlap between consecutive chunks.
func (c *Chunker) Split(text string) []string {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil
	}
	if len(tokens) <= c.chunkSize {
		return []string{text}
	}

	step := c.chunkSize - c.overlap
	var chunks []string
	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.enc.Decode(tokens[start:end]))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
