package chunkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dgallion1/docchunk/internal/document"
)

// Meta is the per-document record stored next to its chunks.
type Meta struct {
	DocID       string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	ContentHash string    `json:"content_hash"`
	TotalChunks int       `json:"total_chunks"`
	TotalChars  int       `json:"total_chars"`
	ChunkSize   int       `json:"chunk_size"`
	Overlap     int       `json:"chunk_overlap"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoredDocument is a document read back from the store.
type StoredDocument struct {
	Meta   Meta             `json:"meta"`
	Chunks []document.Chunk `json:"chunks"`
}

func docKey(docID string) string {
	return "documents/" + docID
}

func chunkKey(docID string, index int) string {
	return fmt.Sprintf("%s/chunks/%06d", docKey(docID), index)
}

// PutChunk writes one chunk under its document.
func (c *Client) PutChunk(ctx context.Context, docID string, chunk document.Chunk) error {
	return c.PutNode(ctx, chunkKey(docID, chunk.ChunkIndex), NodeRequest{
		Value:  chunk,
		Source: "docchunk:" + docID,
	})
}

// PutMeta writes the document record. It is written after the chunks so a
// reader that finds meta can expect every chunk to be present.
func (c *Client) PutMeta(ctx context.Context, meta Meta) error {
	return c.PutNode(ctx, docKey(meta.DocID)+"/meta", NodeRequest{
		Value:  meta,
		Source: "docchunk:" + meta.DocID,
	})
}

// GetDocument reads a document's meta and chunks. A missing document returns
// nil, nil.
func (c *Client) GetDocument(ctx context.Context, docID string) (*StoredDocument, error) {
	node, err := c.GetNode(ctx, docKey(docID)+"/meta")
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}

	doc := &StoredDocument{Chunks: []document.Chunk{}}
	if err := json.Unmarshal(node.Value, &doc.Meta); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}

	nodes, err := c.ListChildren(ctx, docKey(docID)+"/chunks", 0)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		var ch document.Chunk
		if err := json.Unmarshal(n.Value, &ch); err != nil {
			return nil, fmt.Errorf("decode chunk %s: %w", n.Key, err)
		}
		doc.Chunks = append(doc.Chunks, ch)
	}
	sort.Slice(doc.Chunks, func(i, j int) bool {
		return doc.Chunks[i].ChunkIndex < doc.Chunks[j].ChunkIndex
	})
	return doc, nil
}

// DeleteDocument removes a document and all of its chunks.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	return c.DeleteNode(ctx, docKey(docID), true)
}
