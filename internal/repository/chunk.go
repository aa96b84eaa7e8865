package repository

import (
	"context"
	"fmt"
)

// 各实体单批写入上限，限制单条 INSERT 的体积
const (
	ChunkActivities      = 1000
	ChunkActivityStats   = 1000
	ChunkClanMembers     = 1000
	ChunkInstances       = 100
	ChunkInstanceMembers = 1000
	ChunkManifest        = 100
	ChunkTriumphs        = 1000
)

// Chunk 将 records 按顺序切分为长度不超过 size 的连续分片，最后一片可以更短；空输入返回 nil
func Chunk[T any](records []T, size int) [][]T {
	if len(records) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(records)
	}
	chunks := make([][]T, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// DedupeBy 按自然键去重，保留首次出现的位置、最后一次出现的值。
// 同一条 INSERT ... ON CONFLICT 中重复的键在 postgres 会直接报错
func DedupeBy[T any, K comparable](records []T, key func(T) K) []T {
	if len(records) == 0 {
		return records
	}
	pos := make(map[K]int, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		k := key(r)
		if i, ok := pos[k]; ok {
			out[i] = r
			continue
		}
		pos[k] = len(out)
		out = append(out, r)
	}
	return out
}

// UpsertChunked 分片顺序写入；第 N 片失败时前 N-1 片已提交，不做回滚
func UpsertChunked[T any](ctx context.Context, repo SyncRepository, records []T, size int, spec UpsertSpec) (int, error) {
	chunks := Chunk(records, size)
	for i, c := range chunks {
		if err := repo.UpsertRange(ctx, c, spec); err != nil {
			return i, fmt.Errorf("写入第%d/%d片失败: %w", i+1, len(chunks), err)
		}
	}
	return len(chunks), nil
}
