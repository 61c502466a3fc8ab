package jsonfile

import (
	"context"
	"fmt"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"
)

// BaseSource は JSON ファイルに置かれた基底データセットを読み出します。
// コメントと末尾カンマを含む JSONC も受け付けます。呼び出しのたびにファイルを読み直します。
type BaseSource struct {
	fs   afero.Fs
	path string
}

// NewBaseSource は BaseSource を生成します。
func NewBaseSource(fs afero.Fs, path string) *BaseSource {
	return &BaseSource{fs: fs, path: path}
}

// Load は基底レコードをファイル上の順序で返します。
func (s *BaseSource) Load(ctx context.Context) ([]roster.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read base %s: %w", s.path, err)
	}

	docs, err := decodeDocuments(jsonc.ToJSON(b))
	if err != nil {
		return nil, fmt.Errorf("jsonfile: parse base %s: %w", s.path, err)
	}

	records := make([]roster.Record, 0, len(docs))
	for _, doc := range docs {
		rec := doc.toRecord()
		rec.IsBase = true
		records = append(records, rec)
	}
	return records, nil
}
