package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
)

// pdfExtractTimeout 单个PDF的解析超时
const pdfExtractTimeout = 30 * time.Second

// PDFExtractor 基于 Eino PDF Parser 的文本提取器
type PDFExtractor struct {
	parser *pdf.PDFParser
	logger zerolog.Logger
}

// NewPDFExtractor 初始化PDF提取器
// ToPages 置为 false：需要整份文档的连续文本而非逐页切分
func NewPDFExtractor(ctx context.Context) (*PDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}
	return &PDFExtractor{parser: p, logger: zerolog.Nop()}, nil
}

// ExtractText 从PDF内容中提取全文
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte, uri string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfExtractTimeout)
	defer cancel()

	start := time.Now()
	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(uri),
	)
	if err != nil {
		return "", fmt.Errorf("pdf parser failed for %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("pdf parser returned no documents for %s", uri)
	}

	// ToPages=false 时通常只有一个文档，保险起见仍拼接全部
	var parts []string
	for _, doc := range docs {
		if doc.Content != "" {
			parts = append(parts, doc.Content)
		}
	}
	text := strings.Join(parts, "\n")

	e.logger.Debug().
		Str("uri", uri).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("PDF文本提取完成")
	return text, nil
}
