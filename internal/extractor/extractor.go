package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resume-screener-go/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
)

// ErrUnsupportedFormat 文件扩展名不在支持列表内
var ErrUnsupportedFormat = fmt.Errorf("unsupported resume format")

// FormatExtractor 单一格式的文本提取器
type FormatExtractor interface {
	// ExtractText 从文件内容中提取纯文本。uri 仅用于日志与错误信息
	ExtractText(ctx context.Context, data []byte, uri string) (string, error)
}

// Extractor 多格式简历文本提取器，按扩展名分发到具体实现
// 提取失败只影响单个文件，调用方记录警告后跳过即可
type Extractor struct {
	formats map[string]FormatExtractor
	logger  zerolog.Logger
}

// Option Extractor 的配置选项
type Option func(*Extractor)

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithFormat 注册或覆盖某个扩展名的提取器，便于测试替换
func WithFormat(ext string, fe FormatExtractor) Option {
	return func(e *Extractor) {
		e.formats[strings.ToLower(ext)] = fe
	}
}

// New 构造提取器，默认支持 .pdf / .docx / .txt / .doc
func New(ctx context.Context, opts ...Option) (*Extractor, error) {
	pdfExtractor, err := NewPDFExtractor(ctx)
	if err != nil {
		return nil, fmt.Errorf("init pdf extractor: %w", err)
	}

	plain := &PlainTextExtractor{}
	e := &Extractor{
		formats: map[string]FormatExtractor{
			".pdf":  pdfExtractor,
			".docx": &DocxExtractor{},
			".txt":  plain,
			".doc":  plain, // 旧版 .doc 按纯文本尽力读取
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Supported 判断文件名的扩展名是否受支持
func (e *Extractor) Supported(filename string) bool {
	_, ok := e.formats[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ExtractFile 读取并解析一个简历文件，返回不可变的文档记录
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*types.ResumeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resume file %s: %w", path, err)
	}
	return e.Extract(ctx, data, filepath.Base(path))
}

// Extract 从内存中的文件内容构建文档记录
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (*types.ResumeDocument, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fe, ok := e.formats[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	raw, err := fe.ExtractText(ctx, data, filename)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", filename, err)
	}

	cleaned := CleanText(raw)
	submissionID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate submission id: %w", err)
	}

	doc := &types.ResumeDocument{
		SubmissionID: submissionID.String(),
		Filename:     filename,
		FileType:     ext,
		RawText:      cleaned,
		Sentences:    SegmentSentences(cleaned),
		WordCount:    len(strings.Fields(cleaned)),
	}

	e.logger.Debug().
		Str("filename", filename).
		Int("word_count", doc.WordCount).
		Int("sentences", len(doc.Sentences)).
		Msg("简历文本提取完成")

	return doc, nil
}
