package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCleanText 文本归一化
func TestCleanText(t *testing.T) {
	input := "Line one\r\nLine   two\t\tmore\r\n\n\n\nLine three\x00\x01"
	got := CleanText(input)

	assert.NotContains(t, got, "\r", "回车应被统一为换行")
	assert.NotContains(t, got, "\x00", "控制字符应被剔除")
	assert.Contains(t, got, "Line two more", "连续空白应折叠为单个空格")
	assert.NotContains(t, got, "\n\n\n", "连续空行应折叠")
}

// TestSegmentSentences 句子切分
func TestSegmentSentences(t *testing.T) {
	text := "First sentence. Second sentence! Third?\n- bullet point one\n- bullet point two"
	sentences := SegmentSentences(text)

	require.Len(t, sentences, 5)
	assert.Equal(t, "First sentence.", sentences[0])
	assert.Equal(t, "Second sentence!", sentences[1])
	assert.Equal(t, "- bullet point one", sentences[3])

	assert.Nil(t, SegmentSentences(""), "空文本无句子")
}

// TestPlainTextExtractorInvalidUTF8 非法UTF-8字节被剔除而不是报错
func TestPlainTextExtractorInvalidUTF8(t *testing.T) {
	p := &PlainTextExtractor{}

	got, err := p.ExtractText(context.Background(), []byte{'o', 'k', 0xff, 0xfe, '!'}, "bad.txt")
	require.NoError(t, err)
	assert.Contains(t, got, "ok")
	assert.Contains(t, got, "!")
}

// TestExtractTxtFile 从txt文件构建文档记录
func TestExtractTxtFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "resume.txt")
	content := "Jane Doe - Engineer.\nSkills: Python, AWS.\n5 years experience."
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	e, err := New(context.Background())
	require.NoError(t, err, "构造提取器不应失败")

	doc, err := e.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "resume.txt", doc.Filename)
	assert.Equal(t, ".txt", doc.FileType)
	assert.NotEmpty(t, doc.SubmissionID)
	assert.Greater(t, doc.WordCount, 0)
	assert.NotEmpty(t, doc.Sentences)
	assert.Contains(t, doc.RawText, "Jane Doe")
}

// TestExtractUnsupportedFormat 不支持的扩展名返回哨兵错误
func TestExtractUnsupportedFormat(t *testing.T) {
	e, err := New(context.Background())
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), []byte("data"), "photo.png")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, e.Supported("photo.png"))
	assert.True(t, e.Supported("resume.PDF"), "扩展名匹配应忽略大小写")
}

// TestDocxContentToText WordprocessingML标签剥离
func TestDocxContentToText(t *testing.T) {
	content := `<w:p><w:r><w:t>Hello &amp; welcome</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>`
	got := docxContentToText(content)

	assert.Contains(t, got, "Hello & welcome")
	assert.Contains(t, got, "\n", "段落边界应转为换行")
	assert.NotContains(t, got, "<w:", "XML标签应被剔除")
}
