package extractor

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	// paragraphEndRe 段落结束标签换成换行，保持逐行结构
	paragraphEndRe = regexp.MustCompile(`</w:p>`)
	// xmlTagRe 剩余的XML标签全部剔除
	xmlTagRe = regexp.MustCompile(`<[^>]+>`)
)

// DocxExtractor .docx 文本提取器
type DocxExtractor struct{}

// ExtractText 解析docx并将document.xml还原为纯文本
func (d *DocxExtractor) ExtractText(_ context.Context, data []byte, uri string) (string, error) {
	reader := bytes.NewReader(data)
	doc, err := docx.ReadDocxFromMemory(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx %s: %w", uri, err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	return docxContentToText(content), nil
}

// docxContentToText 剥离WordprocessingML标签并还原常见实体
func docxContentToText(content string) string {
	text := paragraphEndRe.ReplaceAllString(content, "\n")
	text = xmlTagRe.ReplaceAllString(text, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(text)
}
