package extractor

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// multiSpaceRe 连续空白折叠
	multiSpaceRe = regexp.MustCompile(`[ \t]+`)
	// multiNewlineRe 连续空行折叠
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// PlainTextExtractor 纯文本文件提取器，容忍非法UTF-8字节
type PlainTextExtractor struct{}

// ExtractText 直接按UTF-8读取，非法字节被剔除
func (p *PlainTextExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// CleanText 归一化提取出的文本：统一换行、剔除控制字符、折叠空白
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}

	cleaned := multiSpaceRe.ReplaceAllString(b.String(), " ")
	cleaned = multiNewlineRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// SegmentSentences 按终止标点切分句子，换行同样视为句子边界
// 简历文本多为要点列表，按行切分能保留逐条信息
func SegmentSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sentences = append(sentences, splitAfterPunctuation(line)...)
	}
	return sentences
}

// splitAfterPunctuation 在"终止标点+空白"处切分，标点保留在前一句末尾
// Go的regexp不支持lookbehind，这里手工扫描
func splitAfterPunctuation(line string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(line)-1; i++ {
		c := line[i]
		if (c == '.' || c == '!' || c == '?') && (line[i+1] == ' ' || line[i+1] == '\t') {
			if part := strings.TrimSpace(line[start : i+1]); part != "" {
				parts = append(parts, part)
			}
			start = i + 1
		}
	}
	if part := strings.TrimSpace(line[start:]); part != "" {
		parts = append(parts, part)
	}
	return parts
}
