package handler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"
	"resume-screener-go/internal/processor"
	"resume-screener-go/internal/screening"
	"resume-screener-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct{}

func (s *stubExtractor) Supported(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".txt")
}

func (s *stubExtractor) Extract(_ context.Context, data []byte, filename string) (*types.ResumeDocument, error) {
	text := string(data)
	return &types.ResumeDocument{
		SubmissionID: "sub-" + filename,
		Filename:     filename,
		FileType:     ".txt",
		RawText:      text,
		Sentences:    strings.Split(text, "\n"),
		WordCount:    len(strings.Fields(text)),
	}, nil
}

func (s *stubExtractor) ExtractFile(ctx context.Context, path string) (*types.ResumeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.Extract(ctx, data, filepath.Base(path))
}

func newTestHandler(t *testing.T) *ScreeningHandler {
	t.Helper()
	cfg := config.DefaultConfig()
	scorer := screening.NewScorer(screening.DefaultSkillTable(), screening.DefaultPositionTable(), screening.DefaultScorerConfig())
	proc, err := processor.NewScreeningProcessor(
		[]processor.ComponentOpt{
			processor.WithExtractor(&stubExtractor{}),
			processor.WithGrader(scorer),
		},
		nil,
	)
	require.NoError(t, err)
	return NewScreeningHandler(cfg, nil, proc)
}

// TestHandleResumeUpload 上传评分响应
func TestHandleResumeUpload(t *testing.T) {
	h := newTestHandler(t)
	content := "Engineer with 6 years experience. Skills: Python, Docker, SQL. Bachelor degree."

	resp, err := h.HandleResumeUpload(context.Background(), bytes.NewReader([]byte(content)), "jane_resume.txt", "")
	require.NoError(t, err)

	assert.Equal(t, "processed", resp.Status)
	assert.NotEmpty(t, resp.SubmissionID)
	assert.Greater(t, resp.Grade, 0)
	assert.Contains(t, resp.Skills, "python")
	require.NotNil(t, resp.Record)
	assert.Equal(t, "jane_resume.txt", resp.Record.Filename)
}

// TestHandleScreenDirectoryUnknownPosition 未知岗位被拒绝
func TestHandleScreenDirectoryUnknownPosition(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.HandleScreenDirectory(context.Background(), &ScreenRequest{Dir: t.TempDir(), Position: "astronaut"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "未知岗位")
}

// TestHandleScreenDirectory 空目录也能生成报告
func TestHandleScreenDirectory(t *testing.T) {
	h := newTestHandler(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_resume.txt"),
		[]byte("Developer with 3 years experience. Skills: Python, SQL."), 0644))

	report, err := h.HandleScreenDirectory(context.Background(), &ScreenRequest{Dir: dir, Position: "software_engineer"})
	require.NoError(t, err)
	assert.Len(t, report.Results, 1)
	assert.Equal(t, "software_engineer", report.TargetPosition)
}

// TestHandleListRunsWithoutDatabase 数据库未配置时报错
func TestHandleListRunsWithoutDatabase(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.HandleListRuns(context.Background(), 10, 0)
	assert.Error(t, err)
}

// TestHandleGetRunNotFound 无存储后端时运行不存在
func TestHandleGetRunNotFound(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.HandleGetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

// TestHandleResumeUploadTooLarge 超过大小上限的上传被拒绝
func TestHandleResumeUploadTooLarge(t *testing.T) {
	h := newTestHandler(t)

	oversized := bytes.NewReader(make([]byte, constants.MaxResumeFileSize+1))
	_, err := h.HandleResumeUpload(context.Background(), oversized, "huge.txt", "")
	assert.ErrorIs(t, err, ErrFileTooLarge, "超限文件应返回哨兵错误")
}

// TestHandleGetResumeNotFound 无存储后端时简历提交不存在
func TestHandleGetResumeNotFound(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.HandleGetResume(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

// TestHandleDeleteResumeWithoutStorage 存储后端未配置时删除报错
func TestHandleDeleteResumeWithoutStorage(t *testing.T) {
	h := newTestHandler(t)
	err := h.HandleDeleteResume(context.Background(), "nope")
	assert.Error(t, err)
}

// TestHandleLatestResultsWithoutDatabase 数据库未配置时报错
func TestHandleLatestResultsWithoutDatabase(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.HandleLatestResults(context.Background(), 0, 10)
	assert.Error(t, err)

	_, err = h.HandleLatestStats(context.Background())
	assert.Error(t, err)
}

// TestHandleListPositions 岗位画像列表
func TestHandleListPositions(t *testing.T) {
	h := newTestHandler(t)
	infos := h.HandleListPositions()

	require.NotEmpty(t, infos)
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
		assert.NotEmpty(t, info.Required, "岗位 %s 必备技能不应为空", info.ID)
	}
	assert.Contains(t, ids, "software_engineer")
	assert.Contains(t, ids, "data_scientist")
}
