package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resume-screener-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *types.ScreeningReport {
	return &types.ScreeningReport{
		RunID:          "run-123",
		TargetPosition: "software_engineer",
		ScreenedAt:     time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC),
		Results: []types.ScoreRecord{
			{
				Filename:        "alice_resume.pdf",
				Grade:           94,
				Skills:          []string{"aws", "python"},
				Summary:         "Senior engineer, 10 years",
				WordCount:       120,
				YearsExperience: 10,
				Education:       types.EducationMaster,
				PositionMatch:   67,
			},
			{
				Filename:      "bob_resume.pdf",
				Grade:         52,
				Skills:        []string{"html"},
				WordCount:     45,
				Education:     types.EducationNone,
				PositionMatch: 17,
			},
		},
		Statistics: types.ScreeningStatistics{TotalCandidates: 2, AverageGrade: 73, HighestGrade: 94, LowestGrade: 52},
	}
}

// TestWriteCSV CSV内容与行序
func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	require.NoError(t, WriteCSV(sampleReport(), path), "写CSV不应失败")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "表头加两条结果")

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "1", rows[1][0], "排名从1开始")
	assert.Equal(t, "alice_resume.pdf", rows[1][1])
	assert.Equal(t, "94", rows[1][2])
	assert.Equal(t, "aws; python", rows[1][6])
	assert.Equal(t, "bob_resume.pdf", rows[2][1])
}

// TestWriteJSON JSON往返保留报告字段
func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := sampleReport()
	require.NoError(t, WriteJSON(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got types.ScreeningReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report.RunID, got.RunID)
	assert.Len(t, got.Results, 2)
	assert.Equal(t, 94, got.Results[0].Grade)
	assert.Equal(t, report.Statistics, got.Statistics)
}

// TestReportPaths 输出文件命名
func TestReportPaths(t *testing.T) {
	csvPath, jsonPath := ReportPaths("/tmp/results", sampleReport())
	assert.Equal(t, "/tmp/results/screening_software_engineer_20260824_103000.csv", csvPath)
	assert.Equal(t, "/tmp/results/screening_software_engineer_20260824_103000.json", jsonPath)
}

// TestWriteReport 同时产出两种格式
func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	csvPath, jsonPath, err := WriteReport(sampleReport(), dir)
	require.NoError(t, err)

	assert.FileExists(t, csvPath)
	assert.FileExists(t, jsonPath)
}
