package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"resume-screener-go/internal/types"
)

// csvHeader 结果CSV的固定列
var csvHeader = []string{
	"rank", "filename", "grade", "position_match", "years_experience",
	"education", "skills", "word_count", "summary",
}

// WriteCSV 将筛选报告写为CSV文件，结果按得分降序
func WriteCSV(report *types.ScreeningReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建CSV文件 %s 失败: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("写CSV表头失败: %w", err)
	}
	for i, rec := range report.Results {
		row := []string{
			strconv.Itoa(i + 1),
			rec.Filename,
			strconv.Itoa(rec.Grade),
			strconv.Itoa(rec.PositionMatch),
			strconv.FormatFloat(rec.YearsExperience, 'f', 1, 64),
			string(rec.Education),
			strings.Join(rec.Skills, "; "),
			strconv.Itoa(rec.WordCount),
			rec.Summary,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("写CSV行失败: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteJSON 将完整筛选报告写为带缩进的JSON文件
func WriteJSON(report *types.ScreeningReport, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写JSON文件 %s 失败: %w", path, err)
	}
	return nil
}

// ReportPaths 按运行时间生成输出文件路径
func ReportPaths(resultsDir string, report *types.ScreeningReport) (csvPath, jsonPath string) {
	stamp := report.ScreenedAt.Format("20060102_150405")
	base := fmt.Sprintf("screening_%s_%s", report.TargetPosition, stamp)
	return filepath.Join(resultsDir, base+".csv"), filepath.Join(resultsDir, base+".json")
}

// WriteReport 同时输出CSV与JSON，返回两个文件路径
func WriteReport(report *types.ScreeningReport, resultsDir string) (string, string, error) {
	csvPath, jsonPath := ReportPaths(resultsDir, report)
	if err := WriteCSV(report, csvPath); err != nil {
		return "", "", err
	}
	if err := WriteJSON(report, jsonPath); err != nil {
		return "", "", err
	}
	return csvPath, jsonPath, nil
}
