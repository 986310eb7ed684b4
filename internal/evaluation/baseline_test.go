package evaluation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	content := `{
		"grades": {"a.pdf": 88, "b.pdf": 72},
		"ranking": ["a.pdf", "b.pdf"],
		"tolerance": 3,
		"top_n": 2
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	b, err := LoadBaseline(path)
	require.NoError(t, err)
	assert.Equal(t, 88, b.Grades["a.pdf"])
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, b.Ranking)
	assert.Equal(t, 3, b.Tolerance)
	assert.Equal(t, 2, b.TopN)
}

func TestLoadBaselineMissingFile(t *testing.T) {
	_, err := LoadBaseline(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadBaselineEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadBaseline(path)
	assert.Error(t, err, "既无评分也无排名的基准应报错")
}

func TestEvaluate(t *testing.T) {
	baseline := &Baseline{
		Grades:  map[string]int{"a.pdf": 88, "b.pdf": 60},
		Ranking: []string{"a.pdf", "b.pdf"},
	}

	summary := Evaluate(records(), baseline, 2*time.Minute)

	assert.Equal(t, 2, summary.Accuracy.Compared)
	assert.Equal(t, len(baseline.Ranking), summary.TopN, "TopN未指定时取排名长度")
	assert.InDelta(t, 1.0, summary.TopNOverlap, 0.001)
	assert.Greater(t, summary.TimeSavings.Saved, time.Duration(0), "批量筛选应节省人工审阅时间")
}
