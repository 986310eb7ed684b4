package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig 默认配置应自洽可用
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "software_engineer", cfg.Screening.TargetPosition)
	assert.Equal(t, 10, cfg.Screening.TopN)
	assert.Equal(t, 30, cfg.Screening.MinGrade)
	assert.Equal(t, 95, cfg.Screening.MaxGrade)
	assert.True(t, cfg.Screening.RemovePersonalInfo)

	assert.NotEmpty(t, cfg.Email.Templates.Accepted, "默认模板不应为空")
	assert.NotEmpty(t, cfg.Email.Templates.Rejected)
	assert.NotEmpty(t, cfg.Email.Templates.NeedsReview)
	assert.Contains(t, cfg.Email.Templates.Accepted, "{candidate_name}", "模板应含候选人占位符")
	assert.Contains(t, cfg.Email.Templates.Accepted, "{position}", "模板应含岗位占位符")

	assert.Equal(t, "resume-originals", cfg.MinIO.OriginalsBucket)
	assert.Equal(t, "resume.events.exchange", cfg.RabbitMQ.ResumeEventsExchange)
}

// TestLoadConfigFromFile 从YAML文件加载并合并默认值
func TestLoadConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
server:
  address: ":9090"
screening:
  target_position: data_scientist
  top_n: 5
  minimum_score: 80
mysql:
  host: db.internal
  username: screener
  database: screening
redis:
  address: "localhost:6379"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "加载配置不应失败")

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "data_scientist", cfg.Screening.TargetPosition)
	assert.Equal(t, 5, cfg.Screening.TopN)
	assert.Equal(t, 80, cfg.Screening.MinimumScore)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)

	// 文件未覆盖的字段保留默认值
	assert.Equal(t, 30, cfg.Screening.MinGrade, "未覆盖的字段应保留默认值")
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, "INBOX", cfg.Email.Folder)
}

// TestLoadConfigMissingFileInTest 测试环境下找不到文件退回默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such.yaml"))
	require.NoError(t, err, "测试环境下缺少配置文件应退回默认配置")
	assert.Equal(t, DefaultConfig().Screening.TargetPosition, cfg.Screening.TargetPosition)
}

// TestEnvOverrides 敏感字段的环境变量覆盖
func TestEnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
email:
  username: from-file@example.com
  password: file-password
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("SCREENER_EMAIL_PASSWORD", "env-password")
	t.Setenv("SCREENER_API_KEY", "env-api-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file@example.com", cfg.Email.Username, "未设置环境变量的字段保持文件值")
	assert.Equal(t, "env-password", cfg.Email.Password, "环境变量应覆盖文件值")
	assert.Equal(t, "env-api-key", cfg.Server.APIKey)
}

// TestLoadConfigInvalidYAML 非法YAML报错
func TestLoadConfigInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err, "解析非法YAML应返回错误")
}
