package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "product": {"url": "http://ui"},
  "jira": {
    "scheme": "https",
    "host": "jira.example.com",
    "path": "/rest/api/2/issue",
    "user": "bot",
    "password": "pw",
    "project_key": "OPS",
    "issuetype_id": "10",
    "issue_label": "auto-page",
    "summary_prefix": "[ALERT]"
  },
  "alerters": ["jira", "webhook"]
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadReadsFileAndDefaultsProductName(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultProductName, cfg.Product.Name)
	assert.Equal(t, "azkaban", cfg.Jira.ProductName)
	assert.Equal(t, "http://ui", cfg.Jira.ProductURL)
	assert.Equal(t, "OPS", cfg.Jira.ProjectKey)
	assert.Equal(t, "10", cfg.Jira.IssueTypeID)
	assert.Equal(t, []string{"jira", "webhook"}, cfg.Alerters)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.NoError(t, cfg.Jira.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("JIRA_PASSWORD", "from-env")
	t.Setenv("PRODUCT_NAME", "scheduler")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Jira.Password)
	assert.Equal(t, "scheduler", cfg.Jira.ProductName)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultProductName, cfg.Product.Name)
	assert.Equal(t, []string{"jira"}, cfg.Alerters)

	err = cfg.Jira.Validate()
	var missing *MissingSettingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "product.url", missing.Key)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, `{"jira": `)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateReportsFirstMissingKey(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	jc := cfg.Jira
	jc.IssueLabel = " "
	err = jc.Validate()

	var missing *MissingSettingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "jira.issue_label", missing.Key)
	assert.Contains(t, err.Error(), "jira.issue_label")
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, Save(cfg, out))

	again, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Jira.Host, again.Jira.Host)
	assert.Equal(t, cfg.Alerters, again.Alerters)
}

func TestDefaultMatchesEmptyLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	def, err := Default()
	require.NoError(t, err)
	loaded, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, loaded, def)
	assert.Equal(t, DefaultProductName, def.Product.Name)
	assert.Equal(t, []string{"jira"}, def.Alerters)
}
