package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir   = ".flowalert"
	DefaultConfigFile  = "config.json"
	DefaultProductName = "azkaban"
)

// MissingSettingError reports a required setting that is absent or empty.
type MissingSettingError struct {
	Key string
}

func (e *MissingSettingError) Error() string {
	return "missing required setting " + e.Key
}

// Load reads the config file and returns a populated Config. A missing file
// is not an error; env variables (JIRA_HOST, PRODUCT_URL, ...) still apply.
// The configPath flag may override the default location.
func Load(configPath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine home directory")
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	cfg.resolve()
	return &cfg, nil
}

// Default returns the configuration flowalert uses when no file or env
// variable sets anything.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parsing defaults")
	}
	cfg.resolve()
	return &cfg, nil
}

// Save writes the config to disk as JSON.
func Save(cfg *Config, configPath string) error {
	configPath, err := ConfigPath(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o700); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "serialising config")
	}
	return os.WriteFile(configPath, data, 0o600)
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Validate fails fast on the first required Jira setting that is empty.
// Product name is optional and defaults to "azkaban".
func (c JiraConfig) Validate() error {
	required := []struct {
		key, val string
	}{
		{"product.url", c.ProductURL},
		{"jira.scheme", c.Scheme},
		{"jira.host", c.Host},
		{"jira.path", c.Path},
		{"jira.user", c.User},
		{"jira.password", c.Password},
		{"jira.project_key", c.ProjectKey},
		{"jira.issuetype_id", c.IssueTypeID},
		{"jira.issue_label", c.IssueLabel},
		{"jira.summary_prefix", c.SummaryPrefix},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			return &MissingSettingError{Key: r.key}
		}
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("product.name", DefaultProductName)
	v.SetDefault("product.url", "")

	for _, k := range []string{
		"scheme", "host", "path", "user", "password",
		"project_key", "issuetype_id", "issue_label", "summary_prefix",
	} {
		v.SetDefault("jira."+k, "")
	}

	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.to", "")
	v.SetDefault("email.use_tls", false)
	v.SetDefault("email.on_success", false)

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.secret", "")

	v.SetDefault("alerters", []string{"jira"})
}

// resolve copies the product section into the sections that render it.
func (c *Config) resolve() {
	if strings.TrimSpace(c.Product.Name) == "" {
		c.Product.Name = DefaultProductName
	}
	c.Jira.ProductName = c.Product.Name
	c.Jira.ProductURL = c.Product.URL
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file")
}
