package config

// Config is the root configuration structure for flowalert.
// Serialised to ~/.flowalert/config.json.
type Config struct {
	Product ProductConfig `mapstructure:"product" json:"product" yaml:"product"`
	Jira    JiraConfig    `mapstructure:"jira"    json:"jira"    yaml:"jira"`
	Email   EmailConfig   `mapstructure:"email"   json:"email"   yaml:"email"`
	Webhook WebhookConfig `mapstructure:"webhook" json:"webhook" yaml:"webhook"`
	// Alerters names the alerters the dispatcher builds, e.g. ["jira", "email"].
	Alerters []string `mapstructure:"alerters" json:"alerters" yaml:"alerters"`
}

// ProductConfig identifies the workflow UI that owns the flows.
type ProductConfig struct {
	// Name appears in ticket summaries (default: "azkaban").
	Name string `mapstructure:"name" json:"name" yaml:"name"`
	// URL is the base URL of the workflow web UI, without trailing slash.
	URL string `mapstructure:"url" json:"url" yaml:"url"`
}

// JiraConfig holds the issue-tracker connection and ticket template.
type JiraConfig struct {
	ProductName string `mapstructure:"-" json:"-" yaml:"-"`
	ProductURL  string `mapstructure:"-" json:"-" yaml:"-"`

	Scheme        string `mapstructure:"scheme"         json:"scheme"         yaml:"scheme"`
	Host          string `mapstructure:"host"           json:"host"           yaml:"host"`
	Path          string `mapstructure:"path"           json:"path"           yaml:"path"`
	User          string `mapstructure:"user"           json:"user"           yaml:"user"`
	Password      string `mapstructure:"password"       json:"password"       yaml:"password"`
	ProjectKey    string `mapstructure:"project_key"    json:"project_key"    yaml:"project_key"`
	IssueTypeID   string `mapstructure:"issuetype_id"   json:"issuetype_id"   yaml:"issuetype_id"`
	IssueLabel    string `mapstructure:"issue_label"    json:"issue_label"    yaml:"issue_label"`
	SummaryPrefix string `mapstructure:"summary_prefix" json:"summary_prefix" yaml:"summary_prefix"`
}

// EmailConfig controls the SMTP alerter.
type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host" json:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" json:"smtp_port" yaml:"smtp_port"`
	Username string `mapstructure:"username"  json:"username"  yaml:"username"`
	Password string `mapstructure:"password"  json:"password"  yaml:"password"`
	From     string `mapstructure:"from"      json:"from"      yaml:"from"`
	To       string `mapstructure:"to"        json:"to"        yaml:"to"`
	// UseTLS dials the SMTP server with implicit TLS (port 465 style).
	UseTLS bool `mapstructure:"use_tls" json:"use_tls" yaml:"use_tls"`
	// OnSuccess also mails when a flow succeeds.
	OnSuccess bool `mapstructure:"on_success" json:"on_success" yaml:"on_success"`
}

// WebhookConfig controls the generic JSON webhook alerter.
type WebhookConfig struct {
	URL string `mapstructure:"url" json:"url" yaml:"url"`
	// Secret, when set, signs each body with HMAC-SHA256.
	Secret string `mapstructure:"secret" json:"secret" yaml:"secret"`
}
