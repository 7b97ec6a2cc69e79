package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Email struct {
		Enabled      bool     `yaml:"enabled"`
		IMAPHost     string   `yaml:"imap_host"`
		IMAPPort     int      `yaml:"imap_port"`
		Username     string   `yaml:"username"`
		Mailbox      string   `yaml:"mailbox"`
		AlertSenders []string `yaml:"alert_senders"`
		WindowDays   int      `yaml:"window_days"`
		MaxThreads   int      `yaml:"max_threads"`
		// Optional host filter for plain-link extraction, e.g. "jobs.lever.co".
		PlatformFilter string `yaml:"platform_filter"`
	} `yaml:"email"`

	Search struct {
		Enabled bool `yaml:"enabled"`
		// Per-page result count; the provider caps this at 20.
		Count int `yaml:"count"`
		// Pages per query; the provider caps the page index at 0..9.
		Pages     int    `yaml:"pages"`
		Freshness string `yaml:"freshness"` // "", pd, pw, pm, py
		// Query variants per platform; the first entry is the daily query,
		// the rest are catch-up variants.
		Queries map[string][]string `yaml:"queries"`
	} `yaml:"search"`

	ATSFeed struct {
		Enabled bool `yaml:"enabled"`
		// Boards processed per invocation, with Offset for batch resume.
		MaxCompanies int    `yaml:"max_companies"`
		Offset       int    `yaml:"offset"`
		Keywords     string `yaml:"keywords"` // title/description regex
	} `yaml:"ats_feed"`

	Aggregator struct {
		Enabled  bool     `yaml:"enabled"`
		Queries  []string `yaml:"queries"`
		MaxPages int      `yaml:"max_pages"`
	} `yaml:"aggregator"`

	Enrich struct {
		// jd_text longer than this is treated as real content and never
		// re-fetched or cleared.
		ProtectJDLen int `yaml:"protect_jd_len"`
		// Fetched text shorter than this classifies as TEXT_TOO_SHORT.
		MinJDLen int `yaml:"min_jd_len"`
		// Minimum content length accepted from a structured posting API.
		StructuredMinLen int `yaml:"structured_min_len"`
		// Fetch attempts per invocation (wall-clock budget).
		MaxAttempts int `yaml:"max_attempts"`
	} `yaml:"enrich"`

	Scoring struct {
		// Roles whose maximum "###k" figure falls below this are penalized.
		CompFloorK int `yaml:"comp_floor_k"`
	} `yaml:"scoring"`

	Pacing struct {
		ReqPerSec float64 `yaml:"req_per_sec"`
		Burst     int     `yaml:"burst"`
	} `yaml:"pacing"`
}

// Default returns the shipped configuration. The threshold values are the
// ones that held up in production use; all of them are overridable.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."

	cfg.Email.Enabled = true
	cfg.Email.IMAPHost = "imap.gmail.com"
	cfg.Email.IMAPPort = 993
	cfg.Email.Mailbox = "INBOX"
	cfg.Email.AlertSenders = []string{"jobs-noreply@linkedin.com"}
	cfg.Email.WindowDays = 14
	cfg.Email.MaxThreads = 50

	cfg.Search.Enabled = true
	cfg.Search.Count = 20
	cfg.Search.Pages = 10
	cfg.Search.Queries = map[string][]string{
		"lever": {
			`site:jobs.lever.co ("Strategy Operations" OR "BizOps" OR "Business Operations" OR "Strategic Finance" OR "Strategy" OR "Operations") -democorp`,
			`site:jobs.lever.co ("Strategic Finance" OR "Chief of Staff" OR "GM" OR "General Manager" OR "Head of Business Operations") -democorp`,
		},
		"ashby": {
			`site:jobs.ashbyhq.com ("Strategy Operations" OR "BizOps" OR "Business Operations" OR "Strategic Finance" OR "Strategy" OR "Operations") -democorp`,
		},
		"greenhouse": {
			`site:boards.greenhouse.io (job OR jobs) ("Strategy Operations" OR "BizOps" OR "Business Operations" OR "Strategic Finance" OR "Strategy" OR "Operations") -democorp`,
		},
	}

	cfg.ATSFeed.Enabled = true
	cfg.ATSFeed.MaxCompanies = 18
	cfg.ATSFeed.Keywords = `strategy|operations|bizops|business operations|strategic finance|chief of staff|\bgm\b|general manager|head of operations|head of business`

	cfg.Aggregator.Enabled = true
	cfg.Aggregator.MaxPages = 5
	cfg.Aggregator.Queries = []string{
		`"strategy & operations" OR "strategy operations" OR "strategic operations" OR "strategy & ops"`,
		`"business operations" OR "bizops" OR "biz ops"`,
		`"strategic finance" OR "chief of staff"`,
		`"head of operations" OR "director of operations" OR "VP operations" OR "head of business operations"`,
	}

	cfg.Enrich.ProtectJDLen = 500
	cfg.Enrich.MinJDLen = 800
	cfg.Enrich.StructuredMinLen = 100
	cfg.Enrich.MaxAttempts = 120

	cfg.Scoring.CompFloorK = 180

	cfg.Pacing.ReqPerSec = 2.0
	cfg.Pacing.Burst = 2

	return cfg
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
