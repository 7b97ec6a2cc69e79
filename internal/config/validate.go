package config

import (
	"fmt"
	"regexp"
	"strings"
)

type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate clamps provider-bounded values and reports
// misconfiguration. Provider caps are hard limits, not retryable.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Email.AlertSenders = trimList(out.Email.AlertSenders)
	out.Aggregator.Queries = trimList(out.Aggregator.Queries)

	// Web-search provider constraints: count 1..20, page index 0..9.
	if out.Search.Count < 1 {
		out.Search.Count = 1
	}
	if out.Search.Count > 20 {
		res.addWarn("search.count %d exceeds the provider cap; clamped to 20", out.Search.Count)
		out.Search.Count = 20
	}
	if out.Search.Pages < 1 {
		out.Search.Pages = 1
	}
	if out.Search.Pages > 10 {
		res.addWarn("search.pages %d exceeds the provider cap; clamped to 10", out.Search.Pages)
		out.Search.Pages = 10
	}
	switch out.Search.Freshness {
	case "", "pd", "pw", "pm", "py":
	default:
		res.addErr("search.freshness must be one of pd/pw/pm/py (or empty), got %q", out.Search.Freshness)
	}

	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addWarn("email.username is empty; the email_alert source will fail until it is set")
		}
		if strings.TrimSpace(out.Email.Mailbox) == "" {
			res.addErr("email.mailbox is required when email.enabled=true")
		}
		if len(out.Email.AlertSenders) == 0 {
			res.addWarn("email.alert_senders is empty; the inbox scan may find nothing")
		}
		if out.Email.WindowDays <= 0 {
			out.Email.WindowDays = 14
		}
		if out.Email.MaxThreads <= 0 {
			out.Email.MaxThreads = 50
		}
	}

	if out.ATSFeed.Enabled {
		if out.ATSFeed.MaxCompanies <= 0 {
			out.ATSFeed.MaxCompanies = 18
		}
		if out.ATSFeed.Offset < 0 {
			out.ATSFeed.Offset = 0
		}
		if _, err := regexp.Compile(out.ATSFeed.Keywords); err != nil {
			res.addErr("ats_feed.keywords is not a valid regexp: %v", err)
		}
	}

	if out.Aggregator.Enabled && out.Aggregator.MaxPages <= 0 {
		out.Aggregator.MaxPages = 5
	}

	if out.Enrich.ProtectJDLen <= 0 {
		res.addErr("enrich.protect_jd_len must be > 0")
	}
	if out.Enrich.MinJDLen <= 0 {
		res.addErr("enrich.min_jd_len must be > 0")
	}
	if out.Enrich.MinJDLen < out.Enrich.ProtectJDLen {
		res.addWarn("enrich.min_jd_len (%d) is below protect_jd_len (%d); successful fetches may stay eligible for refetch",
			out.Enrich.MinJDLen, out.Enrich.ProtectJDLen)
	}
	if out.Enrich.StructuredMinLen <= 0 {
		out.Enrich.StructuredMinLen = 100
	}
	if out.Enrich.MaxAttempts <= 0 {
		res.addErr("enrich.max_attempts must be > 0")
	}

	if out.Scoring.CompFloorK <= 0 {
		out.Scoring.CompFloorK = 180
	}

	if out.Pacing.ReqPerSec <= 0 {
		out.Pacing.ReqPerSec = 2.0
	}
	if out.Pacing.Burst <= 0 {
		out.Pacing.Burst = 2
	}

	return out, res
}
