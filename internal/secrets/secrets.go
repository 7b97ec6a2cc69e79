package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"rolescout/internal/config"
)

const (
	// Service groups this app's secrets in the OS keychain.
	KeyringService = "rolescout"

	AccountSearchToken   = "search_token"
	AccountAggregatorKey = "aggregator_key"
)

// Env fallbacks, for headless hosts without a keychain.
const (
	EnvSearchToken   = "BRAVE_SUBSCRIPTION_TOKEN"
	EnvAggregatorKey = "SERPAPI_KEY"
	EnvIMAPPassword  = "ROLESCOUT_IMAP_PASSWORD"
)

func get(account, envVar string) (string, error) {
	pw, err := keyring.Get(KeyringService, account)
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret %q not found (set it in the keychain or via %s)", account, envVar)
}

// SearchToken returns the web-search provider subscription token.
// Missing token is fatal for the search stage: no partial progress is
// meaningful without it.
func SearchToken() (string, error) {
	return get(AccountSearchToken, EnvSearchToken)
}

// AggregatorKey returns the jobs-metasearch API key.
func AggregatorKey() (string, error) {
	return get(AccountAggregatorKey, EnvAggregatorKey)
}

// IMAPPassword returns the inbox password for the configured account.
func IMAPPassword(cfg config.Config) (string, error) {
	return get(IMAPAccount(cfg), EnvIMAPPassword)
}

// IMAPAccount is the keychain account name for the configured inbox.
func IMAPAccount(cfg config.Config) string {
	return fmt.Sprintf("imap:%s@%s", cfg.Email.Username, cfg.Email.IMAPHost)
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
