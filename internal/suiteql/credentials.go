package suiteql

import (
	"fmt"
	"strings"
)

// Environment variable names for the token-based authentication credentials.
const (
	EnvAccountID      = "NETSUITE_ACCOUNT_ID"
	EnvConsumerKey    = "NETSUITE_CONSUMER_KEY"
	EnvConsumerSecret = "NETSUITE_CONSUMER_SECRET"
	EnvToken          = "NETSUITE_TOKEN"
	EnvTokenSecret    = "NETSUITE_TOKEN_SECRET"
)

// Credentials holds the token-based authentication secrets for one account.
type Credentials struct {
	AccountID      string
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
}

// Validate returns an error naming every missing variable.
func (c Credentials) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{EnvAccountID, c.AccountID},
		{EnvConsumerKey, c.ConsumerKey},
		{EnvConsumerSecret, c.ConsumerSecret},
		{EnvToken, c.Token},
		{EnvTokenSecret, c.TokenSecret},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Realm is the account ID in the form the OAuth realm expects
// (upper case, sandbox suffix joined with an underscore).
func (c Credentials) Realm() string {
	return strings.ToUpper(strings.ReplaceAll(c.AccountID, "-", "_"))
}

// HostID is the account ID in the form used in the REST hostname
// (lower case, sandbox suffix joined with a hyphen).
func (c Credentials) HostID() string {
	return strings.ToLower(strings.ReplaceAll(c.AccountID, "_", "-"))
}
