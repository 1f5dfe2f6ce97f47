package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Resolved is the effective connection settings for one CLI invocation.
type Resolved struct {
	APIURL   string
	Token    string
	Profile  string
	Insecure bool
}

// Resolve determines API URL and token with precedence flag, then FORMCTL_*
// environment, then the selected profile.
func Resolve(cmd *cobra.Command) (Resolved, error) {
	flags := cmd.Root().PersistentFlags()
	flagURL, _ := flags.GetString("api-url")
	flagToken, _ := flags.GetString("token")

	cfg, err := Load()
	if err != nil {
		return Resolved{}, err
	}
	prof := cfg.Active
	if p, _ := flags.GetString("profile"); p != "" {
		prof = p
	}
	cp := cfg.Profile(prof)

	r := Resolved{
		APIURL:   pick(flagURL, os.Getenv("FORMCTL_API_URL"), cp.APIURL),
		Token:    pick(flagToken, os.Getenv("FORMCTL_TOKEN"), cp.Token),
		Profile:  prof,
		Insecure: cp.Insecure,
	}
	if r.APIURL == "" {
		return Resolved{}, fmt.Errorf("API URL not set (flag/env/config)")
	}
	if r.Token == "" {
		return Resolved{}, fmt.Errorf("token not set (flag/env/config)")
	}
	return r, nil
}

func pick(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}
