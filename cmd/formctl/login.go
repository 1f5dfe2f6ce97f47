package main

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/formdeck/formd/pkg/client"
	"github.com/formdeck/formd/pkg/config"
)

func newLoginCmd() *cobra.Command {
	var nonInteractive bool
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and save the endpoint into ~/.formctl/config.json",
		Long: "Login stores an API endpoint and bearer token as a profile.\n" +
			"With --username the token is obtained from /v1/auth/login; otherwise\n" +
			"an existing token is taken from --token or prompted for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			prof, _ := cmd.Root().Flags().GetString("profile")
			if prof == "" {
				prof = config.DefaultProfile
			}
			current := cfg.Profile(prof)

			url, _ := cmd.Root().Flags().GetString("api-url")
			if url == "" && !nonInteractive {
				url = prompt("API URL", current.APIURL)
			}
			if url == "" {
				return fmt.Errorf("api-url is required (flag or interactive mode)")
			}

			tok, err := obtainToken(cmd, url, username, nonInteractive)
			if err != nil {
				return err
			}

			ok, err := checkToken(url, tok)
			if err != nil {
				return fmt.Errorf("login check failed: %w", err)
			}
			if !ok {
				return fmt.Errorf("login check failed: token rejected by %s", url)
			}

			cfg.SetProfile(config.Profile{Name: prof, APIURL: url, Token: tok, Insecure: current.Insecure})
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Active profile: %s\n", prof)
			return nil
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Fail instead of prompting")
	cmd.Flags().StringVar(&username, "username", "", "Obtain a token with these credentials instead of pasting one")
	return cmd
}

// obtainToken resolves a bearer token: via credential login when a username
// is given, otherwise from the --token flag or an interactive prompt.
func obtainToken(cmd *cobra.Command, url, username string, nonInteractive bool) (string, error) {
	if username != "" {
		password := promptSecret("Password")
		if password == "" {
			return "", fmt.Errorf("password is required with --username")
		}
		return client.NewHTTP(url).Login(cmd.Context(), username, password)
	}
	tok, _ := cmd.Root().Flags().GetString("token")
	if tok == "" && !nonInteractive {
		tok = promptSecret("Token (Bearer)")
	}
	if tok == "" {
		return "", fmt.Errorf("token is required (flag, --username login or interactive mode)")
	}
	return tok, nil
}

func prompt(label, def string) string {
	fmt.Printf("%s [%s]: ", label, def)
	var s string
	if _, err := fmt.Scanln(&s); err != nil {
		return def
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func promptSecret(label string) string {
	fmt.Printf("%s: ", label)
	b, _ := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	return strings.TrimSpace(string(b))
}

// checkToken verifies the token by listing forms, the cheapest authenticated call.
func checkToken(baseURL, token string) (bool, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/v1/forms"
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	cli := &http.Client{Transport: tr, Timeout: 5 * time.Second}
	resp, err := cli.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
