// Command predictctl is a CLI client for the predictgate API.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "predictgate")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "predictgate")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (run `predictctl token` first)")
	}
	return tf.AccessToken, nil
}

// ---- http client ----

type client struct {
	base   string
	bearer string
	hc     *http.Client
}

func (c *client) do(method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func authed(base string) *client {
	tok, err := loadToken()
	if err != nil {
		fail(err)
	}
	return &client{base: base, bearer: tok, hc: &http.Client{Timeout: 30 * time.Second}}
}

func usage() {
	fmt.Fprintf(os.Stderr, `predictctl
Usage:
  predictctl -addr URL <cmd> [args]

Commands:
  version
  issue-key  -name <name> [-desc <text>]          (prints the key once)
  token      -key <api-key>                       (saves session token)
  keys                                            (list credentials)
  revoke     -id <uuid>
  predict    -file <features.json|->              (single prediction)
  batch      -file <houses.json|->                (batch prediction)
  logs       [-limit N] [-page <token>]
  log        -id <uuid>
  stats
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the HTTP API.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	anon := &client{base: *addr, hc: &http.Client{Timeout: 30 * time.Second}}

	switch cmd {

	case "version":
		fmt.Printf("predictctl %s (%s)\n", version, buildDate)

	case "issue-key":
		fs := flag.NewFlagSet("issue-key", flag.ExitOnError)
		name := fs.String("name", "", "key name")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(flag.Args()[1:])
		if *name == "" {
			fmt.Fprintln(os.Stderr, "need -name")
			os.Exit(1)
		}

		var resp struct {
			ID        string    `json:"id"`
			Name      string    `json:"name"`
			Key       string    `json:"key"`
			CreatedAt time.Time `json:"created_at"`
		}
		body := map[string]string{"name": *name, "description": *desc}
		if err := anon.do(http.MethodPost, "/auth/keys", body, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)
		fmt.Fprintln(os.Stderr, "store the key now; it will not be shown again")

	case "token":
		fs := flag.NewFlagSet("token", flag.ExitOnError)
		key := fs.String("key", "", "api key")
		_ = fs.Parse(flag.Args()[1:])
		if *key == "" {
			fmt.Fprintln(os.Stderr, "need -key")
			os.Exit(1)
		}

		var resp struct {
			AccessToken string    `json:"access_token"`
			ExpiresAt   time.Time `json:"expires_at"`
		}
		if err := anon.do(http.MethodPost, "/auth/token", map[string]string{"api_key": *key}, &resp); err != nil {
			fail(err)
		}
		if err := saveToken(resp.AccessToken, resp.ExpiresAt); err != nil {
			fail(err)
		}
		fmt.Println("token saved; expires", resp.ExpiresAt.Format(time.RFC3339))

	case "keys":
		var resp []json.RawMessage
		if err := authed(*addr).do(http.MethodGet, "/auth/keys", nil, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)

	case "revoke":
		fs := flag.NewFlagSet("revoke", flag.ExitOnError)
		id := fs.String("id", "", "key id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		if err := authed(*addr).do(http.MethodDelete, "/auth/keys/"+*id, nil, nil); err != nil {
			fail(err)
		}
		fmt.Println("revoked", *id)

	case "predict":
		fs := flag.NewFlagSet("predict", flag.ExitOnError)
		file := fs.String("file", "-", "features JSON file (- for stdin)")
		_ = fs.Parse(flag.Args()[1:])

		raw, err := readAll(*file)
		if err != nil {
			fail(err)
		}
		var features json.RawMessage = raw
		var resp json.RawMessage
		if err := authed(*addr).do(http.MethodPost, "/predict", features, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)

	case "batch":
		fs := flag.NewFlagSet("batch", flag.ExitOnError)
		file := fs.String("file", "-", "houses JSON file (- for stdin)")
		_ = fs.Parse(flag.Args()[1:])

		raw, err := readAll(*file)
		if err != nil {
			fail(err)
		}
		var houses []json.RawMessage
		if err := json.Unmarshal(raw, &houses); err != nil {
			fail(fmt.Errorf("input must be a JSON array of feature objects: %w", err))
		}
		var resp json.RawMessage
		if err := authed(*addr).do(http.MethodPost, "/predict/batch", map[string]any{"houses": houses}, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)

	case "logs":
		fs := flag.NewFlagSet("logs", flag.ExitOnError)
		limit := fs.Int("limit", 100, "page size")
		page := fs.String("page", "", "page token")
		_ = fs.Parse(flag.Args()[1:])

		path := fmt.Sprintf("/logs?limit=%d", *limit)
		if *page != "" {
			path += "&page_token=" + *page
		}
		var resp json.RawMessage
		if err := authed(*addr).do(http.MethodGet, path, nil, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)

	case "log":
		fs := flag.NewFlagSet("log", flag.ExitOnError)
		id := fs.String("id", "", "log id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		var resp json.RawMessage
		if err := authed(*addr).do(http.MethodGet, "/logs/"+*id, nil, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)

	case "stats":
		var resp json.RawMessage
		if err := authed(*addr).do(http.MethodGet, "/logs/stats", nil, &resp); err != nil {
			fail(err)
		}
		printJSON(resp)

	default:
		usage()
	}
}
