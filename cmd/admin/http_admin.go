package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Da-Krause/settlers-remake/internal/sim/validation"
)

// catalogState is the body of GET /admin/v1/catalog.
type catalogState struct {
	Digest       string                 `json:"digest"`
	TuningDigest string                 `json:"tuning_digest"`
	Loads        int64                  `json:"loads"`
	Checked      int                    `json:"checked"`
	Violations   []validation.Violation `json:"violations"`
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	raw := fs.Bool("json", false, "print the response body unchanged")
	_ = fs.Parse(args)

	st, body, err := fetchState(&http.Client{Timeout: 5 * time.Second}, *baseURL)
	if *raw && body != nil {
		fmt.Println(string(body))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "state:", err)
		os.Exit(1)
	}
	if !*raw {
		printState(os.Stdout, st)
	}
}

func fetchState(cl *http.Client, baseURL string) (catalogState, []byte, error) {
	var st catalogState
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/admin/v1/catalog"
	resp, err := cl.Get(u)
	if err != nil {
		return st, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return st, nil, err
	}
	if resp.StatusCode/100 != 2 {
		return st, b, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.Unmarshal(b, &st); err != nil {
		return st, b, fmt.Errorf("decode: %w", err)
	}
	return st, b, nil
}

// printState writes one line per field and the violation count per rule.
func printState(w io.Writer, st catalogState) {
	fmt.Fprintf(w, "catalog   %s\n", st.Digest)
	fmt.Fprintf(w, "tuning    %s\n", st.TuningDigest)
	fmt.Fprintf(w, "resolved  %d\n", st.Loads)
	fmt.Fprintf(w, "checked   %d\n", st.Checked)
	if len(st.Violations) == 0 {
		fmt.Fprintln(w, "violations none")
		return
	}
	byRule := map[string]int{}
	for _, v := range st.Violations {
		byRule[v.Rule]++
	}
	rules := make([]string, 0, len(byRule))
	for r := range byRule {
		rules = append(rules, r)
	}
	sort.Strings(rules)
	fmt.Fprintf(w, "violations %d\n", len(st.Violations))
	for _, r := range rules {
		fmt.Fprintf(w, "  %-12s %d\n", r, byRule[r])
	}
	for _, v := range st.Violations {
		fmt.Fprintf(w, "  %s\n", v)
	}
}
