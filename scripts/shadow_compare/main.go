// Command shadow_compare replays read requests against the Go service and a
// legacy deployment of the character API and reports where the two disagree.
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
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

// target is one request replayed on both sides. GoField and LegacyField name
// the top-level key that holds the comparable payload; empty compares the
// whole body. Ignore lists keys dropped at any depth before comparing.
type target struct {
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	LegacyPath  string   `json:"legacy_path"`
	GoField     string   `json:"go_field"`
	LegacyField string   `json:"legacy_field"`
	Ignore      []string `json:"ignore"`
	StatusOnly  bool     `json:"status_only"`
	Critical    bool     `json:"critical"`
}

type comparison struct {
	Target       target
	GoStatus     int
	LegacyStatus int
	StatusMatch  bool
	BodyMatch    bool
	Error        error
}

func (c comparison) verdict() string {
	switch {
	case c.Error != nil:
		return "ERROR"
	case c.StatusMatch && c.BodyMatch:
		return "OK"
	default:
		return "DIFF"
	}
}

func main() {
	goBase := flag.String("go-base", "http://localhost:8080", "base URL of the Go service")
	legacyBase := flag.String("legacy-base", "http://localhost:5000", "base URL of the legacy service")
	targetsPath := flag.String("targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "JSON file listing the requests to replay")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	targets, err := loadTargets(*targetsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shadow_compare: %v\n", err)
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}
	results := make([]comparison, 0, len(targets))
	for _, tgt := range targets {
		results = append(results, compareTarget(client, *goBase, *legacyBase, tgt))
	}

	if failed := report(os.Stdout, results); failed > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}
	var file struct {
		Targets []target `json:"targets"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("%s lists no targets", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, goBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}

	legacyPath := tgt.Path
	if tgt.LegacyPath != "" {
		legacyPath = tgt.LegacyPath
	}

	goStatus, goBody, err := fetch(client, tgt.Method, goBase, tgt.Path)
	if err != nil {
		comp.Error = fmt.Errorf("go: %w", err)
		return comp
	}
	legacyStatus, legacyBody, err := fetch(client, tgt.Method, legacyBase, legacyPath)
	if err != nil {
		comp.Error = fmt.Errorf("legacy: %w", err)
		return comp
	}

	comp.GoStatus, comp.LegacyStatus = goStatus, legacyStatus
	comp.StatusMatch = goStatus == legacyStatus
	comp.BodyMatch = tgt.StatusOnly || samePayload(
		payload(goBody, tgt.GoField, tgt.Ignore),
		payload(legacyBody, tgt.LegacyField, tgt.Ignore),
	)
	return comp
}

func fetch(client *http.Client, method, base, path string) (int, []byte, error) {
	if client == nil {
		return 0, nil, errors.New("no http client")
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// payload decodes body and narrows it to field with ignored keys removed. A
// body that is not JSON comes back as its trimmed bytes.
func payload(body []byte, field string, ignore []string) any {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return string(bytes.TrimSpace(body))
	}
	if field != "" {
		if obj, ok := doc.(map[string]any); ok {
			doc = obj[field]
		}
	}
	strip(doc, ignore)
	return doc
}

// samePayload compares decoded documents. Numbers decode to float64 on both
// sides, so 25 and 25.0 are equal.
func samePayload(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func strip(v any, ignore []string) {
	switch node := v.(type) {
	case map[string]any:
		for _, key := range ignore {
			delete(node, key)
		}
		for _, child := range node {
			strip(child, ignore)
		}
	case []any:
		for _, child := range node {
			strip(child, ignore)
		}
	}
}

// report writes one row per comparison and returns how many critical targets
// failed.
func report(out io.Writer, results []comparison) int {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RESULT\tMETHOD\tPATH\tGO\tLEGACY\tCRITICAL\tNOTE")

	failed, tolerated := 0, 0
	for _, c := range results {
		method := c.Target.Method
		if method == "" {
			method = http.MethodGet
		}
		note := ""
		switch {
		case c.Error != nil:
			note = c.Error.Error()
		case !c.StatusMatch:
			note = "status differs"
		case !c.BodyMatch:
			note = "payload differs"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\t%s\n", c.verdict(), method, c.Target.Path, c.GoStatus, c.LegacyStatus, c.Target.Critical, note)

		if c.verdict() != "OK" {
			if c.Target.Critical {
				failed++
			} else {
				tolerated++
			}
		}
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%d critical differences, %d tolerated\n", failed, tolerated)
	return failed
}
