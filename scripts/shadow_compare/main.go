// Command shadow_compare replays compliance list reads against the Go API and a
// legacy backend and exits non-zero when a critical endpoint drifts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type endpoint struct {
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type config struct {
	Endpoints []endpoint `json:"endpoints"`
	// Ignore lists record keys dropped before comparing.
	Ignore []string `json:"ignore"`
}

var defaultConfig = config{
	Endpoints: []endpoint{
		{Path: "/requirements", Critical: true},
		{Path: "/documents", Critical: true},
		{Path: "/documents?ReferenceId=1", Critical: true},
	},
	Ignore: []string{"CreatedAt", "UpdatedAt", "Path"},
}

// reply is one side of a replayed read.
type reply struct {
	status int
	body   interface{}
}

func main() {
	goBase := flag.String("go-base", "http://localhost:8080", "Go API base URL")
	legacyBase := flag.String("legacy-base", "http://localhost:5000", "legacy API base URL")
	configPath := flag.String("config", "scripts/shadow_compare/endpoints.json", "endpoint list (built-in list when missing)")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("load endpoints", zap.Error(err))
	}
	ignore := make(map[string]bool, len(cfg.Ignore))
	for _, key := range cfg.Ignore {
		ignore[key] = true
	}

	client := &http.Client{Timeout: *timeout}
	ctx := context.Background()
	breaking := 0
	for _, ep := range cfg.Endpoints {
		drift := compare(ctx, client, *goBase, *legacyBase, ep.Path, ignore)
		if drift == "" {
			logger.Info("match", zap.String("path", ep.Path))
			continue
		}
		logger.Warn("drift", zap.String("path", ep.Path), zap.Bool("critical", ep.Critical), zap.String("detail", drift))
		if ep.Critical {
			breaking++
		}
	}
	if breaking > 0 {
		logger.Error("critical endpoints drifted", zap.Int("count", breaking))
		os.Exit(1)
	}
}

// loadConfig reads path, falling back to the built-in endpoints when it does not exist.
func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig, nil
	}
	if err != nil {
		return config{}, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return config{}, err
	}
	if len(cfg.Endpoints) == 0 {
		return config{}, fmt.Errorf("no endpoints defined in %s", path)
	}
	if cfg.Ignore == nil {
		cfg.Ignore = defaultConfig.Ignore
	}
	return cfg, nil
}

// compare returns an empty string when both backends agree on path.
func compare(ctx context.Context, client *http.Client, goBase, legacyBase, path string, ignore map[string]bool) string {
	goReply, err := fetch(ctx, client, strings.TrimRight(goBase, "/")+path, ignore)
	if err != nil {
		return "go: " + err.Error()
	}
	legacyReply, err := fetch(ctx, client, strings.TrimRight(legacyBase, "/")+path, ignore)
	if err != nil {
		return "legacy: " + err.Error()
	}
	return diff(goReply, legacyReply)
}

func diff(goReply, legacyReply reply) string {
	if goReply.status != legacyReply.status {
		return fmt.Sprintf("status go=%d legacy=%d", goReply.status, legacyReply.status)
	}
	if !reflect.DeepEqual(goReply.body, legacyReply.body) {
		return "body differs"
	}
	return ""
}

func fetch(ctx context.Context, client *http.Client, url string, ignore map[string]bool) (reply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return reply{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, fmt.Errorf("read body: %w", err)
	}
	body, err := decodeBody(raw, ignore)
	if err != nil {
		return reply{}, err
	}
	return reply{status: resp.StatusCode, body: body}, nil
}

func decodeBody(raw []byte, ignore map[string]bool) (interface{}, error) {
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return canonical(body, ignore), nil
}

// canonical drops ignored keys, folds numbers and numeric strings (version
// labels) to int64 where integral, and orders record lists by ID.
func canonical(v interface{}, ignore map[string]bool) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			if !ignore[k] {
				out[k] = canonical(item, ignore)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = canonical(item, ignore)
		}
		sort.SliceStable(out, func(i, j int) bool { return recordID(out[i]) < recordID(out[j]) })
		return out
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
	case string:
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return v
}

func recordID(v interface{}) int64 {
	record, ok := v.(map[string]interface{})
	if !ok {
		return 0
	}
	id, _ := record["ID"].(int64)
	return id
}
