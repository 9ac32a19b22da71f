package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"sync"
	"time"
)

// StatsDConfig describes how to reach a StatsD/DogStatsD-compatible collector.
type StatsDConfig struct {
	Address    string
	Prefix     string
	Logger     *slog.Logger
	GlobalTags map[string]string
}

// StatsDSink emits each analytics event as a tagged counter over UDP.
// It is safe for concurrent use.
type StatsDSink struct {
	prefix     string
	globalTags map[string]string

	logger *slog.Logger
	conn   net.Conn
	mu     sync.Mutex
}

var errSinkClosed = errors.New("statsd sink closed")

// NewStatsDSink dials the configured endpoint.
func NewStatsDSink(cfg StatsDConfig) (*StatsDSink, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return nil, errors.New("statsd address is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}

	return &StatsDSink{
		prefix:     sanitizePrefix(cfg.Prefix),
		globalTags: cloneTags(cfg.GlobalTags),
		logger:     logger,
		conn:       conn,
	}, nil
}

// LogEvent writes "<prefix>.event.<name>:1|c|#k:v,..." for the event.
func (s *StatsDSink) LogEvent(_ context.Context, name string, attrs map[string]string) error {
	metric := s.metricName(name)
	if metric == "" {
		return errors.New("event name is required")
	}
	line := metric + ":1|c" + formatTags(s.globalTags, attrs)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return errSinkClosed
	}
	if _, err := s.conn.Write([]byte(line)); err != nil {
		return fmt.Errorf("statsd write: %w", err)
	}
	return nil
}

// Close releases the UDP connection.
func (s *StatsDSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *StatsDSink) metricName(name string) string {
	normalized := normalizeName(name)
	if normalized == "" {
		return ""
	}
	if s.prefix == "" {
		return "event." + normalized
	}
	return s.prefix + ".event." + normalized
}

func sanitizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), ".")
}

// normalizeName keeps event names safe for the line protocol.
func normalizeName(name string) string {
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	n = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', ':', '|', '@', '#', ',':
			return '_'
		}
		return r
	}, n)
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	return strings.Trim(n, ".")
}

func tagValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '|', ',', '#', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(v))
}

func formatTags(global, local map[string]string) string {
	if len(global)+len(local) == 0 {
		return ""
	}

	merged := make(map[string]string, len(global)+len(local))
	for k, v := range global {
		if key := normalizeName(k); key != "" {
			merged[key] = tagValue(v)
		}
	}
	for k, v := range local {
		if key := normalizeName(k); key != "" {
			merged[key] = tagValue(v)
		}
	}
	if len(merged) == 0 {
		return ""
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = k + ":" + merged[k]
	}
	return "|#" + strings.Join(values, ",")
}

func cloneTags(tags map[string]string) map[string]string {
	cp := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			cp[key] = strings.TrimSpace(v)
		}
	}
	return cp
}
