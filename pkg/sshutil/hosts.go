package sshutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostEntry is a host alias parsed from ~/.ssh/config, used to suggest
// targets during interactive setup.
type HostEntry struct {
	Alias    string
	Hostname string
	User     string
}

// Description returns a short human-readable summary for pickers.
func (h HostEntry) Description() string {
	if h.Hostname == "" {
		return h.Alias
	}
	if h.User != "" {
		return h.User + "@" + h.Hostname
	}
	return h.Hostname
}

// KnownHosts parses ~/.ssh/config and returns the concrete host aliases
// it defines. Wildcard patterns are skipped. A missing or unreadable
// config yields an empty list, not an error.
func KnownHosts() []HostEntry {
	return knownHostsFromFile(filepath.Join(homeDir(), ".ssh", "config"))
}

func knownHostsFromFile(path string) []HostEntry {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	cfg, err := ssh_config.Decode(strings.NewReader(string(content)))
	if err != nil {
		return nil
	}

	var entries []HostEntry
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()
			if alias == "" || strings.ContainsAny(alias, "*?!") {
				continue
			}
			entry := HostEntry{Alias: alias}
			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				entry.Hostname = hostname
			}
			if user, _ := cfg.Get(alias, "User"); user != "" {
				entry.User = user
			}
			entries = append(entries, entry)
		}
	}
	return entries
}
