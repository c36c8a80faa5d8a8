package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/fetchkit/packages/fetch"
)

// Profile is a named set of fetch client settings loaded from YAML.
type Profile struct {
	Timeout         int               `yaml:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `yaml:"followRedirects,omitempty"`
	MaxRedirects    int               `yaml:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `yaml:"validateSSL,omitempty"`
	Proxy           string            `yaml:"proxy,omitempty"`
	Headers         map[string]string `yaml:"headers,omitempty"` // sent on every request
}

// BoolPtr returns a pointer to b, for setting the tri-state fields.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow-redirects setting, defaulting to
// true.
func (p *Profile) GetFollowRedirects() bool {
	return getBool(p.FollowRedirects, true)
}

// GetValidateSSL returns the TLS verification setting, defaulting to true.
func (p *Profile) GetValidateSSL() bool {
	return getBool(p.ValidateSSL, true)
}

// TimeoutDuration returns the timeout as a time.Duration, falling back to
// the fetch default when unset.
func (p *Profile) TimeoutDuration() time.Duration {
	if p.Timeout <= 0 {
		return fetch.DefaultTimeout
	}
	return time.Duration(p.Timeout) * time.Millisecond
}

// ClientOptions converts the profile into options for fetch.NewClient.
func (p *Profile) ClientOptions() []fetch.ClientOption {
	opts := []fetch.ClientOption{
		fetch.WithTimeout(p.TimeoutDuration()),
		fetch.WithFollowRedirects(p.GetFollowRedirects()),
		fetch.WithValidateSSL(p.GetValidateSSL()),
	}
	if p.MaxRedirects > 0 {
		opts = append(opts, fetch.WithMaxRedirects(p.MaxRedirects))
	}
	if p.Proxy != "" {
		opts = append(opts, fetch.WithProxy(p.Proxy))
	}
	if len(p.Headers) > 0 {
		opts = append(opts, fetch.WithDefaultHeaders(p.Headers))
	}
	return opts
}

// Merge merges another profile into this one, with other taking precedence.
func (p *Profile) Merge(other *Profile) *Profile {
	if other == nil {
		return p
	}

	result := *p

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(p.Headers)+len(other.Headers))
		for k, v := range p.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	return &result
}

// Filenames contains the profile file names searched by Load.
var Filenames = []string{
	".fetchkit.yml",
	".fetchkit.yaml",
	"fetchkit.yml",
	"fetchkit.yaml",
}

// Load reads a profile from the given path, or searches the current
// directory for one of the known file names when path is empty.
func Load(path string) (*Profile, error) {
	if path != "" {
		return LoadFile(path)
	}
	return FindAndLoad(".")
}

// FindAndLoad searches dir for a profile file and loads the first match.
// The default profile is returned when none exists.
func FindAndLoad(dir string) (*Profile, error) {
	for _, filename := range Filenames {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return DefaultProfile(), nil
}

// LoadFile reads and parses one profile file.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	profile, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profile, nil
}

// Parse decodes a profile from raw YAML over the defaults. Environment
// references of the form $VAR or ${VAR} are expanded before parsing, so
// secrets can stay out of the file.
func Parse(data []byte) (*Profile, error) {
	expanded := os.ExpandEnv(string(data))

	profile := DefaultProfile()
	if err := yaml.Unmarshal([]byte(expanded), profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return profile, nil
}
