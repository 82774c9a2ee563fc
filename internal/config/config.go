package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultCIDR is the block used for managed networks and their single subnet.
const DefaultCIDR = "172.16.0.0/16"

// Config represents the root structure of stratus.yaml.
type Config struct {
	CLI     string   `yaml:"cli"`     // Control-plane CLI binary (default "oci")
	Secrets string   `yaml:"secrets"` // Optional .env or age-encrypted secrets file
	Bastion *Bastion `yaml:"bastion"` // Run the CLI on this host instead of locally
	Stacks  []Stack  `yaml:"stacks"`  // Network stacks to manage
}

// Stack is the static configuration for one network stack. One stack maps to
// exactly one network topology on the control plane.
type Stack struct {
	Name     string `yaml:"name"`
	Provider string `yaml:"provider"` // default "oci"
	CLI      string `yaml:"cli"`      // default: the top-level cli binary
	Region   string `yaml:"region"`
	Profile  string `yaml:"profile"`
	CIDR     string `yaml:"cidr"`
	Managed  *bool  `yaml:"managed"` // false: attach to a pre-existing network by name
	Rules    []Rule `yaml:"rules"`   // Extra ingress rules, applied after the defaults
}

// IsManaged reports whether the stack's network is created and owned by
// stratus (the default) rather than looked up by display name.
func (s Stack) IsManaged() bool {
	return s.Managed == nil || *s.Managed
}

// Rule is a configured ingress rule. Protocol is a name (tcp, udp, icmp) or
// an IANA protocol number.
type Rule struct {
	Protocol string `yaml:"protocol"`
	Port     int    `yaml:"port"`
	EndPort  int    `yaml:"end_port"`  // default: same as Port
	Source   string `yaml:"source"`    // default 0.0.0.0/0
	ICMPType *int   `yaml:"icmp_type"` // only meaningful for icmp
	ICMPCode *int   `yaml:"icmp_code"`
	When     string `yaml:"when"` // Conditional application, expr syntax
}

// Bastion holds connection information for a host that has the cloud CLI and
// credentials installed.
type Bastion struct {
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	User       string `yaml:"user"`
	Port       int    `yaml:"port"`
	SSHKeyPath string `yaml:"ssh_key_path"`
}

// Load reads the YAML file at path and returns a validated Config with
// defaults applied. A .env file next to the config is loaded first so the
// cloud CLI inherits credentials; an explicit secrets file (plain dotenv or
// age-encrypted) is loaded after it.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(absPath)
	envPath := filepath.Join(baseDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file could not be read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config file could not be parsed: %w", err)
	}

	if cfg.Secrets != "" {
		secretsPath := cfg.Secrets
		if !filepath.IsAbs(secretsPath) {
			secretsPath = filepath.Join(baseDir, secretsPath)
		}
		if err := LoadSecrets(secretsPath); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CLI == "" {
		c.CLI = "oci"
	}
	if c.Bastion != nil && c.Bastion.Port == 0 {
		c.Bastion.Port = 22
	}
	for i := range c.Stacks {
		s := &c.Stacks[i]
		if s.Name == "" {
			s.Name = GenerateStackName()
		}
		if s.Provider == "" {
			s.Provider = "oci"
		}
		if s.CLI == "" {
			s.CLI = c.CLI
		}
		if s.CIDR == "" {
			s.CIDR = DefaultCIDR
		}
	}
}

// Validate checks the parts of the config that would otherwise fail deep
// inside a provisioning run.
func (c *Config) Validate() error {
	if len(c.Stacks) == 0 {
		return fmt.Errorf("config defines no stacks")
	}
	seen := map[string]bool{}
	for _, s := range c.Stacks {
		if seen[s.Name] {
			return fmt.Errorf("duplicate stack name %q", s.Name)
		}
		seen[s.Name] = true

		if _, _, err := net.ParseCIDR(s.CIDR); err != nil {
			return fmt.Errorf("stack %s: invalid cidr %q", s.Name, s.CIDR)
		}
		for _, r := range s.Rules {
			if r.Port != 0 && (r.Port < 1 || r.Port > 65535) {
				return fmt.Errorf("stack %s: invalid port %d", s.Name, r.Port)
			}
			if r.EndPort != 0 && r.EndPort < r.Port {
				return fmt.Errorf("stack %s: end_port %d below port %d", s.Name, r.EndPort, r.Port)
			}
			if r.Source != "" {
				if _, _, err := net.ParseCIDR(r.Source); err != nil {
					return fmt.Errorf("stack %s: invalid rule source %q", s.Name, r.Source)
				}
			}
		}
	}
	return nil
}

// FindStack returns the stack with the given name, or the only stack when
// name is empty and the config defines exactly one.
func (c *Config) FindStack(name string) (Stack, error) {
	if name == "" {
		if len(c.Stacks) == 1 {
			return c.Stacks[0], nil
		}
		return Stack{}, fmt.Errorf("config defines %d stacks, pick one with --stack", len(c.Stacks))
	}
	for _, s := range c.Stacks {
		if s.Name == name {
			return s, nil
		}
	}
	return Stack{}, fmt.Errorf("stack %q not found in config", name)
}

// GenerateStackName produces a unique default display name.
func GenerateStackName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "stratus-" + id[:8]
}
