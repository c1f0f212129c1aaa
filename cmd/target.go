package cmd

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// targetFile models the optional YAML file describing a remote target. It
// supplies connection defaults only; CLI flags and environment variables take
// precedence over anything declared here.
type targetFile struct {
	Name    string `yaml:"name"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port,omitempty"`
	User    string `yaml:"user,omitempty"`
	GDBPort int    `yaml:"gdb_port,omitempty"`
	Program string `yaml:"program,omitempty"`
}

// UnmarshalYAML supports both "host" and the legacy "ip" key for flexibility.
func (t *targetFile) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		Name    string `yaml:"name"`
		Host    string `yaml:"host"`
		IP      string `yaml:"ip"`
		Port    int    `yaml:"port"`
		User    string `yaml:"user"`
		GDBPort int    `yaml:"gdb_port"`
		Program string `yaml:"program"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	t.Name = aux.Name
	t.Host = aux.Host
	if t.Host == "" {
		t.Host = aux.IP
	}
	t.Port = aux.Port
	t.User = aux.User
	t.GDBPort = aux.GDBPort
	t.Program = aux.Program
	return nil
}

// loadTargetFile reads and validates the YAML target description.
func loadTargetFile(path string) (*targetFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tf := &targetFile{}
	if err := yaml.Unmarshal(b, tf); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if strings.TrimSpace(tf.Host) == "" {
		return nil, fmt.Errorf("target file %s: host is required: %w", path, errConfiguration)
	}
	return tf, nil
}

// applyTargetFile merges target-file defaults into the global configuration
// for any field not already set by flags or environment. A missing --target-file
// is not an error; a named but unreadable one is.
func applyTargetFile(path string) error {
	if path == "" {
		return nil
	}
	tf, err := loadTargetFile(path)
	if err != nil {
		return err
	}
	if cfgSSHHost == "" {
		cfgSSHHost = tf.Host
	}
	if tf.Port != 0 && !rootCmd.PersistentFlags().Changed("port") && os.Getenv("REMOTE_SSH_PORT") == "" {
		cfgSSHPort = tf.Port
	}
	if tf.User != "" && !rootCmd.PersistentFlags().Changed("user") {
		cfgSSHUser = tf.User
	}
	if tf.GDBPort != 0 && !rootCmd.PersistentFlags().Changed("gdb-port") && os.Getenv("REMOTE_GDBSERVER_PORT") == "" {
		cfgGDBPort = tf.GDBPort
	}
	if cfgProgramPath == "" {
		cfgProgramPath = tf.Program
	}
	return nil
}
