package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-kb/internal/table"
)

// setting is a config key that "config set" accepts.
type setting struct {
	key   string
	usage string
	parse func(string) (any, error)
}

var settings = []setting{
	{"table.delimiter", "auto, tab, comma, semicolon or pipe", func(s string) (any, error) {
		_, err := table.ParseDelimiter(s)
		return s, err
	}},
	{"table.duplicates", "last or error", func(s string) (any, error) {
		_, err := table.ParseDuplicatePolicy(s)
		return s, err
	}},
	{"output.compress-command", "BGZF compressor for .vcf.gz output", parseCommand},
	{"output.index-command", "tabix-compatible indexer", parseCommand},
	{"output.native-bgzf", "compress in-process", parseBool},
	{"output.skip-index", "do not index .vcf.gz output", parseBool},
	{"output.threads", "compression threads, 0 for tool default", parseThreads},
	{"log", "log file, empty for stderr", func(s string) (any, error) { return s, nil }},
	{"log-level", "debug, info, warn or error", func(s string) (any, error) {
		_, err := zapcore.ParseLevel(s)
		return s, err
	}},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}
	return setting{}, false
}

func parseCommand(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("command must not be empty")
	}
	return s, nil
}

func parseBool(s string) (any, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return nil, fmt.Errorf("%q is not a boolean", s)
}

func parseThreads(s string) (any, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%q is not a thread count", s)
	}
	return n, nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change vibe-kb defaults",
		Long: `Show the effective annotate and logging settings, or store new defaults
in ~/.vibe-kb.yaml. Flags and VIBE_KB_* environment variables still win.`,
		Example: `  vibe-kb config
  vibe-kb config set table.duplicates error
  vibe-kb config set output.compress-command pbgzip
  vibe-kb config get table.delimiter`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a default in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	})
	return cmd
}

// runConfigShow prints every setting as YAML, annotated with its usage.
func runConfigShow(cmd *cobra.Command) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range settings {
		parts := strings.Split(s.key, ".")
		parent := doc
		for _, p := range parts[:len(parts)-1] {
			parent = childMapping(parent, p)
		}
		val := &yaml.Node{}
		if err := val.Encode(viper.Get(s.key)); err != nil {
			return fmt.Errorf("encode %s: %w", s.key, err)
		}
		val.LineComment = s.usage
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: parts[len(parts)-1]}, val)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if f := viper.ConfigFileUsed(); f != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", f)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// childMapping returns the mapping stored under key in m, adding it if absent.
func childMapping(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key && m.Content[i+1].Kind == yaml.MappingNode {
			return m.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
	return child
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	s, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("unknown setting %q (run 'vibe-kb config' for the list)", key)
	}
	v, err := s.parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	viper.Set(key, v)

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".vibe-kb.yaml")
	}
	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, v, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if _, ok := lookupSetting(key); !ok && !viper.IsSet(key) {
		return fmt.Errorf("unknown setting %q", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
	return nil
}
