// Package main provides the vibe-kb command-line tool.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "vibe-kb",
		Short: "Merge cancer knowledge bases into SnpEff-annotated VCFs",
		Long: `vibe-kb annotates VCF records with Cancer Gene Census or OncoKB
entries, keyed by the gene or transcript of the first SnpEff ANN effect.`,
		Version:      fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.vibe-kb.yaml)")
	pf.String("log", "", "log file (default stderr)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.BoolP("verbose", "v", false, "log per-record misses (same as --log-level debug)")
	viper.BindPFlag("log", pf.Lookup("log"))
	viper.BindPFlag("log-level", pf.Lookup("log-level"))
	viper.BindPFlag("verbose", pf.Lookup("verbose"))

	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads the config file and environment.
func initConfig(cfgFile string) error {
	viper.SetDefault("table.duplicates", "last")
	viper.SetDefault("output.compress-command", "bgzip")
	viper.SetDefault("output.index-command", "tabix")

	viper.SetEnvPrefix("VIBE_KB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-kb")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}
