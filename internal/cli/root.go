package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/greenlens/internal/model"
)

// Version is set at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "greenlens",
	Short: "Greenlens - Greenwashing and sustainability-deception diagnostics",
	Long: `Greenlens analyses product labels and marketing text for misleading
sustainability claims.

It extracts claims, checks them against a knowledge base of known facts and
certification schemes, inspects label imagery for visual greenwashing, and
fuses everything into a transparent 0-100 deception score.

Scores are heuristic indicators, not legal findings.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "greenlens %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.greenlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// envBindings maps config keys to extra environment variables that are
// commonly set outside greenlens
var envBindings = map[string][]string{
	"llm.provider":      {"GREENLENS_LLM_PROVIDER"},
	"llm.model":         {"GREENLENS_LLM_MODEL"},
	"llm.api_key":       {"GREENLENS_LLM_API_KEY", "OPENAI_API_KEY"},
	"llm.base_url":      {"GREENLENS_LLM_BASE_URL", "OLLAMA_BASE_URL"},
	"http.http_proxy":   {"GREENLENS_HTTP_HTTP_PROXY", "HTTP_PROXY"},
	"http.https_proxy":  {"GREENLENS_HTTP_HTTPS_PROXY", "HTTPS_PROXY"},
	"http.no_proxy":     {"GREENLENS_HTTP_NO_PROXY", "NO_PROXY"},
	"cache.redis_addr":  {"GREENLENS_CACHE_REDIS_ADDR", "REDIS_ADDR"},
	"storage.mongo_uri": {"GREENLENS_STORAGE_MONGO_URI", "MONGO_URI"},
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".greenlens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// GREENLENS_LLM_PROVIDER overrides llm.provider and so on
	viper.SetEnvPrefix("GREENLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := registerDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config defaults: %v\n", err)
	}
	for key, envs := range envBindings {
		_ = viper.BindEnv(append([]string{key}, envs...)...)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// logf prints progress to stderr when verbose output is on
func logf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
