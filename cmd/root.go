package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "opphub"
)

type Config struct {
	Profile       *ProfileConfig `mapstructure:"profile"`
	MaxResults    int            `mapstructure:"max-results"`
	MaxAgeDays    int            `mapstructure:"max-age-days"`
	Country       string         `mapstructure:"country"`
	IncludeRemote bool           `mapstructure:"include-remote"`
	ExcludeSenior bool           `mapstructure:"exclude-senior"`
	AI            *AIConfig      `mapstructure:"ai"`
	Sources       *SourcesConfig `mapstructure:"sources"`
}

type ProfileConfig struct {
	ID         string   `mapstructure:"id"`
	Department string   `mapstructure:"department"`
	Skills     []string `mapstructure:"skills"`
	Interests  []string `mapstructure:"interests"`
}

type AIConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Provider   string        `mapstructure:"provider"`
	MaxQueries int           `mapstructure:"max-queries"`
	Groq       *GroqConfig   `mapstructure:"groq"`
	Gemini     *GeminiConfig `mapstructure:"gemini"`
}

type GroqConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type SourcesConfig struct {
	Adzuna          *AdzunaSourceConfig `mapstructure:"adzuna"`
	Greenhouse      []string            `mapstructure:"greenhouse"`
	Lever           []string            `mapstructure:"lever"`
	SmartRecruiters []string            `mapstructure:"smartrecruiters"`
	RSS             []string            `mapstructure:"rss"`
	Remotive        bool                `mapstructure:"remotive"`
	Web             *WebSourceConfig    `mapstructure:"web"`
}

type AdzunaSourceConfig struct {
	AppIDFile  string `mapstructure:"app-id-file"`
	AppKeyFile string `mapstructure:"app-key-file"`
}

type WebSourceConfig struct {
	Provider        string   `mapstructure:"provider"`
	SerpAPIKeyFile  string   `mapstructure:"serpapi-key-file"`
	GoogleKeyFile   string   `mapstructure:"google-key-file"`
	GoogleCX        string   `mapstructure:"google-cx"`
	ResultsPerQuery int      `mapstructure:"results-per-query"`
	MaxQueries      int      `mapstructure:"max-queries"`
	AllowedDomains  []string `mapstructure:"allowed-domains"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "opphub discovers internships and entry-level opportunities for a student profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is opphub.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the extract command. If there is no config, we can skip initialization
	if extractCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
