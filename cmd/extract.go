package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/ai"
	"github.com/kec-hub/opportunities/internal/ai/gemini"
	"github.com/kec-hub/opportunities/internal/ai/groq"
	"github.com/kec-hub/opportunities/internal/extractor"
	"github.com/kec-hub/opportunities/internal/filtering"
	"github.com/kec-hub/opportunities/internal/logger"
	"github.com/kec-hub/opportunities/internal/opportunity"
	"github.com/kec-hub/opportunities/internal/secrets"
	"github.com/kec-hub/opportunities/internal/sources"
)

const (
	PromptReportBySource = "Report by source"
	PromptResultsToFile  = "Dump results to file"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportBySource, PromptResultsToFile, PromptExit},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run the extraction pipeline for the configured profile",
	Run: func(cmd *cobra.Command, _ []string) {
		extract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolP("auto", "y", false, "skip the interactive menu after the run")
	extractCmd.Flags().StringP("output", "o", "", "write the ranked results as JSON to this file")
}

// extract is the main command for the cli.
func extract(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting "+app, zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Profile == nil || strings.TrimSpace(config.Profile.Department) == "" {
		logger.Fatal("profile department is required under profile.department to build search queries")
	}

	profile := &opportunity.Profile{
		ID:         config.Profile.ID,
		Department: config.Profile.Department,
		Skills:     config.Profile.Skills,
		Interests:  config.Profile.Interests,
	}

	expander, groqClient := prepareExpander(ctx, config.AI, logger)

	var linkFilter ai.LinkFilter
	if groqClient != nil {
		linkFilter = groq.NewLinkFilter(groqClient, logger)
	}

	srcs := prepareSources(config, expander, linkFilter, logger)

	ext := extractor.New(extractor.Config{
		MaxResults: config.MaxResults,
		Filters: &filtering.Config{
			Country:       config.Country,
			IncludeRemote: config.IncludeRemote,
			ExcludeSenior: config.ExcludeSenior,
			MaxAgeDays:    maxAgeDays(config),
		},
	}, srcs, logger)

	results, meta, err := ext.ExtractWithMeta(ctx, profile)
	if err != nil {
		logger.Fatal("extraction failed", zap.Error(err))
	}

	if meta.Web.Error != "" {
		logger.Warn("web search reported a problem", zap.String("error", meta.Web.Error))
	}

	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no opportunities found"))
		return
	}

	printResults(results)

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := writeResults(results, output); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		logger.Info("results written", zap.String("filename", output))
	}

	if cmd.Flag("auto").Value.String() == "true" {
		logger.Info("auto mode, skipping the menu", zap.Int("count", results.Len()))
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, results *opportunity.List) error {
	switch action {
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(results.ReportBySource(), "", "  ")
		logger.Info(string(pretty), zap.Int("opportunities count", results.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printResults(results *opportunity.List) {
	for i, op := range results.Items {
		deadline := "-"
		if op.Deadline != nil {
			deadline = op.Deadline.Format("2006-01-02")
		}
		fmt.Printf("%2d. [%.1f] %s / %s / %s / deadline: %s\n    %s\n",
			i+1, op.Score, op.Title, op.Company, op.Kind, deadline, op.SourceURL)
	}
}

func writeResults(results *opportunity.List, filename string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// prepareExpander builds the configured query expander. A missing or broken
// AI setup is not fatal: the pipeline runs with plain queries only.
func prepareExpander(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Expander, *groq.Client) {
	if cfg == nil || !cfg.Enabled {
		log.Info("ai query expansion disabled")
		return nil, nil
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", "groq":
		groqCfg := cfg.Groq
		if groqCfg == nil {
			groqCfg = &GroqConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "groq api key",
			Env:  "GROQ_API_KEY",
			File: groqCfg.APIKeyFile,
		})
		if err != nil {
			log.Warn("skipping ai query expansion", zap.Error(err))
			return nil, nil
		}

		client, err := groq.NewClient(apiKey, groqCfg.Model, time.Duration(groqCfg.TimeoutSeconds)*time.Second, log)
		if err != nil {
			log.Warn("skipping ai query expansion", zap.Error(err))
			return nil, nil
		}

		expLogger := logger.WithAIFields(log, "groq", client.Model())
		return groq.NewExpander(client, cfg.MaxQueries, expLogger), client

	case "gemini":
		gemCfg := cfg.Gemini
		if gemCfg == nil {
			gemCfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			Env:  "GEMINI_API_KEY",
			File: gemCfg.APIKeyFile,
		})
		if err != nil {
			log.Warn("skipping ai query expansion", zap.Error(err))
			return nil, nil
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, gemCfg.Model)
		if err != nil {
			log.Warn("skipping ai query expansion", zap.Error(err))
			return nil, nil
		}

		expLogger := logger.WithAIFields(log, "gemini", generator.Model())
		return gemini.NewExpander(generator, cfg.MaxQueries, expLogger), nil

	default:
		log.Warn("unsupported ai provider, skipping ai query expansion", zap.String("provider", cfg.Provider))
		return nil, nil
	}
}

func prepareSources(config *Config, expander ai.Expander, linkFilter ai.LinkFilter, log *zap.Logger) []sources.Source {
	srcCfg := config.Sources
	if srcCfg == nil {
		srcCfg = &SourcesConfig{}
	}

	adzunaCfg := srcCfg.Adzuna
	if adzunaCfg == nil {
		adzunaCfg = &AdzunaSourceConfig{}
	}

	maxResults := config.MaxResults
	if maxResults < 1 {
		maxResults = 25
	}

	srcs := []sources.Source{
		sources.NewAdzuna(sources.AdzunaConfig{
			AppID:          secrets.LoadOptional(secrets.Source{Name: "adzuna app id", Env: "ADZUNA_APP_ID", File: adzunaCfg.AppIDFile}),
			AppKey:         secrets.LoadOptional(secrets.Source{Name: "adzuna app key", Env: "ADZUNA_APP_KEY", File: adzunaCfg.AppKeyFile}),
			ResultsPerPage: maxResults,
		}, expander, log),
	}

	if len(srcCfg.Greenhouse) > 0 {
		srcs = append(srcs, sources.NewGreenhouse(srcCfg.Greenhouse, 0, log))
	}
	if len(srcCfg.Lever) > 0 {
		srcs = append(srcs, sources.NewLever(srcCfg.Lever, 0, log))
	}
	if len(srcCfg.SmartRecruiters) > 0 {
		srcs = append(srcs, sources.NewSmartRecruiters(srcCfg.SmartRecruiters, 0, log))
	}
	if srcCfg.Remotive {
		srcs = append(srcs, sources.NewRemotive(0, log))
	}
	if len(srcCfg.RSS) > 0 {
		srcs = append(srcs, sources.NewRSS(srcCfg.RSS, 0, log))
	}

	if webCfg := srcCfg.Web; webCfg != nil {
		srcs = append(srcs, sources.NewWebSearch(sources.WebSearchConfig{
			Provider:        webCfg.Provider,
			SerpAPIKey:      secrets.LoadOptional(secrets.Source{Name: "serpapi api key", Env: "SERPAPI_API_KEY", File: webCfg.SerpAPIKeyFile}),
			GoogleCSEKey:    secrets.LoadOptional(secrets.Source{Name: "google cse api key", Env: "GOOGLE_CSE_API_KEY", File: webCfg.GoogleKeyFile}),
			GoogleCSECX:     webCfg.GoogleCX,
			ResultsPerQuery: webCfg.ResultsPerQuery,
			MaxQueries:      webCfg.MaxQueries,
			AllowedDomains:  webCfg.AllowedDomains,
			MaxResults:      maxResults,
		}, expander, linkFilter, log))
	}

	return srcs
}

func maxAgeDays(config *Config) int {
	if config.MaxAgeDays > 0 {
		return config.MaxAgeDays
	}
	return 21
}
