// vigia — keyword news monitor with AI crisis scoring
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fortega-m/vigia/internal/aggregate"
	"github.com/fortega-m/vigia/internal/classify"
	"github.com/fortega-m/vigia/internal/config"
	"github.com/fortega-m/vigia/internal/export"
	"github.com/fortega-m/vigia/internal/feed"
	"github.com/fortega-m/vigia/internal/llm"
	"github.com/fortega-m/vigia/internal/monitor"
	"github.com/fortega-m/vigia/internal/notify"
	"github.com/fortega-m/vigia/internal/session"
	"github.com/fortega-m/vigia/internal/sources"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vigia",
	Short: "vigia — monitor de noticias con análisis de riesgo por IA",
	Long: `vigia busca un término en medios chilenos e internacionales vía RSS,
clasifica el sentimiento y la emoción de cada noticia con un modelo de
lenguaje remoto y calcula una señal agregada de riesgo de crisis.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local secrets first, then config file + env overrides.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vigia %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search all configured sources for a keyword and score the risk",
	Long: `Search every configured RSS source (plus Google/Bing News when enabled)
for a keyword, rank the matches, classify each article and print the
consolidated report.

Examples:
  vigia search "sequía"
  vigia search "reforma tributaria" --categories nacional,economia --csv out.csv
  vigia search "inflación" --bing --email analista@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := args[0]

		categories, _ := cmd.Flags().GetStringSlice("categories")
		useGoogle, _ := cmd.Flags().GetBool("google")
		useBing, _ := cmd.Flags().GetBool("bing")
		minMatches, _ := cmd.Flags().GetInt("min-matches")
		csvPath, _ := cmd.Flags().GetString("csv")
		emailTo, _ := cmd.Flags().GetString("email")
		top, _ := cmd.Flags().GetInt("top")

		if !cmd.Flags().Changed("google") {
			useGoogle = cfg.Aggregator.UseGoogle
		}
		if !cmd.Flags().Changed("bing") {
			useBing = cfg.Aggregator.UseBing
		}
		if !cmd.Flags().Changed("min-matches") {
			minMatches = cfg.Aggregator.MinMatches
		}
		if len(categories) == 0 {
			categories = cfg.Sources.Categories
		}

		catalog := sources.Default()
		if cfg.Sources.File != "" {
			var err error
			catalog, err = sources.Load(cfg.Sources.File)
			if err != nil {
				return err
			}
		}

		client, err := llm.NewClient(cfg.LLM.APIKey,
			llm.WithBaseURL(cfg.LLM.BaseURL),
			llm.WithModel(cfg.LLM.Model),
			llm.WithTemperature(cfg.LLM.Temperature),
			llm.WithMaxTokens(cfg.LLM.MaxTokens),
		)
		if err != nil {
			return fmt.Errorf("classifier unavailable: %w", err)
		}

		report := func(format string, a ...any) { fmt.Printf(format+"\n", a...) }

		fetcher := feed.New(time.Duration(cfg.Aggregator.FetchPauseMs) * time.Millisecond)
		aggregator := aggregate.New(fetcher, aggregate.Reporter(report))
		enricher := classify.NewEnricher(
			classify.NewDeepSeek(client),
			cfg.Classifier.Concurrency,
			cfg.Classifier.SummaryLimit,
			classify.Reporter(report),
		)
		mon := monitor.New(aggregator, enricher, session.New(cfg.Session.HistorySize), monitor.Reporter(report))

		result, err := mon.Search(cmd.Context(), keyword, aggregate.Options{
			Catalog:     catalog.Filter(categories),
			UseGoogle:   useGoogle,
			UseBing:     useBing,
			GoogleCap:   cfg.Aggregator.GoogleCap,
			BingCap:     cfg.Aggregator.BingCap,
			MinMatches:  minMatches,
			Concurrency: cfg.Aggregator.ConcurrentFetches,
		})
		if err != nil {
			return err
		}

		if result.Empty() {
			fmt.Printf("\n⚠️  No se encontraron noticias para %q.\n", keyword)
			fmt.Println("💡 Intenta con términos más generales o habilita más categorías.")
			return nil
		}

		printed := result.Articles
		if top > 0 && len(printed) > top {
			printed = printed[:top]
		}
		fmt.Print(export.ConsolidatedReport(keyword, printed, result.Risk))
		fmt.Printf("📊 %d noticias | %d fuentes | %d menciones (%.1f por noticia)\n",
			len(result.Articles), result.SourceCount, result.TotalMentions, result.AverageMentions())

		if csvPath != "" {
			if err := writeCSVFile(csvPath, result); err != nil {
				return err
			}
			fmt.Printf("📥 CSV guardado en %s\n", csvPath)
		}

		if emailTo != "" {
			// Delivery failure is reported but never discards the results.
			if err := emailReport(emailTo, keyword, result); err != nil {
				fmt.Printf("⚠️  No se pudo enviar el correo: %v\n", err)
			} else {
				fmt.Printf("📧 Informe enviado a %s\n", emailTo)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringSlice("categories", nil, "source categories to poll (default from config)")
	searchCmd.Flags().Bool("google", true, "include Google News RSS results")
	searchCmd.Flags().Bool("bing", false, "include Bing News RSS results")
	searchCmd.Flags().Int("min-matches", 1, "minimum keyword mentions per article")
	searchCmd.Flags().String("csv", "", "write the articles to a CSV file")
	searchCmd.Flags().String("email", "", "email the consolidated report to this address")
	searchCmd.Flags().Int("top", 0, "print only the top N articles (0 = all)")
}

func init() {
	sourcesCmd.Flags().String("file", "", "YAML catalog file overriding the built-in sources")
}

func writeCSVFile(path string, result *monitor.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return export.WriteCSV(f, result.Articles)
}

func emailReport(to, keyword string, result *monitor.Result) error {
	mailer, err := notify.New(notify.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Monitor de noticias: %q (%s)", keyword, result.Risk.Level)
	body := export.ConsolidatedReport(keyword, result.Articles, result.Risk)
	return mailer.Send(to, subject, body)
}

// --- Sources Command ---

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the configured source catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			file = cfg.Sources.File
		}

		catalog := sources.Default()
		if file != "" {
			var err error
			catalog, err = sources.Load(file)
			if err != nil {
				return err
			}
		}
		for _, group := range catalog.Groups() {
			fmt.Printf("📡 %s\n", group.Category)
			for _, src := range group.Sources {
				fmt.Printf("   %-22s %s\n", src.Name, src.URL)
			}
		}
		fmt.Printf("\n%d fuentes en %d categorías (+ Google News, Bing News)\n",
			catalog.Len(), len(catalog.Groups()))
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  vigia — Estado del sistema")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:        %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuración:")
		fmt.Printf("    Modelo:       %s (%s)\n", cfg.LLM.Model, cfg.LLM.BaseURL)
		fmt.Printf("    Categorías:   %v\n", cfg.Sources.Categories)
		fmt.Printf("    Google News:  %v | Bing News: %v\n", cfg.Aggregator.UseGoogle, cfg.Aggregator.UseBing)
		fmt.Printf("    SMTP:         %s:%d\n", cfg.Mail.Host, cfg.Mail.Port)
		fmt.Println()

		fmt.Println("  Credenciales:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
