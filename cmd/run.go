package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/ai"
	"github.com/spigell/vendor-radar/internal/ai/gemini"
	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/evaluate"
	"github.com/spigell/vendor-radar/internal/export"
	"github.com/spigell/vendor-radar/internal/insights"
	"github.com/spigell/vendor-radar/internal/logger"
	"github.com/spigell/vendor-radar/internal/ordering"
	"github.com/spigell/vendor-radar/internal/scoring"
	"github.com/spigell/vendor-radar/internal/secrets"
	"github.com/spigell/vendor-radar/internal/storage"
)

const (
	PromptInsights      = "Show market insights"
	PromptExportCSV     = "Export comparison to csv"
	PromptSummary       = "Generate executive summary"
	PromptChat          = "Chat about the results"
	PromptToggleSort    = "Toggle criteria sorting"
	PromptSaveOrder     = "Save current criteria order"
	PromptShowOrder     = "Show criteria order"
	PromptVendorsToFile = "Dump scored vendors to file"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptInsights, PromptExportCSV, PromptSummary, PromptChat,
		PromptToggleSort, PromptSaveOrder, PromptShowOrder,
		PromptVendorsToFile, PromptExit,
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the vendor-radar main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("catalog", "c", "", "catalog file with vendors and criteria (default is catalog.yaml)")
	runCmd.Flags().BoolP("no-interactive", "n", false, "print the ranking and exit without the action prompt")

	viper.BindPFlag("catalog", runCmd.Flags().Lookup("catalog"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vendor-radar", zap.String("version", version))

	cat, err := catalog.Load(catalogPath(config))
	if err != nil {
		logger.Fatal("loading the catalog", zap.Error(err))
	}

	logger.Info("catalog loaded",
		zap.String("project", cat.Project),
		zap.String("category", cat.Category),
		zap.Int("vendors", cat.Vendors.Len()),
		zap.Int("criteria", cat.Criteria.Len()),
	)

	store, err := newStore(ctx, config.Storage)
	if err != nil {
		logger.Fatal("creating the order store", zap.Error(err))
	}

	orderManager := ordering.NewManager(store, cat.Project, logger)

	provider, err := newProvider(ctx, config.AI, cat.Project, logger)
	if err != nil {
		logger.Warn("ai provider unavailable, scores will be generated locally", zap.Error(err))
	}

	fallback := scoring.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))

	result, err := evaluate.Run(ctx, evaluate.Deps{
		Provider: provider,
		Fallback: fallback,
		Logger:   logger,
	}, cat.Vendors, cat.Criteria)
	if err != nil {
		logger.Fatal("scoring vendors", zap.Error(err))
	}

	logger.Info("vendors scored", zap.String("source", string(result.Source)))

	score := scoring.Scorer(cat.Criteria)
	printRanking(result.Vendors, score)

	if flag := cmd.Flag("no-interactive"); flag != nil && flag.Value.String() == "true" {
		return
	}

	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, cat, result, score, orderManager, provider, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, cat *catalog.Catalog, result *evaluate.Result, score scoring.ScoreFunc, orderManager *ordering.Manager, provider ai.Provider, logger *zap.Logger) error {
	switch action {
	case PromptInsights:
		market := insights.Classify(result.Vendors, score)
		pretty, _ := json.MarshalIndent(market, "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptExportCSV:
		filename, err := exportCSV(cat, result.Vendors, score)
		if err != nil {
			return fmt.Errorf("export comparison: %w", err)
		}
		logger.Info("comparison exported", zap.String("filename", filename))
		return nil
	case PromptSummary:
		if provider == nil {
			logger.Warn("executive summary needs the ai provider; it is not configured")
			return nil
		}
		summary, err := provider.GenerateExecutiveSummary(ctx, cat.Category, result.Vendors, cat.Criteria)
		if err != nil {
			logger.Warn("generating executive summary failed", zap.Error(err))
			return nil
		}
		fmt.Println(summary)
		return nil
	case PromptChat:
		if provider == nil {
			logger.Warn("chat needs the ai provider; it is not configured")
			return nil
		}
		return chatLoop(ctx, provider, result.Vendors, cat.Criteria, logger)
	case PromptToggleSort:
		enabled, err := orderManager.ToggleSorting(ctx)
		if err != nil {
			return fmt.Errorf("toggle criteria sorting: %w", err)
		}
		mode := "manual"
		if enabled {
			mode = "sorted by importance"
		}
		logger.Info("criteria ordering mode changed", zap.String("mode", mode))
		return nil
	case PromptSaveOrder:
		ordered := orderedAll(ctx, cat, orderManager)
		if err := orderManager.SaveCurrentOrder(ctx, ordered); err != nil {
			return fmt.Errorf("save criteria order: %w", err)
		}
		logger.Info("current criteria order saved as manual baseline")
		return nil
	case PromptShowOrder:
		printOrder(ctx, cat, orderManager)
		return nil
	case PromptVendorsToFile:
		filename, err := result.Vendors.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump vendors to file: %w", err)
		}
		logger.Info("dumping scored vendors to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func catalogPath(config *Config) string {
	path := strings.TrimSpace(viper.GetString("catalog"))
	if path == "" && config != nil {
		path = strings.TrimSpace(config.Catalog)
	}
	if path == "" {
		path = "catalog.yaml"
	}
	return path
}

func newStore(ctx context.Context, cfg *StorageConfig) (storage.Store, error) {
	backend := "file"
	if cfg != nil && strings.TrimSpace(cfg.Backend) != "" {
		backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	}

	switch backend {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		path := app + ".state.json"
		if cfg != nil && strings.TrimSpace(cfg.File) != "" {
			path = strings.TrimSpace(cfg.File)
		}
		return storage.NewFile(path), nil
	case "redis":
		if cfg == nil || cfg.Redis == nil || strings.TrimSpace(cfg.Redis.Addr) == "" {
			return nil, fmt.Errorf("storage.redis.addr is required for the redis backend")
		}
		return storage.NewRedis(ctx, storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}
}

func newProvider(ctx context.Context, cfg *AIConfig, projectID string, logger *zap.Logger) (ai.Provider, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	name := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if name != "" && name != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai scoring is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewProvider(generator, projectID, cfg.Gemini.MaxLogLength, logger), nil
}

func printRanking(vendors catalog.Vendors, score scoring.ScoreFunc) {
	ranked := vendors.RankedBy(score)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tVENDOR\tRATING\tOVERALL SCORE")
	for idx, vendor := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.2f\n", idx+1, vendor.Name, vendor.Rating, score(vendor))
	}
	w.Flush()
}

func exportCSV(cat *catalog.Catalog, vendors catalog.Vendors, score scoring.ScoreFunc) (string, error) {
	filename := export.Filename(cat.Category, "csv", time.Now())

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write(export.ComparisonHeader(cat.Criteria)); err != nil {
		return "", err
	}
	for _, row := range export.ComparisonRows(vendors.RankedBy(score), cat.Criteria, score, export.FormatRich) {
		record := append([]string{row.Vendor, row.Rating, row.OverallScore}, row.CriterionCells...)
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	return filename, w.Error()
}

func chatLoop(ctx context.Context, provider ai.Provider, vendors catalog.Vendors, criteria catalog.Criteria, logger *zap.Logger) error {
	background, err := json.Marshal(map[string]any{
		"criteria": criteria,
		"vendors":  vendors,
	})
	if err != nil {
		return fmt.Errorf("marshal chat context: %w", err)
	}

	messages := make([]ai.Message, 0)
	for {
		question := promptui.Prompt{Label: "Question (empty to go back)"}
		input, err := question.Run()
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			return nil
		}

		messages = append(messages, ai.Message{Role: "user", Content: input})

		answer, err := provider.Chat(ctx, messages, string(background))
		if err != nil {
			logger.Warn("chat request failed", zap.Error(err))
			continue
		}

		messages = append(messages, ai.Message{Role: "assistant", Content: answer})
		fmt.Println(answer)
	}
}

// orderedAll applies the current ordering mode to every category and
// concatenates the result in category order.
func orderedAll(ctx context.Context, cat *catalog.Catalog, orderManager *ordering.Manager) catalog.Criteria {
	ordered := make(catalog.Criteria, 0, cat.Criteria.Len())
	for _, category := range cat.Criteria.Categories() {
		group := make(catalog.Criteria, 0)
		for _, criterion := range cat.Criteria {
			if strings.EqualFold(criterion.Type, category) {
				group = append(group, criterion)
			}
		}
		ordered = append(ordered, orderManager.OrderedCriteria(ctx, category, group)...)
	}
	return ordered
}

func printOrder(ctx context.Context, cat *catalog.Catalog, orderManager *ordering.Manager) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCRITERION\tIMPORTANCE")
	for _, criterion := range orderedAll(ctx, cat, orderManager) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", strings.ToLower(criterion.Type), criterion.Name, criterion.Importance)
	}
	w.Flush()
}
