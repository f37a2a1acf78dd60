package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vendor-radar/internal/catalog"
	"github.com/spigell/vendor-radar/internal/evaluate"
	"github.com/spigell/vendor-radar/internal/insights"
	"github.com/spigell/vendor-radar/internal/logger"
	"github.com/spigell/vendor-radar/internal/scoring"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Score the catalog and print market insights as json",
	Run: func(cmd *cobra.Command, _ []string) {
		runInsights(cmd)
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)

	insightsCmd.Flags().StringP("catalog", "c", "", "catalog file with vendors and criteria (default is catalog.yaml)")
}

type insightsReport struct {
	Project  string            `json:"project"`
	Category string            `json:"category"`
	Source   evaluate.Source   `json:"score_source"`
	Insights insights.Insights `json:"insights"`
	Ranking  []rankingEntry    `json:"ranking"`
}

type rankingEntry struct {
	Vendor       string  `json:"vendor"`
	Rating       float64 `json:"rating"`
	OverallScore float64 `json:"overall_score"`
}

func runInsights(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	path := catalogPath(config)
	if flag := cmd.Flag("catalog"); flag != nil && flag.Value.String() != "" {
		path = flag.Value.String()
	}

	cat, err := catalog.Load(path)
	if err != nil {
		logger.Fatal("loading the catalog", zap.Error(err))
	}

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

	score := scoring.Scorer(cat.Criteria)

	report := insightsReport{
		Project:  cat.Project,
		Category: cat.Category,
		Source:   result.Source,
		Insights: insights.Classify(result.Vendors, score),
	}
	for _, vendor := range result.Vendors.RankedBy(score) {
		report.Ranking = append(report.Ranking, rankingEntry{
			Vendor:       vendor.Name,
			Rating:       vendor.Rating,
			OverallScore: score(vendor),
		})
	}

	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatal("encoding the report", zap.Error(err))
	}
	fmt.Println(string(pretty))
}
