package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/psds-microservice/report-service/internal/database"
	"github.com/psds-microservice/report-service/internal/kafka"
	"github.com/psds-microservice/report-service/internal/model"
	"github.com/psds-microservice/report-service/internal/searchindex"
	"github.com/spf13/cobra"
)

var reindexSearchCmd = &cobra.Command{
	Use:   "reindex-search",
	Short: "Replay all reports into search. Prefers Kafka (report.snapshot); falls back to HTTP if SEARCH_SERVICE_URL set.",
	RunE:  runReindexSearch,
}

func init() {
	rootCmd.AddCommand(reindexSearchCmd)
}

func runReindexSearch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	conn, err := database.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var reports []model.Report
	if err := conn.Order("seq").Find(&reports).Error; err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	log.Info("reindex-search: loaded reports", "count", len(reports))

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	// Prefer Kafka, then HTTP
	producer := kafka.NewProducer(log, cfg.KafkaBrokers, cfg.KafkaTopicReport)
	defer producer.Close()
	if producer.Enabled() {
		for i := range reports {
			producer.ProduceReportEvent(ctx, kafka.EventReportSnapshot, kafka.ReportPayload(&reports[i]))
			if (i+1)%50 == 0 || i == len(reports)-1 {
				log.Info("reindex-search: sent to kafka", "done", i+1, "total", len(reports))
			}
		}
		log.Info("reindex-search: done via kafka (search-service worker will index them)", "count", len(reports))
		return nil
	}

	client := searchindex.NewClient(log, cfg.SearchServiceURL)
	if client.Enabled() {
		failed := 0
		for i := range reports {
			if err := client.IndexReport(ctx, &reports[i]); err != nil {
				failed++
				log.Warn("reindex-search: index report", "report_id", reports[i].ID, "error", err)
			}
			if (i+1)%50 == 0 || i == len(reports)-1 {
				log.Info("reindex-search: indexed", "done", i+1, "total", len(reports))
			}
		}
		log.Info("reindex-search: done via http", "count", len(reports), "failed", failed)
		return nil
	}
	log.Warn("reindex-search: neither KAFKA_BROKERS nor SEARCH_SERVICE_URL set, nothing reindexed", "count", len(reports))
	return nil
}
