package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hienhayho/KLTN-v2/internal/bootstrap"
	"github.com/hienhayho/KLTN-v2/internal/config"
	"github.com/hienhayho/KLTN-v2/internal/core/domain"
	"github.com/hienhayho/KLTN-v2/internal/core/usecase"
	"github.com/hienhayho/KLTN-v2/internal/observability/logging"
)

type evalResult struct {
	Row        int      `json:"row"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer,omitempty"`
	FinalQuery string   `json:"final_query,omitempty"`
	Contexts   []string `json:"contexts,omitempty"`
	LatencyMS  float64  `json:"latency_ms"`
	Error      string   `json:"error,omitempty"`
}

func main() {
	var (
		inputPath    = flag.String("input", "", "xlsx workbook with one question per row")
		outputDir    = flag.String("output", "eval_results", "directory for the JSONL result file")
		onlyRetrieve = flag.Bool("only-retrieve", false, "skip answer generation, record contexts only")
	)
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewJSONLogger("eval", cfg.LogLevel)

	if *inputPath == "" {
		logger.Error("missing_input_flag")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	questions, err := readQuestions(*inputPath)
	if err != nil {
		logger.Error("read_questions_failed", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	if len(questions) == 0 {
		logger.Error("no_questions_found", "path", *inputPath)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Error("create_output_dir_failed", "dir", *outputDir, "error", err)
		os.Exit(1)
	}
	outPath := filepath.Join(*outputDir, fmt.Sprintf("eval_%s.jsonl", time.Now().UTC().Format("20060102_150405")))
	out, err := os.Create(outPath)
	if err != nil {
		logger.Error("create_output_failed", "path", outPath, "error", err)
		os.Exit(1)
	}
	defer out.Close()

	encoder := json.NewEncoder(out)
	failures := 0
	for i, question := range questions {
		if ctx.Err() != nil {
			logger.Warn("eval_interrupted", "completed", i, "total", len(questions))
			break
		}

		start := time.Now()
		result, runErr := app.ChatUC.Chat(ctx, usecase.ChatConversationRequest{
			ChatRequest: domain.ChatRequest{
				Query:        question,
				OnlyRetrieve: *onlyRetrieve,
			},
		})
		record := evalResult{
			Row:       i + 1,
			Question:  question,
			LatencyMS: float64(time.Since(start).Microseconds()) / 1000.0,
		}
		if runErr != nil {
			failures++
			record.Error = runErr.Error()
			logger.Warn("question_failed", "row", i+1, "error", runErr)
		} else {
			record.Answer = result.Answer
			record.FinalQuery = result.FinalQuery
			record.Contexts = result.Contexts
		}
		if err := encoder.Encode(record); err != nil {
			logger.Error("write_result_failed", "row", i+1, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("eval_done",
		"questions", len(questions),
		"failures", failures,
		"output", outPath,
	)
}

// readQuestions takes the first column of the first sheet, skipping an
// optional header row and blank cells.
func readQuestions(path string) ([]string, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	questions := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if cell == "" {
			continue
		}
		if i == 0 && isHeaderCell(cell) {
			continue
		}
		questions = append(questions, cell)
	}
	return questions, nil
}

func isHeaderCell(cell string) bool {
	switch strings.ToLower(cell) {
	case "question", "questions", "query", "câu hỏi":
		return true
	default:
		return false
	}
}
