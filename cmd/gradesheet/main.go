package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/gradesheet/internal/grading"
	"github.com/pavelanni/gradesheet/internal/handler"
	"github.com/pavelanni/gradesheet/internal/llm"
	"github.com/pavelanni/gradesheet/internal/model"
	"github.com/pavelanni/gradesheet/internal/repo"
	"github.com/pavelanni/gradesheet/internal/rowstore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gradesheet",
		Short: "Classroom task and grading server backed by a spreadsheet",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `gradesheet --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func storeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("store", "sheets", "Backing store (sheets, sqlite)")
	f.String("spreadsheet-id", "", "Google Sheets spreadsheet ID")
	f.String("service-account-key", "", "Base64-encoded service account JSON (or GRADESHEET_SERVICE_ACCOUNT_KEY)")
	f.String("service-account-file", "", "Path to a service account JSON file")
	f.String("db", "gradesheet.db", "SQLite cell store path (store=sqlite)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP grading server",
		RunE:  runServe,
	}
	storeFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("openai-url", "", "OpenAI-compatible API base URL (empty for api.openai.com)")
	f.String("openai-key", "", "API key for the chat assistant and grade suggestions")
	f.String("openai-model", "gpt-4o", "Model name for chat and suggestions")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export final grades as JSON",
		RunE:  runExport,
	}
	storeFlags(cmd)
	f := cmd.Flags()
	f.String("class-id", "", "Class identifier for output")
	f.String("date", "", "Export date in YYYY-MM-DD format")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GRADESHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gradesheet")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/gradesheet")
	v.AddConfigPath("/etc/gradesheet")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openStore builds the configured RowStore adapter.
func openStore(ctx context.Context, v *viper.Viper) (rowstore.RowStore, func(), error) {
	switch v.GetString("store") {
	case "sqlite":
		s, err := rowstore.NewSQLite(v.GetString("db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	case "sheets":
		creds, err := loadCredentials(v)
		if err != nil {
			return nil, nil, err
		}
		s, err := rowstore.NewSheets(ctx, creds, v.GetString("spreadsheet-id"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sheets store: %w", err)
		}
		return s, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", v.GetString("store"))
	}
}

// loadCredentials reads the service account key from a file or a base64
// environment value, whichever is configured.
func loadCredentials(v *viper.Viper) ([]byte, error) {
	if path := v.GetString("service-account-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	encoded := v.GetString("service-account-key")
	if encoded == "" {
		return nil, fmt.Errorf("service account key is required: set --service-account-file or GRADESHEET_SERVICE_ACCOUNT_KEY")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode service account key: %w", err)
	}
	return data, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer closeStore()

	var llmClient *llm.Client
	if key := v.GetString("openai-key"); key != "" {
		llmClient = llm.New(v.GetString("openai-url"), key, v.GetString("openai-model"))
	} else {
		slog.Warn("no OpenAI key configured; chat and suggestion endpoints disabled")
	}

	h := handler.New(store, llmClient)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"store", v.GetString("store"),
		"model", v.GetString("openai-model"),
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, v)
	if err != nil {
		return err
	}
	defer closeStore()

	export, err := buildExport(ctx, store)
	if err != nil {
		return err
	}
	export.ClassID = v.GetString("class-id")
	export.Date = v.GetString("date")

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}

// buildExport collects every assigned student's final grades per task.
func buildExport(ctx context.Context, store rowstore.RowStore) (*model.GradeExport, error) {
	tasks := repo.NewTasks(store)
	responses := repo.NewResponses(store)
	assignments := repo.NewAssignments(store)
	engine := grading.New(tasks, responses, assignments)

	allTasks, err := tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	allAssignments, err := assignments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	// byStudent accumulates task results keyed by student.
	byStudent := make(map[string][]model.TaskResult)

	for _, task := range allTasks {
		completion, err := engine.Completion(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("completion for task %s: %w", task.ID, err)
		}
		taskResponses, err := responses.ListForTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("responses for task %s: %w", task.ID, err)
		}

		type key struct{ student, question string }
		byKey := make(map[key]model.Response, len(taskResponses))
		for _, r := range taskResponses {
			byKey[key{r.StudentID, r.QuestionID}] = r
		}

		for studentID, assigned := range allAssignments {
			hasTask := false
			for _, id := range assigned {
				if id == task.ID {
					hasTask = true
					break
				}
			}
			if !hasTask {
				continue
			}

			result := model.TaskResult{
				TaskID:   task.ID,
				Title:    task.Title,
				Complete: completion[studentID],
			}
			for _, q := range task.Questions {
				r := byKey[key{studentID, q.ID}]
				result.Questions = append(result.Questions, model.QuestionResult{
					QuestionID: q.ID,
					Text:       q.Text,
					Answer:     r.Answer,
					FinalGrade: r.FinalGrade,
					AIGrade:    r.AIGrade,
				})
			}
			byStudent[studentID] = append(byStudent[studentID], result)
		}
	}

	students := make([]string, 0, len(byStudent))
	for studentID := range byStudent {
		students = append(students, studentID)
	}
	slices.Sort(students)

	export := &model.GradeExport{}
	for _, studentID := range students {
		export.Results = append(export.Results, model.StudentResult{
			StudentID: studentID,
			Tasks:     byStudent[studentID],
		})
	}
	return export, nil
}
