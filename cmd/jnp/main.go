package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gtmaskall/jnp/internal/config"
	"github.com/gtmaskall/jnp/internal/crawler"
	"github.com/gtmaskall/jnp/internal/heading"
	"github.com/gtmaskall/jnp/internal/notebook"
	"github.com/gtmaskall/jnp/internal/release"
	"github.com/gtmaskall/jnp/internal/series"
	"github.com/gtmaskall/jnp/internal/tasks"
	"github.com/gtmaskall/jnp/internal/toc"
	"github.com/gtmaskall/jnp/internal/watcher"
)

var (
	rootCmd = &cobra.Command{
		Use:   "jnp",
		Short: "Jupyter notebook post-processor",
		Long:  "jnp numbers markdown headings, maintains a generated contents cell, numbers task markers, and builds student/teacher notebook variants.",
	}

	cfgPath string

	// process flags
	startAt     int
	numSep      string
	noTOC       bool
	continueSer bool
	seriesDB    string

	// tasks flags
	taskPattern     string
	answerPattern   string
	questionPattern string
	qaPattern       string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", ".jnp.yaml", "Path to the config file")

	processCmd.Flags().IntVarP(&startAt, "start-at", "s", -1, "Number the first top-level heading with this value (default from config)")
	processCmd.Flags().StringVar(&numSep, "sep", "", "Separator between number parts (default from config)")
	processCmd.Flags().BoolVar(&noTOC, "no-toc", false, "Number headings only, leave the contents cell alone")
	processCmd.Flags().BoolVar(&continueSer, "continue", false, "Chain heading numbers across the given notebooks as a series")
	processCmd.Flags().StringVar(&seriesDB, "series-db", "", "Path to the series database (default from config)")

	tasksCmd.Flags().StringVar(&taskPattern, "task", "", "Task marker pattern, <n> takes the number")
	tasksCmd.Flags().StringVar(&answerPattern, "answer", "", "Answer marker pattern")
	tasksCmd.Flags().StringVar(&questionPattern, "question", "", "Question marker pattern in markdown cells")
	tasksCmd.Flags().StringVar(&qaPattern, "question-answer", "", "Question answer marker pattern in markdown cells")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(watchCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", cfgPath, err)
	}
	return cfg
}

// expandPaths resolves the command arguments into notebook paths, crawling
// directories. With no arguments the current directory is crawled.
func expandPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	cr := crawler.NewCrawler()
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := cr.Collect(arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, found...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

var processCmd = &cobra.Command{
	Use:   "process [path...]",
	Short: "Number headings and refresh the contents cell in notebooks",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if startAt < 0 {
			startAt = cfg.Number.StartAt
		}
		if numSep == "" {
			numSep = cfg.Number.Separator
		}
		if seriesDB == "" {
			seriesDB = cfg.Series.DB
		}
		withTOC := cfg.Contents.Enabled && !noTOC

		paths, err := expandPaths(args)
		if err != nil {
			log.Fatalf("Failed to resolve paths: %v", err)
		}
		if len(paths) == 0 {
			fmt.Println("No notebooks found.")
			return
		}

		ctx := context.Background()
		var store *series.Store
		if continueSer {
			store, err = series.Open(seriesDB)
			if err != nil {
				log.Fatalf("Failed to open series database %s: %v", seriesDB, err)
			}
			defer store.Close()
		}

		numberer := heading.NewNumberer(numSep)
		builder := toc.NewBuilder()
		nextStart := startAt
		failures := 0

		for _, path := range paths {
			fileStart := nextStart
			if store != nil {
				// A notebook already in the series keeps its recorded range,
				// so re-running never renumbers the whole series.
				if r, ok, err := store.Lookup(ctx, path); err == nil && ok {
					fileStart = r.StartAt
				}
			}

			counters, changed, err := processNotebook(path, numberer, builder, fileStart, withTOC)
			if err != nil {
				fmt.Printf("⚠️  %s: %v\n", path, err)
				failures++
				continue
			}

			status := "unchanged"
			if changed {
				status = "updated"
			}
			fmt.Printf("📓 %s (headings from %d, %s)\n", path, fileStart, status)

			if store != nil {
				if err := store.Record(ctx, path, fileStart, counters.Top()); err != nil {
					fmt.Printf("⚠️  %s: failed to record series range: %v\n", path, err)
				}
				nextStart = counters.Top() + 1
			}
		}

		if failures > 0 {
			fmt.Printf("❌ %d of %d notebooks failed.\n", failures, len(paths))
			os.Exit(1)
		}
		fmt.Printf("✅ Processed %d notebooks.\n", len(paths))
	},
}

// processNotebook runs the heading/contents pipeline over one file.
func processNotebook(path string, numberer *heading.Numberer, builder *toc.Builder, fileStart int, withTOC bool) (heading.Counters, bool, error) {
	nb, err := notebook.Read(path)
	if err != nil {
		return heading.Counters{}, false, err
	}

	cells, counters, err := numberer.NumberAll(nb.Cells, fileStart)
	if err != nil {
		return heading.Counters{}, false, err
	}
	if withTOC {
		cells = builder.InsertContents(cells)
	}
	nb.Cells = cells

	changed, err := nb.Write(path)
	return counters, changed, err
}

var tasksCmd = &cobra.Command{
	Use:   "tasks [path...]",
	Short: "Number task, answer, and question markers in notebooks",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if taskPattern == "" {
			taskPattern = cfg.Tasks.Task
		}
		if answerPattern == "" {
			answerPattern = cfg.Tasks.Answer
		}
		if questionPattern == "" {
			questionPattern = cfg.Tasks.Question
		}
		if qaPattern == "" {
			qaPattern = cfg.Tasks.QuestionAnswer
		}

		paths, err := expandPaths(args)
		if err != nil {
			log.Fatalf("Failed to resolve paths: %v", err)
		}

		code := tasks.NewCodeNumberer(taskPattern, answerPattern)
		questions := tasks.NewQuestionNumberer(questionPattern, qaPattern)
		failures := 0

		for _, path := range paths {
			nb, err := notebook.Read(path)
			if err != nil {
				fmt.Printf("⚠️  %v\n", err)
				failures++
				continue
			}

			var counts tasks.Counts
			nb.Cells, counts = code.NumberAll(nb.Cells, counts)
			nb.Cells, counts = questions.NumberAll(nb.Cells, counts)

			if _, err := nb.Write(path); err != nil {
				fmt.Printf("⚠️  %v\n", err)
				failures++
				continue
			}
			fmt.Printf("📓 %s: %d tasks, %d questions\n", path, counts.Tasks, counts.Questions)
		}

		if failures > 0 {
			os.Exit(1)
		}
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release <student|teacher> [path...]",
	Short: "Write student or teacher variants of notebooks",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		variant := args[0]
		if variant != "student" && variant != "teacher" {
			log.Fatalf("Unknown variant %q: want student or teacher", variant)
		}

		paths, err := expandPaths(args[1:])
		if err != nil {
			log.Fatalf("Failed to resolve paths: %v", err)
		}

		failures := 0
		for _, path := range paths {
			// Don't re-release earlier outputs picked up by the crawl.
			if strings.HasSuffix(path, "-student.ipynb") || strings.HasSuffix(path, "-teacher.ipynb") {
				continue
			}

			nb, err := notebook.Read(path)
			if err != nil {
				fmt.Printf("⚠️  %v\n", err)
				failures++
				continue
			}

			if variant == "student" {
				nb.Cells = release.Student(nb.Cells)
			} else {
				nb.Cells = release.Teacher(nb.Cells)
			}

			out := strings.TrimSuffix(path, ".ipynb") + "-" + variant + ".ipynb"
			if _, err := nb.Write(out); err != nil {
				fmt.Printf("⚠️  %v\n", err)
				failures++
				continue
			}
			fmt.Printf("📓 %s → %s\n", path, out)
		}

		if failures > 0 {
			os.Exit(1)
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Re-process notebooks whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if len(args) == 0 {
			args = []string{"."}
		}

		numberer := heading.NewNumberer(cfg.Number.Separator)
		builder := toc.NewBuilder()

		w, err := watcher.New(func(path string) error {
			_, changed, err := processNotebook(path, numberer, builder, cfg.Number.StartAt, cfg.Contents.Enabled)
			if err != nil {
				return err
			}
			if changed {
				fmt.Printf("📓 %s updated\n", path)
			}
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to create watcher: %v", err)
		}
		defer w.Close()

		for _, dir := range args {
			if err := w.Add(dir); err != nil {
				log.Fatalf("Failed to watch %s: %v", dir, err)
			}
		}

		fmt.Printf("👀 Watching %s for notebook changes...\n", strings.Join(args, ", "))
		if err := w.Run(context.Background()); err != nil && err != context.Canceled {
			log.Fatalf("Watcher failed: %v", err)
		}
	},
}
