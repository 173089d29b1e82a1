package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyungsein/shorts-automation/pkg/adapter"
	"github.com/hyungsein/shorts-automation/pkg/agents"
	"github.com/hyungsein/shorts-automation/pkg/archive"
	"github.com/hyungsein/shorts-automation/pkg/artifact"
	"github.com/hyungsein/shorts-automation/pkg/config"
	"github.com/hyungsein/shorts-automation/pkg/evidence"
	"github.com/hyungsein/shorts-automation/pkg/gate"
	"github.com/hyungsein/shorts-automation/pkg/pipeline"
	"github.com/hyungsein/shorts-automation/pkg/router"
	"github.com/hyungsein/shorts-automation/pkg/upload"
)

var routesFile string

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "shorts",
		Short: "Supervised short-form video generation pipeline",
		Long: `Shorts discovers trending topics, writes scripts, synthesizes images and
narration, and assembles vertical videos. An LLM quality reviewer gates
every stage and rejected work is retried with the reviewer's feedback.`,
	}

	rootCmd.PersistentFlags().StringVar(&routesFile, "routes", "", "path to routing table file")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(routesCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	var typeFlag string
	var countFlag int
	var strictFlag bool
	var fastFlag bool
	var noImagesFlag bool
	var uploadFlag bool
	var seedFlag int64
	var retriesFlag int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one or more shorts end to end",
		Long: `Runs the full pipeline for each requested item: discovery, writing,
imaging (unless skipped), narration and assembly. The quality reviewer
scores every stage output 1-10; rejected attempts are retried with the
reviewer's feedback folded into the next prompt.

Strict mode (the default) requires a score of 7 or higher to progress.
Fast mode also accepts scores of 5-6, trading quality for throughput.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strictFlag && fastFlag {
				return fmt.Errorf("--strict and --fast are mutually exclusive")
			}
			strict := !fastFlag

			contentType, err := pipeline.ParseContentType(typeFlag)
			if err != nil {
				return err
			}
			if countFlag < 1 {
				return fmt.Errorf("--count must be at least 1")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			table, err := loadRoutes()
			if err != nil {
				return err
			}
			route := table.Resolve(contentType)

			retries := retriesFlag
			if retries < 0 {
				retries = cfg.MaxRetries
			}

			stages := pipeline.DefaultStages(!noImagesFlag && route.WithImages)
			maxRetries := make(map[pipeline.StageKind]int, len(stages))
			for _, kind := range stages {
				maxRetries[kind] = retries
			}
			spec := &pipeline.Spec{
				ContentType:  contentType,
				Strict:       strict,
				Count:        countFlag,
				Stages:       stages,
				MaxRetries:   maxRetries,
				StageTimeout: cfg.StageTimeout,
				Seed:         seedFlag,
			}

			// Items run concurrently but independently: one aborting
			// does not cancel its siblings.
			outcomes := make([]pipeline.Outcome, spec.Items())
			errs := make([]error, spec.Items())
			var g errgroup.Group
			ctx := cmd.Context()
			for i := 0; i < spec.Items(); i++ {
				g.Go(func() error {
					outcomes[i], errs[i] = runOne(ctx, cfg, route, spec, uploadFlag)
					return nil
				})
			}
			_ = g.Wait()

			aborted := 0
			for i, outcome := range outcomes {
				if outcome == pipeline.OutcomeAborted {
					aborted++
					if errs[i] != nil {
						log.Printf("[item %d] aborted: %v", i+1, errs[i])
					}
				}
			}
			if aborted > 0 {
				return fmt.Errorf("%d of %d items aborted", aborted, spec.Items())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", string(pipeline.ContentStory),
		"content type (story-from-source, horror-story, facts, motivational)")
	cmd.Flags().IntVar(&countFlag, "count", 1, "number of shorts to generate")
	cmd.Flags().BoolVar(&strictFlag, "strict", false, "require score >= 7 at every stage (default)")
	cmd.Flags().BoolVar(&fastFlag, "fast", false, "also accept scores of 5-6")
	cmd.Flags().BoolVar(&noImagesFlag, "no-images", false, "skip image synthesis, render audio over a plain background")
	cmd.Flags().BoolVar(&uploadFlag, "upload", false, "upload accepted videos to YouTube")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "image synthesis seed for reproducible runs")
	cmd.Flags().IntVar(&retriesFlag, "retries", -1, "max retries per stage (-1 uses the configured default)")

	return cmd
}

// runOne drives the pipeline for a single item and persists its audit
// records. A non-nil error means the run aborted. Each item gets a fresh
// agent registry so attempt counters and topic used-sets stay run-scoped.
func runOne(ctx context.Context, cfg *config.Config, route router.Route, spec *pipeline.Spec, uploadVideo bool) (pipeline.Outcome, error) {
	llm, err := pickAdapter(cfg, route)
	if err != nil {
		return pipeline.OutcomeAborted, err
	}

	store, err := archive.NewStore(cfg.OutputDir)
	if err != nil {
		return pipeline.OutcomeAborted, fmt.Errorf("media store: %w", err)
	}

	executors, err := buildExecutors(cfg, route, spec, llm, store)
	if err != nil {
		return pipeline.OutcomeAborted, err
	}

	reviewer, err := gate.NewReviewer(llm, route.Model, gate.WithLogger(log.Printf))
	if err != nil {
		return pipeline.OutcomeAborted, fmt.Errorf("reviewer: %w", err)
	}

	orch, err := pipeline.New(executors, reviewer, pipeline.WithLogger(log.Printf))
	if err != nil {
		return pipeline.OutcomeAborted, err
	}

	result, runErr := orch.Run(ctx, spec)
	if result != nil {
		persistRecords(cfg, result, runErr)
	}
	if runErr != nil {
		return pipeline.OutcomeAborted, runErr
	}

	outcome := result.Outcome()
	if outcome == pipeline.OutcomeExhausted {
		log.Printf("[run %s] retries exhausted, no video produced", result.RunID)
		return outcome, nil
	}

	final := result.Final()
	if final != nil && final.Payload.Video != nil {
		log.Printf("[run %s] video ready: %s", result.RunID, final.Payload.Video.Path)
		if uploadVideo {
			if err := uploadFinal(ctx, cfg, final.Payload.Video); err != nil {
				return pipeline.OutcomeAborted, err
			}
		}
	}
	return outcome, nil
}

func buildExecutors(cfg *config.Config, route router.Route, spec *pipeline.Spec, llm adapter.Adapter, store *archive.Store) (map[pipeline.StageKind]pipeline.Executor, error) {
	source, err := agents.NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUsername, cfg.RedditPassword)
	if err != nil {
		return nil, err
	}
	trend, err := agents.NewTrendAgent(source, spec.ContentType, route.Subreddits, agents.WithTrendLogger(log.Printf))
	if err != nil {
		return nil, err
	}
	script, err := agents.NewScriptAgent(llm, route.Model, agents.WithScriptLogger(log.Printf))
	if err != nil {
		return nil, err
	}

	var image *agents.ImageAgent
	if stageActive(spec, pipeline.StageImaging) {
		image, err = agents.NewImageAgent(store, route.ImageStyle, spec.Seed, agents.WithImageLogger(log.Printf))
		if err != nil {
			return nil, err
		}
	}

	voice, err := agents.NewVoiceAgent(cfg.ElevenLabsAPIKey, route.Voice, store, agents.WithVoiceLogger(log.Printf))
	if err != nil {
		return nil, err
	}
	video, err := agents.NewVideoAgent(store,
		agents.WithVideoLogger(log.Printf),
		agents.WithMetadataModel(llm, route.Model))
	if err != nil {
		return nil, err
	}

	return agents.Registry(trend, script, image, voice, video), nil
}

func stageActive(spec *pipeline.Spec, kind pipeline.StageKind) bool {
	for _, k := range spec.Stages {
		if k == kind {
			return true
		}
	}
	return false
}

// pickAdapter resolves the route's adapter against the configured API keys,
// falling back to any available provider.
func pickAdapter(cfg *config.Config, route router.Route) (adapter.Adapter, error) {
	adapters, err := createAdapters(cfg)
	if err != nil {
		return nil, err
	}

	if a, ok := adapters[route.Adapter]; ok {
		return a, nil
	}
	for _, name := range []string{"anthropic", "openai", "google"} {
		if a, ok := adapters[name]; ok {
			log.Printf("[config] adapter %q not configured, using %s", route.Adapter, name)
			return a, nil
		}
	}
	return nil, fmt.Errorf("no LLM adapter configured; set ANTHROPIC_API_KEY, OPENAI_API_KEY or GOOGLE_API_KEY")
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = a
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}

func persistRecords(cfg *config.Config, result *pipeline.RunResult, runErr error) {
	w, err := evidence.NewWriter(cfg.RecordsDir, result.RunID)
	if err != nil {
		log.Printf("[records] writer failed: %v", err)
		return
	}
	if err := evidence.Record(w, result); err != nil {
		log.Printf("[records] persist failed: %v", err)
		return
	}
	if runErr != nil {
		_ = w.WriteRun(evidence.RunRecord{
			ID:          result.RunID,
			Timestamp:   result.StartedAt,
			ContentType: string(result.ContentType),
			Strict:      result.Strict,
			Outcome:     string(result.Outcome()),
			Error:       runErr.Error(),
		})
	}
	log.Printf("[records] run %s persisted to %s", result.RunID, w.RunDir())
}

func uploadFinal(ctx context.Context, cfg *config.Config, video *artifact.VideoRef) error {
	uploader, err := upload.New(ctx, cfg.YouTubeCredentials, cfg.YouTubeToken, upload.WithLogger(log.Printf))
	if err != nil {
		return fmt.Errorf("youtube uploader: %w", err)
	}
	result, err := uploader.Upload(ctx, video)
	if err != nil {
		return fmt.Errorf("youtube upload: %w", err)
	}
	log.Printf("[upload] published: %s", result.URL)
	return nil
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Show the content routing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRoutes()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CONTENT TYPE\tADAPTER\tVOICE\tIMAGES\tSUBREDDITS")

			var types []string
			for ct := range table.Routes {
				types = append(types, string(ct))
			}
			sort.Strings(types)

			for _, ct := range types {
				route := table.Routes[pipeline.ContentType(ct)]
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n",
					ct, route.Adapter, route.Voice, route.WithImages,
					strings.Join(route.Subreddits, ", "))
			}

			fmt.Fprintln(w)
			fmt.Fprintf(w, "DEFAULT\t%s\t%s\t%v\t-\n",
				table.Default.Adapter, table.Default.Voice, table.Default.WithImages)

			return w.Flush()
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SETTING\tVALUE")
			fmt.Fprintf(w, "config dir\t%s\n", cfg.ConfigDir)
			fmt.Fprintf(w, "output dir\t%s\n", cfg.OutputDir)
			fmt.Fprintf(w, "records dir\t%s\n", cfg.RecordsDir)
			fmt.Fprintf(w, "max retries\t%d\n", cfg.MaxRetries)
			fmt.Fprintf(w, "stage timeout\t%s\n", cfg.StageTimeout)
			fmt.Fprintf(w, "anthropic\t%s\n", keyStatus(cfg.HasAdapter("anthropic")))
			fmt.Fprintf(w, "openai\t%s\n", keyStatus(cfg.HasAdapter("openai")))
			fmt.Fprintf(w, "google\t%s\n", keyStatus(cfg.HasAdapter("google")))
			fmt.Fprintf(w, "elevenlabs\t%s\n", keyStatus(cfg.HasNarration()))
			fmt.Fprintf(w, "reddit\t%s\n", keyStatus(cfg.HasReddit()))
			return w.Flush()
		},
	}
}

func keyStatus(ok bool) string {
	if ok {
		return "ready"
	}
	return "no key"
}

func loadRoutes() (*router.Table, error) {
	if routesFile != "" {
		return router.Load(routesFile)
	}
	return router.DefaultTable(), nil
}
