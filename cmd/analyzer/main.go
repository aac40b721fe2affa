package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"reviewpulse/internal/adapters/insight"
	"reviewpulse/internal/adapters/observability"
	"reviewpulse/internal/app"
	"reviewpulse/internal/shared"
)

func main() {
	var (
		text    = flag.String("text", "", "analyze a single review text")
		file    = flag.String("file", "", "analyze one review per line from a text file")
		csvPath = flag.String("csv", "", "upload a CSV batch (column 'text', optional 'rating')")
		source  = flag.String("source", "manual", "source tag recorded on created reviews")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)

	client, err := insight.New(insight.Config{
		BaseURL: cfg.InsightBase,
		APIKey:  cfg.InsightKey,
		RPS:     cfg.InsightRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize insight client")
	}

	switch {
	case *text != "":
		analyzeOne(ctx, client, *text, *source)

	case *csvPath != "":
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *csvPath).Msg("open csv failed")
		}
		defer f.Close()
		rc, err := app.UploadBatch(ctx, client, *csvPath, f)
		if err != nil {
			log.Fatal().Err(err).Msg("batch upload failed")
		}
		log.Info().Int("accepted", rc.Accepted).Bool("success", rc.Success).Msg("batch uploaded")

	case *file != "":
		analyzeFile(ctx, client, *file, *source, cfg.Workers)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func analyzeOne(ctx context.Context, client *insight.Client, text, source string) {
	p, err := app.NewPipeline(client, app.WithProgress(func(state string, percent int) {
		log.Debug().Str("state", state).Int("percent", percent).Msg("pipeline progress")
	}))
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline init failed")
	}
	out, err := p.Run(ctx, text, source)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}
	ev := log.Info().
		Int64("review_id", out.Review.ID).
		Int("aspects", len(out.Aspects))
	if out.Sentiment != nil {
		ev = ev.Str("label", string(out.Sentiment.Label)).Float64("score", out.Sentiment.Score)
	}
	if out.Summary != nil {
		ev = ev.Str("summary", out.Summary.Text)
	}
	ev.Msg("analysis done")
}

// analyzeFile runs one pipeline per non-empty line, a bounded number at a time.
func analyzeFile(ctx context.Context, client *insight.Client, path, source string, workers int) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("open file failed")
	}
	defer f.Close()

	if workers <= 0 {
		workers = 4
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var ok, failed int
	var mu sync.Mutex

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(line int, text string) {
			defer wg.Done()
			defer sem.Release(1)

			p, err := app.NewPipeline(client)
			if err != nil {
				log.Error().Err(err).Msg("pipeline init failed")
				return
			}
			out, err := p.Run(ctx, text, source)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				log.Warn().Int("line", line).Err(err).Msg("analysis failed")
				return
			}
			ok++
			log.Info().Int("line", line).Int64("review_id", out.Review.ID).Msg("analysis ok")
		}(line, text)
	}
	if err := sc.Err(); err != nil {
		log.Fatal().Err(err).Msg("read file failed")
	}

	wg.Wait()
	log.Info().Int("ok", ok).Int("failed", failed).Msg("file analysis completed")
}
