// logostage — клиент конвейера: принимает локальные файлы и/или URL уже
// сохраненных логотипов, загружает новые в хранилище через шлюз и
// последовательно запрашивает генерацию вариантов, печатая результаты по
// мере готовности.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"logostage/internal/dispatch"
	"logostage/internal/model"
	"logostage/internal/pipeline"
	"logostage/internal/results"
	"logostage/internal/uploader"
)

var (
	gatewayURL = flag.String("g", "http://localhost:8080", "Gateway base URL.")
	webhookURL = flag.String("w", "https://n8n.limon.dev/webhook/final-variant", "Generation webhook URL.")
	statusFile = flag.String("s", "", "Save final records to file as JSON, use '-' for stdout.")
	verbose    = flag.Bool("v", false, "Enable debug logging.")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "image files or URLs required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	setupLogger()

	items, err := collectItems(args)
	if err != nil {
		log.Fatalln(err)
	}

	store := results.New()
	p := pipeline.New(store,
		uploader.New(*gatewayURL, nil),
		dispatch.New(*webhookURL, nil),
	)

	onProgress := func(pct int) {
		fmt.Fprintf(os.Stderr, "upload %d%%\n", pct)
	}
	onResult := func(out model.Outcome) {
		if out.Success {
			fmt.Printf("%s: %d versions\n", out.Filename, len(out.Versions))
			return
		}
		fmt.Printf("%s: FAILED: %s\n", out.Filename, out.ErrorMsg)
	}

	if err := p.Run(context.Background(), items, onProgress, onResult); err != nil {
		log.Fatalln(err)
	}

	if *statusFile != "" {
		buf, _ := json.MarshalIndent(store.Snapshot(), "", "    ")
		if *statusFile == "-" {
			os.Stdout.Write(buf)
			fmt.Println()
		} else if err := os.WriteFile(*statusFile, buf, 0666); err != nil {
			log.Fatalf("write status failed: %v", err)
		}
	}
}

// collectItems строит партию: аргументы с http(s)-схемой считаются уже
// сохраненными в хранилище, остальные читаются как локальные файлы.
func collectItems(args []string) ([]model.BatchItem, error) {
	items := make([]model.BatchItem, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			u, err := url.Parse(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid url %q: %v", arg, err)
			}
			items = append(items, model.RemoteItem{
				Name: path.Base(u.Path),
				URL:  arg,
			})
			continue
		}

		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, fmt.Errorf("read file failed: %v", err)
		}
		items = append(items, model.LocalItem{
			Name: path.Base(arg),
			Data: data,
		})
	}
	return items, nil
}

func setupLogger() {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr,
		&slog.HandlerOptions{Level: level},
	)))
}
