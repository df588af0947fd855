package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/voici5986/lumina-layout/internal/config"
	"github.com/voici5986/lumina-layout/internal/logx"
	"github.com/voici5986/lumina-layout/internal/samples"
)

func main() {
	out := flag.String("out", config.GetEnv("SAMPLES_DIR", "tests/typesetting/samples"), "directory the fixtures are written to")
	only := flag.String("only", "", "comma separated fixture names to generate (default all)")
	level := flag.String("log-level", config.GetEnv("LOG_LEVEL", "info"), "log verbosity (all, debug, info, warn, error, fatal, none)")
	list := flag.Bool("list", false, "print fixture names and exit")
	flag.Parse()

	if *list {
		for _, n := range samples.Names() {
			fmt.Println(n)
		}
		return
	}
	logx.Configure(*level)

	var names []string
	for _, n := range strings.Split(*only, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	written, err := samples.Generate(*out, names...)
	if err != nil {
		logx.Log.Error().Err(err).Msg("generate samples")
		os.Exit(1)
	}
	logx.Log.Info().Int("files", len(written)).Str("dir", *out).Msg("samples generated")
}
