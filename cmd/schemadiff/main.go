// Command schemadiff diffs two JSON or YAML documents under a JSON Schema
// and prints the resulting patch.
//
// Usage:
//
//	schemadiff -schema schema.json -old old.json -new new.json
//	schemadiff -schema schema.json -old a.yaml -new b.yaml -yaml \
//	    -primary-key /envs/*/services=id -partial /envs/0/services
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	schemadiff "github.com/kaptinlin/schemadiff"
)

type keyOverrides map[string]string

func (k keyOverrides) String() string {
	parts := make([]string, 0, len(k))
	for path, field := range k {
		parts = append(parts, path+"="+field)
	}
	return strings.Join(parts, ",")
}

func (k keyOverrides) Set(value string) error {
	path, field, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected path=field, got %q", value)
	}
	k[path] = field
	return nil
}

var (
	schemaFile = flag.String("schema", "", "JSON Schema file driving array matching")
	oldFile    = flag.String("old", "", "Old document")
	newFile    = flag.String("new", "", "New document")
	useYAML    = flag.Bool("yaml", false, "Parse documents as YAML")
	noExplain  = flag.Bool("no-explanations", false, "Omit explanation text")
	locale     = flag.String("locale", "en", "Locale for explanations")
	basePath   = flag.String("base-path", "", "Prefix stripped from plan keys")
	partial    = flag.String("partial", "", "Comma-separated partial diff keys")
	verbose    = flag.Bool("verbose", false, "Collect performance telemetry and enable debug logging")
	report     = flag.String("report", "", "Write a performance report to this file")
)

func main() {
	overrides := make(keyOverrides)
	flag.Var(overrides, "primary-key", "Primary key override, path=field (repeatable)")
	flag.Parse()

	if *schemaFile == "" || *oldFile == "" || *newFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(overrides); err != nil {
		fmt.Fprintln(os.Stderr, "schemadiff:", err)
		os.Exit(1)
	}
}

func run(overrides keyOverrides) error {
	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	schemaJSON, err := os.ReadFile(*schemaFile)
	if err != nil {
		return err
	}
	oldText, err := os.ReadFile(*oldFile)
	if err != nil {
		return err
	}
	newText, err := os.ReadFile(*newFile)
	if err != nil {
		return err
	}

	planner := schemadiff.NewPlanner().
		WithPrimaryKeyMap(map[string]string(overrides)).
		WithLogger(logger)
	if *basePath != "" {
		planner.WithBasePath(*basePath)
	}
	plan, err := planner.Compile(schemaJSON)
	if err != nil {
		return err
	}

	patcher := schemadiff.NewPatcher(plan).WithLogger(logger)
	if *useYAML {
		patcher.WithParser(schemadiff.NewYAMLParser())
	}
	if *noExplain {
		patcher.WithExplainer(schemadiff.NewNoopExplainer())
	} else if *locale != "en" {
		patcher.WithExplainer(schemadiff.NewLocalizedExplainer(*locale))
	}
	if *partial != "" {
		patcher.WithPartialDiffKeys(strings.Split(*partial, ",")...)
	}
	if *verbose || *report != "" {
		patcher.WithVerbose()
	}

	patch, err := patcher.Diff(oldText, newText)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(patch.Operations, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if *report != "" {
		if err := patcher.Telemetry().SavePerformanceReport(*report); err != nil {
			return err
		}
		logger.Info("performance report written", zap.String("path", *report))
	}
	return nil
}
