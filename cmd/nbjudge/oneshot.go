package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/criyle/go-nbjudge/cmd/nbjudge/config"
	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/notebook"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
	"go.uber.org/zap"
)

var errNoSpecDir = errors.New("assignment requires a specification dir")

// gradeOnce grades the configured notebook, prints the report to out and
// writes the json result to the output file. Any graded outcome, including
// error results, returns nil.
func gradeOnce(conf *config.Config, out io.Writer) error {
	exec, err := loadExecution(conf)
	if err != nil {
		return err
	}
	spec, err := loadSpec(conf)
	if err != nil {
		return err
	}
	for _, w := range specWarnings(spec) {
		logger.Warn("specification", zap.String("warning", w))
	}

	rt := worker.Grade(&worker.Request{
		RequestID: conf.Notebook,
		Execution: exec,
		Spec:      spec,
	})
	gradeObserve(rt)
	score, passed := rt.Result.Verdict()
	logger.Info("Graded",
		zap.String("notebook", conf.Notebook),
		zap.Float64("score", score),
		zap.Bool("passed", passed),
		zap.Duration("time", rt.Time))

	if _, err := fmt.Fprintln(out, rt.Report); err != nil {
		return err
	}
	if conf.Output == "" {
		return nil
	}
	b, err := json.MarshalIndent(rt.Result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(conf.Output, append(b, '\n'), 0o644)
}

func loadExecution(conf *config.Config) (notebook.Execution, error) {
	if conf.ExecutionError != "" {
		return notebook.ExecutionFailed(conf.ExecutionError), nil
	}
	f, err := os.Open(conf.Notebook)
	if err != nil {
		return notebook.Execution{}, err
	}
	defer f.Close()

	a, err := notebook.Read(f)
	if err != nil {
		return notebook.Execution{}, fmt.Errorf("%s: %w", conf.Notebook, err)
	}
	return notebook.Executed(a), nil
}

// loadSpec returns nil when no expected output is configured
func loadSpec(conf *config.Config) (*grader.Spec, error) {
	switch {
	case conf.Expected != "":
		return store.LoadSpecFile(conf.Expected)
	case conf.Assignment != "":
		if conf.Dir == "" {
			return nil, errNoSpecDir
		}
		e, err := store.NewLocalStore(conf.Dir).Get(conf.Assignment)
		if err != nil {
			return nil, fmt.Errorf("assignment %q: %w", conf.Assignment, err)
		}
		return e.Spec, nil
	default:
		return nil, nil
	}
}

func specWarnings(s *grader.Spec) []string {
	if s == nil {
		return nil
	}
	return s.Warnings
}
