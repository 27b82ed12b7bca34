package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/javacomplete"
	"github.com/rlch/javacomplete/complete"
	"github.com/rlch/javacomplete/model"
	"github.com/rlch/javacomplete/oracle"
)

var (
	ErrNoFile    = errors.New("no file specified (use --file)")
	ErrBadCursor = errors.New("line and column are 1-based")
)

// sessionFlags are shared by the commands that run completions.
func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "type model YAML (overrides .javacomplete.yaml; default is the builtin JDK subset)",
			Sources: cli.EnvVars("JAVACOMPLETE_MODEL"),
		},
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "path of the Java file being completed",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "read the document text from this path instead of --file",
		},
		&cli.IntFlag{
			Name:  "max-items",
			Usage: "result ceiling (0 keeps the configured value)",
		},
		&cli.BoolFlag{
			Name:  "all-lowercase",
			Usage: "offer class names for lower-case prefixes",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "log engine decisions to stderr",
		},
	}
}

// session is one document opened against a type model.
type session struct {
	file   string
	text   string
	snap   *oracle.Snapshot
	config javacomplete.CompletionConfig
	logger *zap.Logger
}

func openSession(cmd *cli.Command, requireText bool) (*session, error) {
	file := cmd.String("file")
	if file == "" {
		return nil, ErrNoFile
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", file)
	}

	cfg, err := javacomplete.LoadConfig(filepath.Dir(abs))
	if err != nil {
		if !errors.Is(err, javacomplete.ErrConfigNotFound) {
			return nil, err
		}

		cfg = javacomplete.DefaultConfig()
	}

	modelPath := cmd.String("model")
	if modelPath == "" {
		modelPath = cfg.ModelFor(abs)
	}

	m := oracle.Builtin()
	if modelPath != "" {
		m, err = oracle.LoadModelFile(modelPath)
		if err != nil {
			return nil, err
		}
	}

	text, err := readSource(cmd.String("source"), abs, requireText)
	if err != nil {
		return nil, err
	}

	completion := cfg.Completion
	if n := int(cmd.Int("max-items")); n > 0 {
		completion.MaxItems = n
	}

	if cmd.Bool("all-lowercase") {
		completion.MatchAllLowerCase = true
	}

	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return nil, err
	}

	return &session{
		file:   abs,
		text:   text,
		snap:   oracle.NewSnapshot(m).WithDocument(abs, text),
		config: completion,
		logger: logger,
	}, nil
}

func readSource(source, file string, required bool) (string, error) {
	path := source
	if path == "" {
		path = file
	}

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		return string(data), nil
	case !required && source == "" && errors.Is(err, os.ErrNotExist):
		return "", nil
	default:
		return "", errors.Wrapf(err, "read %s", path)
	}
}

// completeAt runs one completion against text with the cursor at pos.
func (s *session) completeAt(ctx context.Context, text string, pos model.Position) (complete.Query, *model.Result) {
	snap := s.snap
	if text != s.text {
		snap = snap.WithDocument(s.file, text)
	}

	q := complete.NewQuery(s.file, text, pos, complete.IsJavaCompletionChar)

	return q, complete.New(snap, s.logger, s.config).Complete(ctx, q)
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	return logger, nil
}
