package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/rlch/javacomplete/oracle"
)

var ErrCheckFailed = errors.New("model check failed")

func checkModelCommand() *cli.Command {
	return &cli.Command{
		Name:      "check-model",
		Usage:     "Load and validate type model files",
		ArgsUsage: "[models...]",
		Action:    runCheckModel,
	}
}

func runCheckModel(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return checkModel(os.Stdout, "<builtin>", oracle.Builtin(), nil)
	}

	failed := 0

	for _, path := range args {
		m, err := oracle.LoadModelFile(path)
		if checkModel(os.Stdout, path, m, err) != nil {
			failed++
		}
	}

	if failed > 0 {
		return errors.Wrapf(ErrCheckFailed, "%d of %d files", failed, len(args))
	}

	return nil
}

// checkModel reports one model's load result on w.
func checkModel(w io.Writer, path string, m *oracle.Model, err error) error {
	styles := DefaultStyles()

	var verr *oracle.ValidationError

	switch {
	case errors.As(err, &verr):
		fmt.Fprintf(w, "%s %s: %d problems\n", styles.Error.Render("✗"), path, len(verr.Problems))

		for _, p := range verr.Problems {
			fmt.Fprintf(w, "    %s\n", p)
		}

		return err
	case err != nil:
		fmt.Fprintf(w, "%s %s: %v\n", styles.Error.Render("✗"), path, err)

		return err
	}

	fmt.Fprintf(w, "%s %s: %d types, %d files\n",
		styles.Variable.Bold(true).Render("✓"), path, len(m.Types()), len(m.Files()))

	return nil
}
