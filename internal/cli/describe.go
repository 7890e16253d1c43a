package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/memoized_go/signature"
)

func (a *App) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [param...]",
		Short: "Classify a parameter list and print the memoized call surface",
		Example: `  memoctl describe req:a opt:b=10
  memoctl describe req:a rest:xs keyreq:k key:o=1 keyrest:opts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = a.cfg.Signature
			}
			params, err := signature.ParseParams(args)
			if err != nil {
				return err
			}
			sig, err := signature.Classify(params...)
			if err != nil {
				return err
			}
			shape := signature.Synthesize(sig)
			a.logger.Debug("signature classified",
				zap.Strings("params", args),
				zap.Int("arity", shape.Arity()),
			)

			fmt.Fprintf(a.stdout, "original: (%s)\n", sig)
			fmt.Fprintf(a.stdout, "memoized: (%s)\n", shape)
			fmt.Fprintf(a.stdout, "arity:    %d\n", shape.Arity())
			for _, d := range shape.Describe() {
				fmt.Fprintf(a.stdout, "  %-8s %s\n", d.Kind, d.Name)
			}
			return nil
		},
	}
}
