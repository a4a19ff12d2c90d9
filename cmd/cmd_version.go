package cmd

import (
	"fmt"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/constants"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var versions = map[string]string{
	"":    constants.Version,
	"tic": tic.Version,
}

type versionCmdOptions struct {
	Modules string
}

func NewVersionCommand() *cobra.Command {
	opts := &versionCmdOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show TIC indexer version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return versionHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Modules, "module", "", `Show version of a specific module. E.g. "tic"`)

	return cmd
}

func versionHandler(opts *versionCmdOptions, _ *cobra.Command, _ []string) error {
	version, ok := versions[opts.Modules]
	if !ok {
		return errors.Wrap(errs.Unsupported, "Invalid module name")
	}
	fmt.Println(version)
	return nil
}
