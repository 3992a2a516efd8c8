package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "argstate.dev/pkg/argstate/internal/model"
)

var indexTargetFlag string
var indexBuildContextFlag string

// indexCmd represents the index command.
var indexCmd = newIndexCmd()

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List indexed translation units per sub-directory",
		Long:  indexLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := m.Path(indexTargetFlag)

			buildContext := m.Path(indexBuildContextFlag)
			if buildContext == "" {
				buildContext = target
			}

			index, err := indexer.BuildIndex(cmd.Context(), target, buildContext)
			if err != nil {
				return err
			}

			return selectUI().DisplayIndex(cmd.Context(), index)
		},
	}

	configureIndexFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func configureIndexFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&indexTargetFlag, targetFlagName, "t", viper.GetString(targetConfigKey), "root of the target project")
	cmd.Flags().StringVar(&indexBuildContextFlag, buildContextFlagName, viper.GetString(buildContextKey), "directory holding compile_commands.json (defaults to the target root)")
}
