package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"argstate.dev/pkg/argstate/internal/controller"
	"argstate.dev/pkg/argstate/internal/domain"
	m "argstate.dev/pkg/argstate/internal/model"
)

var runParallelFlag int
var runTargetFlag string
var runBuildContextFlag string
var runSubdirFlag string
var runSymbolsFlag string
var runIncludeFlags []string
var runDefineFlags []string
var runExtendedFlag bool
var runResumeFlag bool
var runTimeoutFlag time.Duration

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run argument-state extraction",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := &m.RunConfig{
				Target:       m.Path(viper.GetString(targetConfigKey)),
				BuildContext: m.Path(viper.GetString(buildContextKey)),
				Subdir:       m.Path(runSubdirFlag),
				SymbolList:   m.Path(runSymbolsFlag),
				Output:       m.Path(viper.GetString(outputFlagName)),
				IncludePaths: viper.GetStringSlice(includeConfigKey),
				Defines:      viper.GetStringSlice(defineConfigKey),
				Quiet:        viper.GetBool(quietFlagName),
				Extended:     runExtendedFlag,
				Resume:       runResumeFlag,
				Threads:      viper.GetInt(runParallelConfigKey),
				Timeout:      viper.GetDuration(runTimeoutConfigKey),
			}

			p := pipeline
			if plainFlag {
				p = domain.NewPipeline(indexer, invoker, artifactStore, worklistLoader, controller.NewSimpleUI(rootCmd))
			}

			// Per-symbol failures land in the summary; only phase errors
			// surface here.
			_, err := p.Run(ctx, cfg)

			return err
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runTargetFlag, targetFlagName, "t", viper.GetString(targetConfigKey), "root of the target project")
	bindFlagToConfig(cmd.Flags().Lookup(targetFlagName), targetConfigKey)

	cmd.Flags().StringVar(&runBuildContextFlag, buildContextFlagName, viper.GetString(buildContextKey), "directory holding compile_commands.json (defaults to the target root)")
	bindFlagToConfig(cmd.Flags().Lookup(buildContextFlagName), buildContextKey)

	cmd.Flags().StringVarP(&runSubdirFlag, subdirFlagName, "d", "", "source sub-directory whose translation units are analyzed")
	cmd.Flags().StringVarP(&runSymbolsFlag, symbolsFlagName, "s", "", "file listing one symbol per line")

	cmd.Flags().IntVarP(&runParallelFlag, parallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of parallel symbol invocations")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), runParallelConfigKey)

	cmd.Flags().DurationVar(&runTimeoutFlag, timeoutFlagName, viper.GetDuration(runTimeoutConfigKey), "per-symbol analysis timeout (0 disables)")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), runTimeoutConfigKey)

	cmd.Flags().StringArrayVarP(&runIncludeFlags, includeFlagName, "I", viper.GetStringSlice(includeConfigKey), "extra include path appended to every translation unit (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(includeFlagName), includeConfigKey)

	cmd.Flags().StringArrayVarP(&runDefineFlags, defineFlagName, "D", viper.GetStringSlice(defineConfigKey), "extra preprocessor define appended to every translation unit (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(defineFlagName), defineConfigKey)

	cmd.Flags().BoolVar(&runExtendedFlag, extendedFlagName, false, "resolve identifier arguments to their assigned values (writes *_setx artifacts)")
	cmd.Flags().BoolVar(&runResumeFlag, resumeFlagName, false, "skip symbols already completed in a previous run of the same output directory")

	cobra.CheckErr(cmd.MarkFlagRequired(subdirFlagName))
	cobra.CheckErr(cmd.MarkFlagRequired(symbolsFlagName))
}
