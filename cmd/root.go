// Package cmd provides the root command and CLI setup for argstate.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"argstate.dev/pkg/argstate/internal/adapter"
	"argstate.dev/pkg/argstate/internal/controller"
	"argstate.dev/pkg/argstate/internal/domain"
)

var compileDB adapter.CompileDB
var worklistLoader adapter.WorklistLoader
var artifactStore adapter.ArtifactStore
var engine adapter.AnalysisEngine
var indexer domain.Indexer
var invoker domain.Invoker
var pipeline domain.Pipeline
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that write artifacts.
var outputDirFlag string

// quietFlag suppresses per-translation-unit engine diagnostics when set.
var quietFlag bool

// verboseFlag raises the log level to debug.
var verboseFlag bool

// plainFlag forces the non-interactive frontend even on a terminal.
var plainFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	compileDB = adapter.NewLocalCompileDB()
	worklistLoader = adapter.NewFileWorklistLoader()
	artifactStore = adapter.NewLocalArtifactStore()
	engine = adapter.NewTreeSitterEngine()
	indexer = domain.NewIndexer(compileDB)
	invoker = domain.NewInvoker(engine, artifactStore, os.Stderr)
	pipeline = domain.NewPipeline(
		indexer,
		invoker,
		artifactStore,
		worklistLoader,
		ui,
	)
}

const rootLongDescription = `Argstate extracts the concrete states that call-site arguments of
library functions can take across a C code base. Point it at a project
with a compile_commands.json, give it a list of changed symbols, and it
writes one argument-state artifact per symbol for downstream impact
assessment.`

const runLongDescription = `Run argument-state extraction for every symbol in the worklist against
the translation units recorded under one source sub-directory.`

const indexLongDescription = `Build the translation-unit index from compile_commands.json and list
the sub-directories it covers.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "argstate",
		Short: "Argument-state extraction for C libraries",
		Long:  rootLongDescription,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configLoadErr != nil {
				return configLoadErr
			}

			configureLogger("", verboseFlag || viper.GetBool(logVerboseKey))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for argument-state artifacts",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&quietFlag, quietFlagName, "q", viper.GetBool(quietFlagName), "suppress per-translation-unit engine diagnostics")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(quietFlagName), quietFlagName)

	cmd.PersistentFlags().BoolVar(&verboseFlag, verboseFlagName, viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().BoolVar(&plainFlag, plainFlagName, false, "disable the interactive progress display")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// selectUI honors --plain by swapping in the non-interactive frontend.
func selectUI() controller.UI {
	if plainFlag {
		return controller.NewSimpleUI(rootCmd)
	}

	return ui
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
