package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/javamodel/inputreader"
)

// app carries what the subcommands share once the root command has read
// flags, environment and config file.
type app struct {
	fs      afero.Fs
	v       *viper.Viper
	reader  *inputreader.Reader
	verbose int
	logFile string
	cfgFile string
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, v: viper.New()}

	rootCmd := &cobra.Command{
		Use:          "javamodel",
		Short:        "Turn Java sources and class files into template models",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.verbose, "verbose", "v", "log more (repeatable)")
	flags.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file")
	flags.StringSlice("classpath", nil, "class directories and jars, separated by commas or the OS list separator")
	flags.String("encoding", inputreader.DefaultEncoding, "charset of .java files")
	flags.StringArray("exclude", nil, "doublestar pattern of paths to skip while scanning (repeatable)")

	for _, key := range []string{"classpath", "encoding", "exclude"} {
		if err := a.v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(err)
		}
	}
	a.v.SetDefault("encoding", inputreader.DefaultEncoding)
	a.v.SetEnvPrefix("JAVAMODEL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(newModelCmd(a))
	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newMethodsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (a *app) init() error {
	var logFile *string
	if a.logFile != "" {
		logFile = &a.logFile
	}
	commonlog.Configure(a.verbose, logFile)

	if a.cfgFile != "" {
		a.v.SetFs(a.fs)
		a.v.SetConfigFile(a.cfgFile)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", a.cfgFile, err)
		}
	}

	cfg := inputreader.DefaultConfig()
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ClassPath = splitClassPath(cfg.ClassPath)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.reader = inputreader.NewReader(a.fs, cfg)
	return nil
}

// splitClassPath expands entries joined with the OS list separator, as
// given in JAVAMODEL_CLASSPATH or a single --classpath value.
func splitClassPath(entries []string) []string {
	var out []string
	for _, entry := range entries {
		for _, p := range filepath.SplitList(entry) {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
