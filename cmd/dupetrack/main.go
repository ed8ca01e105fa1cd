package main

import (
	"fmt"
	"io"
	"os"

	"dupetrack/internal/audit"
	"dupetrack/internal/config"
	"dupetrack/internal/logging"
	"dupetrack/internal/metadata"
	"dupetrack/internal/resolver"
	"dupetrack/internal/scanner"

	"github.com/spf13/cobra"
)

type options struct {
	configPath   string
	envFile      string
	auditFile    string
	scanErrors   string
	deleteErrors string
	extensions   []string
	logLevel     string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dupetrack [flags] <directory>",
		Short: "Find copies of the same track and choose which one to keep",
		Long: "Scans a directory tree for audio files, groups files with the same track number, " +
			"title, album and artist, and asks which copy of each group to keep. Every deleted " +
			"file is recorded in an audit file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				fmt.Fprintln(cmd.OutOrStdout(), "Please provide a directory path as an argument.")
				return cmd.Usage()
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "TOML config file (created with defaults if missing)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with DUPETRACK_* overrides")
	flags.StringVar(&opts.auditFile, "audit-file", "", "file that records every deletion")
	flags.StringVar(&opts.scanErrors, "scan-errors", "", "what to do on unreadable directories: abort, skip, or collect")
	flags.StringVar(&opts.deleteErrors, "delete-errors", "", "what to do when a delete fails: abort, skip, or collect")
	flags.StringSliceVar(&opts.extensions, "ext", nil, "audio extension to scan, case-sensitive (repeatable)")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, or error")

	return cmd
}

// loadConfig layers defaults, the config file, the environment and flags,
// in increasing order of precedence.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("error loading configuration: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(opts.envFile); err != nil {
		return nil, fmt.Errorf("error applying environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("audit-file") {
		cfg.Resolve.AuditFile = opts.auditFile
	}
	if flags.Changed("scan-errors") {
		cfg.Scan.ErrorPolicy = opts.scanErrors
	}
	if flags.Changed("delete-errors") {
		cfg.Resolve.ErrorPolicy = opts.deleteErrors
	}
	if flags.Changed("ext") {
		cfg.Scan.Extensions = opts.extensions
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run scans root and resolves its duplicate groups. The audit log is
// closed on every return path, including an aborted resolution.
func run(cfg *config.Config, root string, in io.Reader, out io.Writer) error {
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()
	logging.AddRunID(logger)

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot read directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	reader := metadata.NewReader(logger)
	sc := scanner.NewScanner(reader, cfg.Scan.Extensions, cfg.ScanPolicy(), logger)

	result, err := sc.Scan(root)
	if err != nil {
		logger.WithError(err).Error("Scan aborted")
		return err
	}
	if err := result.Err(); err != nil {
		logger.WithError(err).Warn("Scan finished with errors")
	}

	duplicates := result.Groups.Duplicates()
	resolver.PrintDuplicates(out, duplicates)
	if len(duplicates) == 0 {
		fmt.Fprintln(out, "No duplicate tracks found.")
	}

	auditLog, err := audit.Open(cfg.Resolve.AuditFile)
	if err != nil {
		return err
	}
	defer auditLog.Close()

	r := resolver.NewResolver(in, out, auditLog, cfg.DeletePolicy(), logger)
	report, err := r.Resolve(duplicates)
	if report != nil {
		report.Print(out)
	}
	if err != nil {
		logger.WithError(err).Error("Resolution aborted")
		return err
	}

	logger.WithField("audit_file", auditLog.Path()).WithField("deleted", auditLog.Count()).Info("Done")
	return nil
}
