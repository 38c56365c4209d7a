// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This binary is the main entrypoint for the sss passphrase backup tool.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"flag"
	"github.com/alecthomas/colour"
	"github.com/codeandplay/passphrase-backup/config"
	"github.com/codeandplay/passphrase-backup/recovery"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"github.com/google/uuid"
)

// The current version, displayed via the `version` subcommand.
const sssVersion string = "0.1.0"

// streams are the console handles used by a command. Zero values mean the process
// standard streams.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func (s streams) stdin() io.Reader {
	if s.in == nil {
		return os.Stdin
	}
	return s.in
}

func (s streams) stdout() io.Writer {
	if s.out == nil {
		return os.Stdout
	}
	return s.out
}

func (s streams) stderr() io.Writer {
	if s.err == nil {
		return os.Stderr
	}
	return s.err
}

func (s streams) printer(w io.Writer, cfg *config.Config) colour.Printer {
	if !cfg.Color {
		return colour.Strip(w)
	}
	return colour.TTY(w)
}

// fail logs err and reports it on the console.
func (s streams) fail(cfg *config.Config, what string, err error) subcommands.ExitStatus {
	glog.Errorf("%s: %v", what, err.Error())
	s.printer(s.stderr(), cfg).Printf("^1%s: %s^R\n", what, hint(err))
	return subcommands.ExitFailure
}

func hint(err error) string {
	switch recovery.Classify(err) {
	case recovery.CategoryInput:
		return fmt.Sprintf("check the words you entered (%v)", err)
	case recovery.CategoryScheme:
		return fmt.Sprintf("the number of shares must be greater than the threshold (%v)", err)
	case recovery.CategoryReconstruction:
		return fmt.Sprintf("the shares do not belong together or are too few (%v)", err)
	case recovery.CategoryInternal:
		return fmt.Sprintf("internal error, please report it (%v)", err)
	default:
		return err.Error()
	}
}

func defaultConfigPath() string {
	path, err := config.DefaultPath()
	if err != nil {
		glog.Errorf("Failed to get config directory location: %v", err.Error())
		return config.DefaultName
	}
	return path
}

// loadConfig reads the config file and applies the flags set on the command line.
// The default config file may be absent, an explicitly named one may not.
func loadConfig(path string, f *flag.FlagSet, apply func(cfg *config.Config, name string)) (*config.Config, error) {
	explicit := false
	f.Visit(func(fl *flag.Flag) {
		if fl.Name == "config-file" {
			explicit = true
		}
	})
	cfg, err := config.Load(path, !explicit)
	if err != nil {
		return nil, err
	}
	f.Visit(func(fl *flag.Flag) {
		apply(cfg, fl.Name)
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readLines returns the non-empty lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, s.Err()
}

// backupCmd handles CLI options for the backup command.
type backupCmd struct {
	streams
	configFile     string
	shares         int
	threshold      int
	verifyChecksum bool
	quiet          bool
}

func (*backupCmd) Name() string { return "backup" }
func (*backupCmd) Synopsis() string {
	return "splits a passphrase into shares"
}
func (*backupCmd) Usage() string {
	return fmt.Sprintf(`Usage: sss backup [--config-file=<config_file>] [--shares=<n>] [--threshold=<t>] [--verify-checksum] [--quiet] "<12 or 24 words>"

Examples:
  Split a passphrase into shares, using %s for configuration:
    $ sss backup "gold dress spread awful floor expect ladder high better census indicate today"

  Split into 7 shares, any 4 of which restore the passphrase:
    $ sss backup --shares=7 --threshold=4 "gold dress spread ..."

  Read the passphrase from stdin to keep it out of the shell history:
    $ sss backup - < passphrase.txt

Flags:
`, defaultConfigPath())
}
func (b *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&b.configFile, "config-file", defaultConfigPath(), "Path to a YAML config file. Optional.")
	f.IntVar(&b.shares, "shares", recovery.DefaultShares, "Number of shares to create.")
	f.IntVar(&b.threshold, "threshold", recovery.DefaultThreshold, "Number of shares required to restore.")
	f.BoolVar(&b.verifyChecksum, "verify-checksum", true, "Reject a passphrase whose checksum does not match.")
	f.BoolVar(&b.quiet, "quiet", false, "Only print the shares.")
}

func (b *backupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(b.configFile, f, func(cfg *config.Config, name string) {
		switch name {
		case "shares":
			cfg.Shares = b.shares
		case "threshold":
			cfg.Threshold = b.threshold
		case "verify-checksum":
			cfg.VerifyChecksum = b.verifyChecksum
		}
	})
	if err != nil {
		glog.Errorf("Failed to load config: %v", err.Error())
		fmt.Fprintln(b.stderr(), "Failed to load config:", err)
		return subcommands.ExitUsageError
	}

	if f.NArg() < 1 {
		glog.Errorf("Not enough arguments (expected passphrase)")
		return subcommands.ExitUsageError
	}
	var words []string
	if f.NArg() == 1 && f.Arg(0) == "-" {
		lines, err := readLines(b.stdin())
		if err != nil {
			return b.fail(cfg, "Failed to read passphrase", err)
		}
		words = strings.Fields(strings.Join(lines, " "))
	} else {
		words = strings.Fields(strings.Join(f.Args(), " "))
	}

	shares, err := recovery.Backup(words, cfg.Shares, cfg.Threshold, recovery.WithChecksumVerification(cfg.VerifyChecksum))
	if err != nil {
		return b.fail(cfg, "Failed to back up passphrase", err)
	}

	p := b.printer(b.stdout(), cfg)
	if !b.quiet {
		p.Printf("Backup set %s: any %d of these %d shares restore the passphrase.\n\n", uuid.NewString(), cfg.Threshold, cfg.Shares)
	}
	for i, s := range shares {
		if b.quiet {
			p.Println(strings.Join(s, " "))
			continue
		}
		p.Printf("%d: ^2%s^R\n", i+1, strings.Join(s, " "))
	}
	glog.Infof("Created %d shares with threshold %d", len(shares), cfg.Threshold)
	return subcommands.ExitSuccess
}

// restoreCmd handles CLI options for the restore command.
type restoreCmd struct {
	streams
	configFile     string
	threshold      int
	verifyChecksum bool
}

func (*restoreCmd) Name() string { return "restore" }
func (*restoreCmd) Synopsis() string {
	return "restores a passphrase from shares"
}
func (*restoreCmd) Usage() string {
	return fmt.Sprintf(`Usage: sss restore [--config-file=<config_file>] [--threshold=<t>] [--verify-checksum] "<share>" "<share>" ...

Examples:
  Restore a passphrase from three shares, using %s for configuration:
    $ sss restore "accident car ..." "act car ..." "address car ..."

  Read the shares from stdin, one per line:
    $ sss restore - < shares.txt

Flags:
`, defaultConfigPath())
}
func (r *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.configFile, "config-file", defaultConfigPath(), "Path to a YAML config file. Optional.")
	f.IntVar(&r.threshold, "threshold", recovery.DefaultThreshold, "Number of shares required to restore.")
	f.BoolVar(&r.verifyChecksum, "verify-checksum", true, "Reject shares whose checksum does not match.")
}

func (r *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig(r.configFile, f, func(cfg *config.Config, name string) {
		switch name {
		case "threshold":
			cfg.Threshold = r.threshold
			// The share count is unknown at restore time.
			if cfg.Shares <= cfg.Threshold {
				cfg.Shares = cfg.Threshold + 1
			}
		case "verify-checksum":
			cfg.VerifyChecksum = r.verifyChecksum
		}
	})
	if err != nil {
		glog.Errorf("Failed to load config: %v", err.Error())
		fmt.Fprintln(r.stderr(), "Failed to load config:", err)
		return subcommands.ExitUsageError
	}

	if f.NArg() < 1 {
		glog.Errorf("Not enough arguments (expected shares)")
		return subcommands.ExitUsageError
	}
	args := f.Args()
	if f.NArg() == 1 && f.Arg(0) == "-" {
		if args, err = readLines(r.stdin()); err != nil {
			return r.fail(cfg, "Failed to read shares", err)
		}
	}
	shares := make([][]string, len(args))
	for i, a := range args {
		shares[i] = strings.Fields(a)
	}

	words, err := recovery.Restore(shares,
		recovery.WithThreshold(cfg.Threshold),
		recovery.WithChecksumVerification(cfg.VerifyChecksum))
	if err != nil {
		return r.fail(cfg, "Failed to restore passphrase", err)
	}

	fmt.Fprintln(r.stdout(), strings.Join(words, " "))
	glog.Infof("Restored passphrase from %d shares", len(shares))
	return subcommands.ExitSuccess
}

// versionCmd handles CLI options for the version command.
type versionCmd struct {
	streams
}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: sss version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (v *versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(v.stdout(), "sss Version %s\n", sssVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&backupCmd{}, "")
	subcommands.Register(&restoreCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
