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

package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
)

const goldPhrase = "gold dress spread awful floor expect ladder high better census indicate today"

type result struct {
	status subcommands.ExitStatus
	stdout string
	stderr string
}

type testCommand interface {
	subcommands.Command
	setStreams(s streams)
}

func (b *backupCmd) setStreams(s streams)  { b.streams = s }
func (r *restoreCmd) setStreams(s streams) { r.streams = s }
func (v *versionCmd) setStreams(s streams) { v.streams = s }

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sss.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("os.WriteFile() err = %v", err)
	}
	return path
}

func run(t *testing.T, cmd testCommand, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.setStreams(streams{in: strings.NewReader(stdin), out: &stdout, err: &stderr})

	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("f.Parse(%q) err = %v", args, err)
	}
	status := cmd.Execute(context.Background(), f)
	return result{status: status, stdout: stdout.String(), stderr: stderr.String()}
}

// sharesFromOutput extracts the share phrases from numbered backup output.
func sharesFromOutput(t *testing.T, out string) []string {
	t.Helper()
	var shares []string
	for _, line := range strings.Split(out, "\n") {
		if _, share, ok := strings.Cut(line, ": "); ok && !strings.HasPrefix(line, "Backup set") {
			shares = append(shares, share)
		}
	}
	return shares
}

func TestBackupThenRestore(t *testing.T) {
	cfg := writeConfig(t, "color: false\n")

	backup := run(t, &backupCmd{}, "", "--config-file="+cfg, goldPhrase)
	if backup.status != subcommands.ExitSuccess {
		t.Fatalf("backup status = %v, want %v (stderr %q)", backup.status, subcommands.ExitSuccess, backup.stderr)
	}
	if !strings.HasPrefix(backup.stdout, "Backup set ") {
		t.Errorf("backup output = %q, want backup set label first", backup.stdout)
	}
	shares := sharesFromOutput(t, backup.stdout)
	if len(shares) != 5 {
		t.Fatalf("backup printed %d shares, want 5:\n%s", len(shares), backup.stdout)
	}
	for i, s := range shares {
		if n := len(strings.Fields(s)); n != 13 {
			t.Errorf("share %d has %d words, want 13", i+1, n)
		}
		if strings.Contains(s, "^") || strings.Contains(s, "\033") {
			t.Errorf("share %d contains colour codes: %q", i+1, s)
		}
	}

	args := append([]string{"--config-file=" + cfg}, shares[1], shares[3], shares[4])
	restore := run(t, &restoreCmd{}, "", args...)
	if restore.status != subcommands.ExitSuccess {
		t.Fatalf("restore status = %v, want %v (stderr %q)", restore.status, subcommands.ExitSuccess, restore.stderr)
	}
	if diff := cmp.Diff(goldPhrase+"\n", restore.stdout); diff != "" {
		t.Errorf("restore output diff (-want +got):\n%s", diff)
	}
}

func TestBackupQuietAndFlagsOverrideConfig(t *testing.T) {
	cfg := writeConfig(t, "shares: 5\nthreshold: 3\ncolor: false\n")

	backup := run(t, &backupCmd{}, "", "--config-file="+cfg, "--quiet", "--shares=4", "--threshold=2", goldPhrase)
	if backup.status != subcommands.ExitSuccess {
		t.Fatalf("backup status = %v, want %v (stderr %q)", backup.status, subcommands.ExitSuccess, backup.stderr)
	}
	shares := strings.Split(strings.TrimSpace(backup.stdout), "\n")
	if len(shares) != 4 {
		t.Fatalf("backup printed %d lines, want 4:\n%s", len(shares), backup.stdout)
	}

	restore := run(t, &restoreCmd{}, strings.Join(shares[2:], "\n"), "--config-file="+cfg, "--threshold=2", "-")
	if restore.status != subcommands.ExitSuccess {
		t.Fatalf("restore status = %v, want %v (stderr %q)", restore.status, subcommands.ExitSuccess, restore.stderr)
	}
	if got := strings.TrimSpace(restore.stdout); got != goldPhrase {
		t.Errorf("restore output = %q, want %q", got, goldPhrase)
	}
}

func TestBackupFromStdin(t *testing.T) {
	cfg := writeConfig(t, "color: false\n")
	phrase := strings.ReplaceAll(goldPhrase, " ", "\n")

	backup := run(t, &backupCmd{}, phrase, "--config-file="+cfg, "--quiet", "-")
	if backup.status != subcommands.ExitSuccess {
		t.Fatalf("backup status = %v, want %v (stderr %q)", backup.status, subcommands.ExitSuccess, backup.stderr)
	}
	if n := len(strings.Split(strings.TrimSpace(backup.stdout), "\n")); n != 5 {
		t.Errorf("backup printed %d lines, want 5", n)
	}
}

func TestBackupFails(t *testing.T) {
	cfg := writeConfig(t, "color: false\n")
	badChecksum := strings.Replace(goldPhrase, "today", "abandon", 1)

	for _, tc := range []struct {
		name       string
		args       []string
		wantStatus subcommands.ExitStatus
		wantStderr string
	}{
		{
			name:       "bad checksum",
			args:       []string{"--config-file=" + cfg, badChecksum},
			wantStatus: subcommands.ExitFailure,
			wantStderr: "check the words",
		},
		{
			name:       "unknown word",
			args:       []string{"--config-file=" + cfg, strings.Replace(goldPhrase, "gold", "goldd", 1)},
			wantStatus: subcommands.ExitFailure,
			wantStderr: "check the words",
		},
		{
			name:       "wrong word count",
			args:       []string{"--config-file=" + cfg, "gold dress spread"},
			wantStatus: subcommands.ExitFailure,
			wantStderr: "check the words",
		},
		{
			name:       "shares not above threshold",
			args:       []string{"--config-file=" + cfg, "--shares=3", "--threshold=3", goldPhrase},
			wantStatus: subcommands.ExitUsageError,
			wantStderr: "shares (3) must be greater than threshold (3)",
		},
		{
			name:       "no passphrase",
			args:       []string{"--config-file=" + cfg},
			wantStatus: subcommands.ExitUsageError,
		},
		{
			name:       "missing config file",
			args:       []string{"--config-file=" + filepath.Join(t.TempDir(), "missing.yaml"), goldPhrase},
			wantStatus: subcommands.ExitUsageError,
			wantStderr: "Failed to load config",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := run(t, &backupCmd{}, "", tc.args...)
			if got.status != tc.wantStatus {
				t.Errorf("status = %v, want %v", got.status, tc.wantStatus)
			}
			if !strings.Contains(got.stderr, tc.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", got.stderr, tc.wantStderr)
			}
			if got.stdout != "" {
				t.Errorf("stdout = %q, want empty", got.stdout)
			}
		})
	}
}

func TestBackupSkipsChecksumWhenDisabled(t *testing.T) {
	cfg := writeConfig(t, "color: false\nverifyChecksum: false\n")
	badChecksum := strings.Replace(goldPhrase, "today", "abandon", 1)

	got := run(t, &backupCmd{}, "", "--config-file="+cfg, "--quiet", badChecksum)
	if got.status != subcommands.ExitSuccess {
		t.Errorf("status = %v, want %v (stderr %q)", got.status, subcommands.ExitSuccess, got.stderr)
	}
}

func TestRestoreFails(t *testing.T) {
	cfg := writeConfig(t, "color: false\n")
	backup := run(t, &backupCmd{}, "", "--config-file="+cfg, "--quiet", goldPhrase)
	if backup.status != subcommands.ExitSuccess {
		t.Fatalf("backup status = %v, want %v", backup.status, subcommands.ExitSuccess)
	}
	shares := strings.Split(strings.TrimSpace(backup.stdout), "\n")

	for _, tc := range []struct {
		name       string
		args       []string
		wantStatus subcommands.ExitStatus
		wantStderr string
	}{
		{
			name:       "too few shares",
			args:       []string{"--config-file=" + cfg, shares[0], shares[1]},
			wantStatus: subcommands.ExitFailure,
			wantStderr: "too few",
		},
		{
			name:       "passphrase instead of share",
			args:       []string{"--config-file=" + cfg, goldPhrase, shares[1], shares[2]},
			wantStatus: subcommands.ExitFailure,
			wantStderr: "check the words",
		},
		{
			name:       "no shares",
			args:       []string{"--config-file=" + cfg},
			wantStatus: subcommands.ExitUsageError,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := run(t, &restoreCmd{}, "", tc.args...)
			if got.status != tc.wantStatus {
				t.Errorf("status = %v, want %v", got.status, tc.wantStatus)
			}
			if !strings.Contains(got.stderr, tc.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", got.stderr, tc.wantStderr)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	got := run(t, &versionCmd{}, "")
	if got.status != subcommands.ExitSuccess {
		t.Errorf("status = %v, want %v", got.status, subcommands.ExitSuccess)
	}
	if want := "sss Version " + sssVersion + "\n"; got.stdout != want {
		t.Errorf("stdout = %q, want %q", got.stdout, want)
	}
}
