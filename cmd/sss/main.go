// Copyright 2025 Google LLC
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

// This binary is the main entrypoint for the sss command line tool, which
// splits files into Shamir secret shares and recombines them.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"flag"
	"github.com/GoogleCloudPlatform/sss"
	"github.com/GoogleCloudPlatform/sss/shares"
	"github.com/alecthomas/colour"
	glog "github.com/golang/glog"
	"github.com/google/subcommands"
	"sigs.k8s.io/yaml"
)

const (
	// The default name for the sss configuration file.
	defaultConfigName string = "sss.yaml"

	// The current version, displayed via the `version` subcommand.
	sssVersion string = "0.1.0"
)

// config holds the optional YAML-provided defaults for splitting.
type config struct {
	// Shares is the default number of shares to produce.
	Shares int `json:"shares"`
	// Threshold is the default number of shares needed to recombine.
	Threshold int `json:"threshold"`
}

func defaultConfigPath() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		glog.Errorf("Failed to get config directory location: %v", err.Error())
	}
	return filepath.Join(cfgDir, defaultConfigName)
}

// readConfig loads defaults from the given YAML file if it exists.
func readConfig(path string) (config, error) {
	cfg := config{Shares: 5, Threshold: 3}

	yamlBytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.UnmarshalStrict(yamlBytes, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshaling %s: %v", path, err)
	}
	return cfg, nil
}

// splitCmd handles CLI options for the split command.
type splitCmd struct {
	configFile string
	numShares  int
	threshold  int
	quiet      bool
}

func (*splitCmd) Name() string { return "split" }
func (*splitCmd) Synopsis() string {
	return "splits a secret file into n share files, k of which can recombine it"
}
func (*splitCmd) Usage() string {
	return fmt.Sprintf(`Usage: sss split [--shares=<n>] [--threshold=<k>] <secret_file> <output_dir>

Examples:
  Split a file into 5 shares, any 3 of which recombine it:
    $ sss split --shares=5 --threshold=3 secret.dat ./shares

  Split with secret input from stdin:
    $ sss split - ./shares < secret.dat

  Defaults for --shares and --threshold can be placed in %s.

Flags:
`, defaultConfigPath())
	// The flags are automatically printed after the returned text.
}
func (s *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&s.configFile, "config-file", defaultConfigPath(), "Path to a YAML file with default flag values. Optional.")
	f.IntVar(&s.numShares, "shares", 0, "Number of share files to produce.")
	f.IntVar(&s.threshold, "threshold", 0, "Number of shares required to recombine the secret.")
	f.BoolVar(&s.quiet, "quiet", false, "Suppress logging output.")
}

func (s *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := readConfig(s.configFile)
	if err != nil {
		glog.Errorf("Failed to read config file: %v", err.Error())
		return subcommands.ExitFailure
	}
	if s.numShares == 0 {
		s.numShares = cfg.Shares
	}
	if s.threshold == 0 {
		s.threshold = cfg.Threshold
	}
	if s.numShares < 1 || s.numShares > sss.MaxShares || s.threshold < 1 || s.threshold > s.numShares {
		glog.Errorf("Invalid share parameters: %d of %d", s.threshold, s.numShares)
		return subcommands.ExitFailure
	}

	if f.NArg() < 2 {
		glog.Errorf("Not enough arguments (expected secret file and output directory)")
		return subcommands.ExitFailure
	}

	var inFile io.Reader
	if f.Arg(0) == "-" {
		// Read input from stdin.
		inFile = os.Stdin
	} else {
		inFile, err = os.Open(f.Arg(0))
		if err != nil {
			glog.Errorf("Failed to open secret file: %v", err.Error())
			return subcommands.ExitFailure
		}
	}

	secret, err := io.ReadAll(inFile)
	if err != nil {
		glog.Errorf("Failed to read secret: %v", err.Error())
		return subcommands.ExitFailure
	}

	split, err := sss.Split(byte(s.numShares), byte(s.threshold), secret, rand.Reader)
	if err != nil {
		glog.Errorf("Failed to split secret: %v", err.Error())
		return subcommands.ExitFailure
	}
	envelopes, err := shares.Wrap(s.threshold, s.numShares, split)
	if err != nil {
		glog.Errorf("Failed to wrap shares: %v", err.Error())
		return subcommands.ExitFailure
	}

	outDir := f.Arg(1)
	if err := os.MkdirAll(outDir, 0700); err != nil {
		glog.Errorf("Failed to create output directory: %v", err.Error())
		return subcommands.ExitFailure
	}

	for _, e := range envelopes {
		data, err := e.Marshal()
		if err != nil {
			glog.Errorf("Failed to marshal share %d: %v", e.ShareID, err.Error())
			return subcommands.ExitFailure
		}
		name := filepath.Join(outDir, fmt.Sprintf("share-%03d.yaml", e.ShareID))
		if err := os.WriteFile(name, data, 0600); err != nil {
			glog.Errorf("Failed to write share file: %v", err.Error())
			return subcommands.ExitFailure
		}
	}

	if !s.quiet {
		colour.Printf("^2Wrote %d share files to %s^R\n", len(envelopes), outDir)
		fmt.Println("Split ID:", envelopes[0].SplitID)
		fmt.Printf("Any %d of %d shares recombine the secret.\n", s.threshold, s.numShares)
	}

	return subcommands.ExitSuccess
}

// combineCmd handles CLI options for the combine command.
type combineCmd struct {
	quiet bool
}

func (*combineCmd) Name() string { return "combine" }
func (*combineCmd) Synopsis() string {
	return "recombines share files into the original secret"
}
func (*combineCmd) Usage() string {
	return `Usage: sss combine <output_file> <share_file>...

Examples:
  Recombine a secret from three share files:
    $ sss combine secret.dat shares/share-001.yaml shares/share-003.yaml shares/share-005.yaml

  Write the recombined secret to stdout:
    $ sss combine - shares/share-*.yaml > secret.dat

Flags:
`
}
func (c *combineCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "quiet", false, "Suppress logging output.")
}

func (c *combineCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		glog.Errorf("Not enough arguments (expected output file and at least one share file)")
		return subcommands.ExitFailure
	}

	envelopes := make([]*shares.Envelope, 0, f.NArg()-1)
	for _, name := range f.Args()[1:] {
		data, err := os.ReadFile(name)
		if err != nil {
			glog.Errorf("Failed to read share file: %v", err.Error())
			return subcommands.ExitFailure
		}
		e, err := shares.Unmarshal(data)
		if err != nil {
			glog.Errorf("Failed to parse %s: %v", name, err.Error())
			return subcommands.ExitFailure
		}
		envelopes = append(envelopes, e)
	}

	assembled, err := shares.Assemble(envelopes)
	if err != nil {
		glog.Errorf("Failed to validate shares: %v", err.Error())
		return subcommands.ExitFailure
	}

	secret, err := sss.Combine(assembled)
	if err != nil {
		glog.Errorf("Failed to combine shares: %v", err.Error())
		return subcommands.ExitFailure
	}

	var outFile *os.File
	var logFile *os.File
	if f.Arg(0) == "-" {
		// Output to stdout and log to stderr.
		outFile = os.Stdout
		logFile = os.Stderr
	} else {
		outFile, err = os.Create(f.Arg(0))
		if err != nil {
			glog.Errorf("Failed to open file for secret: %v", err.Error())
			return subcommands.ExitFailure
		}
		defer outFile.Close()

		logFile = os.Stdout
	}

	if _, err := outFile.Write(secret); err != nil {
		glog.Errorf("Failed to write secret: %v", err.Error())
		return subcommands.ExitFailure
	}

	if !c.quiet {
		fmt.Fprintln(logFile, "Wrote recombined secret to", outFile.Name())
		fmt.Fprintln(logFile, "Split ID:", envelopes[0].SplitID)
	}

	return subcommands.ExitSuccess
}

// versionCmd handles CLI options for the version command.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "prints the current version" }
func (*versionCmd) Usage() string          { return "Usage: sss version" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}
func (*versionCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	fmt.Printf("sss Version %s\n", sssVersion)
	return subcommands.ExitSuccess
}

func main() {
	flag.Parse()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(&splitCmd{}, "")
	subcommands.Register(&combineCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
