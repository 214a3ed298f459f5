package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionShort bool

// VersionInfo is the --json payload of storelens version.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Built   string `json:"built"`
	Go      string `json:"go"`
	OSArch  string `json:"os_arch"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of storelens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), versionShort)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version: formatVersion(version),
		Commit:  commit,
		Built:   date,
		Go:      runtime.Version(),
		OSArch:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func writeVersion(w io.Writer, short bool) error {
	info := currentVersion()
	switch {
	case machineMode:
		return WriteJSONSuccess(w, info)
	case short:
		_, err := fmt.Fprintln(w, version)
		return err
	}

	_, err := fmt.Fprintf(w, "storelens %s\ncommit: %s\nbuilt: %s\ngo: %s\nos/arch: %s\n",
		info.Version, info.Commit, info.Built, info.Go, info.OSArch)
	return err
}

// formatVersion adds a 'v' prefix to release versions.
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// SetVersionInfo sets the build metadata. Called from main.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
