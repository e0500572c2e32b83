package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/version"
)

type versionInfo struct {
	Release    string `json:"release"`
	Commit     string `json:"commit"`
	CommitDate string `json:"commit_date"`
	Go         string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return api.Output(versionInfo{
			Release:    version.GitRelease,
			Commit:     version.GitCommit,
			CommitDate: version.GitCommitDate,
			Go:         version.GoInfo,
		})
	},
}
