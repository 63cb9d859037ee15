// Copyright 2025 The i5rc Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i5rc/i5rc/common"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := common.GetBuildInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", common.Binary, info.Version)
		if info.GitHash != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "git hash:   %s\n", info.GitHash)
		}
		if info.Time != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "build time: %s\n", info.Time)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
