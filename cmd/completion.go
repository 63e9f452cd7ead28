package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/runtime"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for studylog.

To load completions:

Bash:
  $ source <(studylog completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ studylog completion bash > /etc/bash_completion.d/studylog
  # macOS:
  $ studylog completion bash > $(brew --prefix)/etc/bash_completion.d/studylog

Zsh:
  $ studylog completion zsh > "${fpath[1]}/_studylog"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ studylog completion fish | source

  # To load completions for each session, execute once:
  $ studylog completion fish > ~/.config/fish/completions/studylog.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

// completeRecordIDs offers record IDs with their titles as descriptions.
// Completion runs without the persistent hooks, so it opens its own runtime.
func completeRecordIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	opts := runtime.DefaultOptions()
	opts.ConfigPath = flagConfig
	opts.Backend = flagBackend
	rt, err := runtime.New(cmd.Context(), opts)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer rt.Close()

	if err := rt.Session.Start(cmd.Context()); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var out []string
	for _, r := range rt.Session.Records() {
		out = append(out, r.ID+"\t"+r.Title)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
