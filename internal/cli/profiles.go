package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mktdeploy/internal/deploy"
)

// ProfileView is one entry of the profiles listing.
type ProfileView struct {
	deploy.Profile
	Default bool `json:"default"`
}

// NewProfilesCommand creates the profiles command.
func NewProfilesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "profiles",
		Short:         "List the built-in deployment profiles",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(rootOpts, cmd)
		},
	}
}

func runProfiles(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	profiles := deploy.Profiles()
	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, ProfileView{Profile: p, Default: p.Name == deploy.DefaultProfile})
	}

	if formatter.JSON() {
		return formatter.Success(views)
	}
	for _, v := range views {
		line := describeProfile(v.Profile)
		if v.Default {
			line += " (default)"
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}

// describeProfile renders a profile on one line.
func describeProfile(p deploy.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s unit=%s duration=%d bound1=%d", p.Name, p.Unit, p.Duration, p.Bound1)
	if p.Bound2 != nil {
		fmt.Fprintf(&b, " bound2=%d", *p.Bound2)
	} else {
		b.WriteString(" bound2=-")
	}
	fmt.Fprintf(&b, " initialize=%t", p.Initialize)
	return b.String()
}
