package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// sharedGlobalOptionOrder fixes how the shared flags appear in the
// global options help section.
var sharedGlobalOptionOrder = []string{
	"format",
	"city",
	"output",
	"access-token",
	"refresh-token",
	"verbose",
}

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	version := resolvedVersion(deps.Version)
	emitVersion := func(cmd *cobra.Command) error {
		if requested, _ := cmd.Flags().GetBool("version"); !requested {
			return nil
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		return errVersionShown
	}

	root := &cobra.Command{
		Use:           "crunch",
		Short:         "Browse restaurants cooking without seed oils, filter by diet, and suggest new spots.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			attachVerboseHTTPTrace(cmd, deps.Directory)
			return emitVersion(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := emitVersion(cmd); err != nil {
				return err
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolP("version", "v", false, "Show CLI version and exit.")
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	defaultHelpFunc := root.HelpFunc()
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == root {
			renderRootHelp(cmd.OutOrStdout(), root)
			return
		}
		defaultHelpFunc(cmd, args)
	})

	root.AddCommand(
		newBrowseCommand(deps),
		newSearchCommand(deps),
		newRestaurantCommand(deps),
		newCitiesCommand(deps),
		newStatsCommand(deps),
		newSuggestCommand(deps),
		newAdminCommand(deps),
		newAuthCommand(deps),
		newOpenCommand(deps),
		newNavCommand(deps),
		newNewsletterCommand(deps),
		newContactCommand(deps),
		newConfigureCommand(deps),
	)

	return root
}

type verboseHTTPTraceSetter interface {
	SetVerboseOutput(out io.Writer)
}

func attachVerboseHTTPTrace(cmd *cobra.Command, upstream any) {
	if cmd == nil || upstream == nil {
		return
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		return
	}
	setter, ok := upstream.(verboseHTTPTraceSetter)
	if !ok {
		return
	}
	setter.SetVerboseOutput(cmd.ErrOrStderr())
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "[verbose] http trace enabled")
}

func renderRootHelp(out io.Writer, root *cobra.Command) {
	_, _ = fmt.Fprintf(out, "%s: %s\n\n", root.Name(), root.Short)
	_, _ = fmt.Fprintf(out, "usage: %s <command> [options]\n", root.Name())
	_, _ = fmt.Fprintln(out, "global options (all optional unless marked required):")
	for _, option := range rootOptions(root) {
		writeOptionLine(out, "  ", option)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "commands:")
	for _, cmd := range visibleCommands(root) {
		_, _ = fmt.Fprintf(out, "  %s\n    %s\n", cmd.Name(), cmd.Short)
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "notes:")
	_, _ = fmt.Fprintln(out, "  - options are optional unless marked [required].")
	_, _ = fmt.Fprintln(out, "  - oil and verification data comes from community research and owner reports; always confirm with the restaurant before visiting.")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "full reference:")
	emitReference(out, root, root.Name())
}

func writeOptionLine(out io.Writer, indent string, option optionDoc) {
	_, _ = fmt.Fprintf(out, "%s%s%s: %s\n", indent, option.token, optionLabels(option), option.usage)
}

func visibleCommands(parent *cobra.Command) []*cobra.Command {
	var visible []*cobra.Command
	for _, cmd := range parent.Commands() {
		if !cmd.Hidden {
			visible = append(visible, cmd)
		}
	}
	return visible
}

func emitReference(out io.Writer, parent *cobra.Command, path string) {
	for _, cmd := range visibleCommands(parent) {
		signature := strings.TrimSpace(path + " " + cmd.Use)
		_, _ = fmt.Fprintf(out, "- %s\n  %s\n", signature, cmd.Short)
		if options := commandOptions(cmd); len(options) > 0 {
			_, _ = fmt.Fprintln(out, "  options:")
			for _, option := range options {
				writeOptionLine(out, "    ", option)
			}
		}
		_, _ = fmt.Fprintln(out)
		emitReference(out, cmd, strings.TrimSpace(path+" "+cmd.Name()))
	}
}

type optionDoc struct {
	name      string
	token     string
	usage     string
	required  bool
	inherited bool
	shared    bool
}

func rootOptions(root *cobra.Command) []optionDoc {
	return append(collectOptionDocs(root.Flags(), false), discoverSharedGlobalOptions(root)...)
}

func commandOptions(cmd *cobra.Command) []optionDoc {
	hideFromReference := func(option optionDoc) bool {
		if option.shared {
			return true
		}
		// configure redefines city scope locally; the global docs
		// already cover it.
		return cmd.Name() == "configure" && isSharedGlobalOption(option.name)
	}

	var options []optionDoc
	seen := map[string]struct{}{}
	for _, option := range collectOptionDocs(cmd.NonInheritedFlags(), false) {
		if hideFromReference(option) {
			continue
		}
		seen[option.name] = struct{}{}
		options = append(options, option)
	}
	for _, option := range collectOptionDocs(cmd.InheritedFlags(), true) {
		if _, dup := seen[option.name]; dup || hideFromReference(option) {
			continue
		}
		options = append(options, option)
	}
	return options
}

// discoverSharedGlobalOptions walks the tree for the first definition
// of each shared flag so the global section documents it once.
func discoverSharedGlobalOptions(root *cobra.Command) []optionDoc {
	discovered := map[string]optionDoc{}
	queue := visibleCommands(root)
	for len(queue) > 0 {
		cmd := queue[0]
		queue = append(queue[1:], visibleCommands(cmd)...)
		cmd.NonInheritedFlags().VisitAll(func(flag *pflag.Flag) {
			if flag.Hidden || flag.Name == "help" || !isSharedGlobalFlag(flag) || !isSharedGlobalOption(flag.Name) {
				return
			}
			if _, ok := discovered[flag.Name]; ok {
				return
			}
			discovered[flag.Name] = optionDoc{
				name:     flag.Name,
				token:    flagToken(flag),
				usage:    strings.TrimSpace(flag.Usage),
				required: isFlagRequired(flag),
			}
		})
	}

	options := make([]optionDoc, 0, len(discovered))
	for _, name := range sharedGlobalOptionOrder {
		if option, ok := discovered[name]; ok {
			options = append(options, option)
		}
	}
	return options
}

func isSharedGlobalOption(name string) bool {
	return slices.Contains(sharedGlobalOptionOrder, name)
}

func collectOptionDocs(flags *pflag.FlagSet, inherited bool) []optionDoc {
	var options []optionDoc
	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden || flag.Name == "help" {
			return
		}
		options = append(options, optionDoc{
			name:      flag.Name,
			token:     flagToken(flag),
			usage:     strings.TrimSpace(flag.Usage),
			required:  isFlagRequired(flag),
			inherited: inherited,
			shared:    isSharedGlobalFlag(flag),
		})
	})
	slices.SortFunc(options, func(a, b optionDoc) int {
		return strings.Compare(a.name, b.name)
	})
	return options
}

func isSharedGlobalFlag(flag *pflag.Flag) bool {
	if flag == nil || flag.Annotations == nil {
		return false
	}
	values, ok := flag.Annotations[sharedGlobalFlagAnnotation]
	return annotationEnabled(values, ok)
}

func isFlagRequired(flag *pflag.Flag) bool {
	values, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]
	return annotationEnabled(values, ok)
}

func annotationEnabled(values []string, ok bool) bool {
	if !ok || len(values) == 0 {
		return false
	}
	return strings.EqualFold(values[0], "true") || values[0] == "1"
}

func flagToken(flag *pflag.Flag) string {
	token := "--" + flag.Name
	if flag.Shorthand != "" {
		token += "/-" + flag.Shorthand
	}
	return token
}

func optionLabels(option optionDoc) string {
	labels := make([]string, 0, 2)
	if option.required {
		labels = append(labels, "required")
	}
	if option.inherited {
		labels = append(labels, "global")
	}
	if len(labels) == 0 {
		return ""
	}
	return " [" + strings.Join(labels, ", ") + "]"
}
