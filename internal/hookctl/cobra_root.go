package hookctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"buildhook/internal/events"
)

// buildRootCmd constructs the hookctl command tree.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hookctl",
		Short:         "Inspect build hook configs and evaluate expressions offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var cfgPath string
	var postProcessing bool
	evalCmd := &cobra.Command{
		Use:     "eval <expr...>",
		Short:   "Evaluate #[ ] containers and, with post-processing, $(property) references",
		Example: "  hookctl eval '#[var v = 1]#[var v]'\n  hookctl eval --config buildhook.yaml --post-processing 'out=$(OutDir)'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOptional(cfgPath)
			if err != nil {
				return err
			}
			e := newEngine(cfg, postProcessing)
			for _, expr := range args {
				out, err := e.Eval(expr)
				if err != nil {
					return fmt.Errorf("eval %q: %w", expr, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	evalCmd.Flags().StringVar(&cfgPath, "config", os.Getenv("BUILDHOOK_CONFIG"), "Config providing events and build properties")
	evalCmd.Flags().BoolVar(&postProcessing, "post-processing", false, "Expand $(property) references after containers")

	validateCmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Load and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOptional(args[0])
			if err != nil {
				return err
			}
			n := 0
			for _, c := range events.Categories {
				n += len(*cfg.Events.List(c))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d events)\n", args[0], n)
			return nil
		},
	}

	eventsCmd := &cobra.Command{
		Use:   "events <config>",
		Short: "List configured actions per category with their ordering requirements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOptional(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !cfg.IsEnabled() {
				fmt.Fprintln(w, "# actions are globally disabled")
			}
			for _, c := range events.Categories {
				list := *cfg.Events.List(c)
				if len(list) == 0 {
					continue
				}
				fmt.Fprintf(w, "%s:\n", c)
				for i, e := range list {
					fmt.Fprintf(w, "  %d. %s\n", i, describe(e))
				}
			}
			return nil
		},
	}

	var varsCfgPath string
	varsCmd := &cobra.Command{
		Use:     "vars <name[:project]=value...>",
		Short:   "Define user variables in order and print their evaluated values",
		Example: "  hookctl vars a=1 'b=#[var a]2' b:App=x",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOptional(varsCfgPath)
			if err != nil {
				return err
			}
			e := newEngine(cfg, false)
			for _, a := range args {
				name, project, value, err := parseDefinition(a)
				if err != nil {
					return err
				}
				e.Vars.Set(name, project, value)
				ident := name
				if project != "" {
					ident += ":" + project
				}
				if _, err := e.Parse("[var " + ident + "]"); err != nil {
					return fmt.Errorf("evaluate %s: %w", ident, err)
				}
			}
			for _, v := range e.Vars.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", v.Ident(), v.Value)
			}
			return nil
		},
	}

	varsCmd.Flags().StringVar(&varsCfgPath, "config", os.Getenv("BUILDHOOK_CONFIG"), "Config providing build properties")

	root.AddCommand(evalCmd, validateCmd, eventsCmd, varsCmd)
	return root
}
