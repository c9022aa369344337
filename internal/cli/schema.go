// Package cli provides shared CLI utilities for searchbench.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helpJSONFlag = "help-json"

// FlagSchema describes one command flag.
type FlagSchema struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Persistent  bool   `json:"persistent,omitempty"`
}

// CommandSchema describes a command and, recursively, its subcommands.
type CommandSchema struct {
	Name        string          `json:"name"`
	Use         string          `json:"use,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Description string          `json:"description,omitempty"`
	Long        string          `json:"long,omitempty"`
	Example     string          `json:"example,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// GenerateSchema builds the schema for cmd. Hidden commands and cobra's
// help command are left out.
func GenerateSchema(cmd *cobra.Command) CommandSchema {
	schema := CommandSchema{
		Name:        cmd.Name(),
		Use:         cmd.Use,
		Aliases:     cmd.Aliases,
		Description: cmd.Short,
		Long:        cmd.Long,
		Example:     cmd.Example,
		Flags:       extractFlags(cmd),
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == "help" || sub.Hidden {
			continue
		}
		schema.Subcommands = append(schema.Subcommands, GenerateSchema(sub))
	}

	return schema
}

func extractFlags(cmd *cobra.Command) []FlagSchema {
	var flags []FlagSchema
	add := func(persistent bool) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if f.Name == helpJSONFlag || f.Name == "help" || f.Hidden {
				return
			}
			s := flagToSchema(f)
			s.Persistent = persistent
			flags = append(flags, s)
		}
	}

	cmd.LocalNonPersistentFlags().VisitAll(add(false))
	cmd.PersistentFlags().VisitAll(add(true))
	return flags
}

func flagToSchema(f *pflag.Flag) FlagSchema {
	schema := FlagSchema{
		Name:        f.Name,
		Shorthand:   f.Shorthand,
		Type:        f.Value.Type(),
		Default:     f.DefValue,
		Description: f.Usage,
	}

	if req := f.Annotations[cobra.BashCompOneRequiredFlag]; len(req) > 0 && req[0] == "true" {
		schema.Required = true
	}

	return schema
}

// WriteSchema writes the schema of cmd as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	output, err := json.MarshalIndent(GenerateSchema(cmd), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// AddHelpJSONFlag adds the --help-json flag to a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(helpJSONFlag, false, "Output command schema as JSON")
}

// CheckHelpJSON prints the schema of the addressed command and exits when
// os.Args contains --help-json. Call it before Execute so required flags
// and argument validation do not get in the way.
func CheckHelpJSON(rootCmd *cobra.Command) {
	for i, arg := range os.Args {
		if arg != "--"+helpJSONFlag {
			continue
		}
		target := findTargetCommand(rootCmd, os.Args[1:i])
		if err := WriteSchema(os.Stdout, target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
}

func findTargetCommand(cmd *cobra.Command, args []string) *cobra.Command {
	if len(args) == 0 {
		return cmd
	}

	for _, sub := range cmd.Commands() {
		if sub.Name() == args[0] || sub.HasAlias(args[0]) {
			return findTargetCommand(sub, args[1:])
		}
	}

	return cmd
}
