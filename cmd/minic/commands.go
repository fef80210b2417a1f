package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xyproto/minic/internal/config"
)

func newCompileCmd(resolveConfig func() config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile <in.json>",
		Short: "Compile a frontend AST (JSON) to x86-64 assembly text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig()
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "minic: compiling %s\n", args[0])
			}
			fn, err := readFrontendFile(args[0])
			if err != nil {
				return err
			}
			text, err := compileToText(fn, cfg)
			if err != nil {
				return err
			}
			return writeOutput(output, []byte(text), 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "a.s", "output assembly file path")
	return cmd
}

func newAssembleCmd(resolveConfig func() config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "assemble <in.s>",
		Short: "Assemble x86-64 assembly text into a relocatable ELF64 object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig()
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "minic: assembling %s\n", args[0])
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("assemble: %w", err)
			}
			obj, err := assembleText(string(src), cfg)
			if err != nil {
				return err
			}
			return writeOutput(output, obj, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "a.o", "output object file path")
	return cmd
}

func newLinkCmd(resolveConfig func() config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "link <in.o>",
		Short: "Link a relocatable ELF64 object into an executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig()
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "minic: linking %s\n", args[0])
			}
			obj, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("link: %w", err)
			}
			exe, err := linkObject(obj, cfg)
			if err != nil {
				return err
			}
			return writeOutput(output, exe, 0o755)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "a.out", "output executable path")
	return cmd
}

func newBuildCmd(resolveConfig func() config.Config) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "build <in.s>",
		Short: "Assemble and link x86-64 assembly text into an executable in one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig()
			if cfg.Verbose {
				fmt.Fprintf(os.Stderr, "minic: building %s\n", args[0])
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("build: %w", err)
			}
			obj, err := assembleText(string(src), cfg)
			if err != nil {
				return err
			}
			exe, err := linkObject(obj, cfg)
			if err != nil {
				return err
			}
			return writeOutput(output, exe, 0o755)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "a.out", "output executable path")
	return cmd
}
