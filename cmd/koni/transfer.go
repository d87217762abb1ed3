package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/evanschultz/koni/internal/app"
)

func newExportCommand(flags *globalFlags, s streams) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every note as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolveFormat(format, outPath)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), flags, s, "export", func(env *cmdEnv) error {
				snap, err := env.svc.ExportSnapshot(cmd.Context())
				if err != nil {
					return fmt.Errorf("export snapshot: %w", err)
				}
				encoded, err := encodeSnapshot(snap, resolved)
				if err != nil {
					return err
				}
				if outPath == "-" {
					if _, err := s.out.Write(encoded); err != nil {
						return fmt.Errorf("write export to stdout: %w", err)
					}
					return nil
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
					return fmt.Errorf("write export file: %w", err)
				}
				env.log.Info("notes exported", "count", len(snap.Notes), "path", outPath, "format", resolved)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --out extension, else json)")
	return cmd
}

func newImportCommand(flags *globalFlags, s streams) *cobra.Command {
	var inPath, format string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Add notes from a JSON or YAML file in one batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return fmt.Errorf("--in is required")
			}
			resolved, err := resolveFormat(format, inPath)
			if err != nil {
				return err
			}
			content, err := readInput(inPath, s.in)
			if err != nil {
				return err
			}
			snap, err := decodeSnapshot(content, resolved)
			if err != nil {
				return err
			}
			return withRuntime(cmd.Context(), flags, s, "import", func(env *cmdEnv) error {
				count, err := env.svc.ImportSnapshot(cmd.Context(), snap)
				if err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				env.log.Info("notes imported", "count", count, "path", inPath)
				_, _ = fmt.Fprintf(s.out, "imported %d notes\n", count)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input file ('-' for stdin)")
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default from --in extension, else json)")
	return cmd
}

// resolveFormat picks the explicit format, else the one implied by path.
func resolveFormat(format, path string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "json", nil
	}
}

func encodeSnapshot(snap app.Snapshot, format string) ([]byte, error) {
	if format == "yaml" {
		encoded, err := yaml.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot yaml: %w", err)
		}
		return encoded, nil
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot json: %w", err)
	}
	return append(encoded, '\n'), nil
}

func decodeSnapshot(content []byte, format string) (app.Snapshot, error) {
	var snap app.Snapshot
	if format == "yaml" {
		if err := yaml.Unmarshal(content, &snap); err != nil {
			return app.Snapshot{}, fmt.Errorf("decode snapshot yaml: %w", err)
		}
		return snap, nil
	}
	if err := json.Unmarshal(content, &snap); err != nil {
		return app.Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
	}
	return snap, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		if stdin == nil {
			return nil, fmt.Errorf("stdin is not available")
		}
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return content, nil
}
