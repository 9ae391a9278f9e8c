package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipwatch/internal/clip"
)

// fileCopyRequest is the JSON form accepted on stdin when no args are given.
type fileCopyRequest struct {
	Files []string `json:"files"`
}

func newCopyFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy-files [file...]",
		Short: "Copy file paths to the clipboard (one-shot)",
		Long: `Places the given file paths on the system clipboard and exits. Paths come
from the arguments, or from a {"files": [...]} JSON object on stdin when no
arguments are given.

The clipboard backend has no portable file-list format, so the paths are
written as newline-separated plain text.`,
		RunE: runCopyFiles,
	}
}

func runCopyFiles(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		var err error
		paths, err = readFileRequest(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	abs := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("file not found or inaccessible: %s: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("path is not a file: %s", p)
		}
		a, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		abs = append(abs, a)
	}

	if err := clip.Init(); err != nil {
		return fmt.Errorf("access system clipboard: %w", err)
	}
	clip.WriteText(strings.Join(abs, "\n"))

	fmt.Fprintf(cmd.OutOrStdout(), "copied %d files to clipboard\n", len(abs))
	return nil
}

// readFileRequest parses the stdin JSON form. An empty stream is a usage
// error, matching the "args or JSON" contract.
func readFileRequest(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("no files given: pass paths as arguments or a {\"files\": [...]} object on stdin")
	}
	var req fileCopyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse stdin JSON: %w", err)
	}
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("stdin JSON lists no files")
	}
	return req.Files, nil
}
