package executor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfagundes/taskfan/pkg/domain"
)

const maxBaseNameLen = 80

// Executor performs the worker's local side effect: it materializes an
// assignment as count text files under the output directory.
type Executor struct {
	label     string
	outputDir string
	logger    *slog.Logger
}

func New(label, outputDir string, logger *slog.Logger) *Executor {
	return &Executor{label: label, outputDir: outputDir, logger: logger}
}

// Execute creates req.Count files named <base>-<i>.txt. On a mid-run failure
// the response carries the partial completed count alongside the error, so the
// control plane can report exactly how far this worker got.
func (e *Executor) Execute(req domain.ExecuteRequest) domain.ExecuteResponse {
	start := time.Now()

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return domain.ExecuteResponse{Error: fmt.Sprintf("create output dir: %v", err)}
	}
	base := SafeBaseName(req.Name)

	created := 0
	var samples []string
	for i := 1; i <= req.Count; i++ {
		name := fmt.Sprintf("%s-%d.txt", base, i)
		content := strings.Join([]string{
			"worker=" + e.label,
			"taskId=" + orDash(req.TaskID),
			"name=" + req.Name,
			fmt.Sprintf("index=%d", i),
			"createdAt=" + time.Now().UTC().Format(time.RFC3339),
		}, "\n")
		if err := os.WriteFile(filepath.Join(e.outputDir, name), []byte(content), 0o644); err != nil {
			e.logger.Error("write file failed", "file", name, "err", err)
			return domain.ExecuteResponse{
				CompletedCount: created,
				Error:          fmt.Sprintf("write %s: %v", name, err),
				Details: &domain.ExecuteDetails{
					Folder:        e.outputDir,
					SampleFiles:   samples,
					ElapsedMillis: time.Since(start).Milliseconds(),
				},
			}
		}
		created++
		if len(samples) < 5 {
			samples = append(samples, name)
		}
	}

	e.logger.Info("execute finished",
		"taskId", req.TaskID,
		"count", req.Count,
		"folder", e.outputDir,
		"elapsedMs", time.Since(start).Milliseconds(),
	)
	return domain.ExecuteResponse{
		CompletedCount: created,
		Details: &domain.ExecuteDetails{
			Folder:        e.outputDir,
			SampleFiles:   samples,
			ElapsedMillis: time.Since(start).Milliseconds(),
		},
	}
}

// SafeBaseName strips filesystem-hostile characters and caps length, falling
// back to "task" for a blank name.
func SafeBaseName(name string) string {
	s := strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		`"`, "_", "<", "_", ">", "_", "|", "_",
	)
	s = replacer.Replace(s)
	if s == "" {
		return "task"
	}
	if len(s) > maxBaseNameLen {
		s = s[:maxBaseNameLen]
	}
	return s
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
