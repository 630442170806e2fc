// Package reconcile merges freshly generated content with a possibly
// pre-existing destination file under a chosen policy. Cross-format writes
// always go through parsed containers, never textual patching, so output is
// well-formed in the destination dialect.
package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/confmorph/confmorph/pkg/configfmt"
	"github.com/confmorph/confmorph/pkg/logging"
)

// Action is the policy applied when the destination already exists.
type Action string

const (
	// ActionOverwrite replaces the destination bytes verbatim.
	ActionOverwrite Action = "overwrite"
	// ActionSkip leaves an existing destination untouched.
	ActionSkip Action = "skip"
	// ActionReplace merges at depth 1: new top-level keys overwrite
	// identically-named existing keys wholesale.
	ActionReplace Action = "replace"
	// ActionUpdate merges like Replace but recurses into keys whose value
	// is a mapping on both sides.
	ActionUpdate Action = "update"
)

// ParseAction validates an action selector.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionOverwrite, ActionSkip, ActionReplace, ActionUpdate:
		return Action(s), nil
	}
	return "", fmt.Errorf("invalid output action %q (choose overwrite, skip, replace or update)", s)
}

// Result reports what a reconcile run did.
type Result struct {
	// Bytes is the final content; nil when the run was skipped.
	Bytes []byte
	// Written reports whether the destination file was (re)written.
	Written bool
	// Skipped reports that an existing destination was left untouched and
	// the generated content discarded.
	Skipped bool
	// Format is the dialect of the final content.
	Format configfmt.ConfigFormat
	// Previous holds the destination's prior content when one existed.
	Previous []byte
}

// Reconciler applies merge policies to destination files.
type Reconciler struct {
	logger *logging.Logger
}

func New() *Reconciler {
	return &Reconciler{logger: logging.GetLogger()}
}

// Reconcile merges newContent with destPath under action and writes the
// outcome. An empty destPath returns the final bytes without writing.
// Writes are atomic: content goes to a temporary file in the destination
// directory and is renamed into place, so a cancelled run never leaves a
// partially-written destination.
func (r *Reconciler) Reconcile(newContent []byte, destPath string, action Action) (*Result, error) {
	if destPath == "" {
		return &Result{Bytes: newContent, Format: configfmt.Detect(string(newContent))}, nil
	}

	existing, err := os.ReadFile(destPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read destination %s: %w", destPath, err)
		}
		if err := writeAtomic(destPath, newContent); err != nil {
			return nil, err
		}
		return &Result{Bytes: newContent, Written: true, Format: configfmt.Detect(string(newContent))}, nil
	}

	switch action {
	case ActionSkip:
		r.logger.Logf("destination %s exists, conversion result discarded (action: skip)", destPath)
		return &Result{Skipped: true, Previous: existing, Format: configfmt.Detect(string(existing))}, nil

	case ActionOverwrite:
		if err := writeAtomic(destPath, newContent); err != nil {
			return nil, err
		}
		return &Result{Bytes: newContent, Written: true, Previous: existing, Format: configfmt.Detect(string(newContent))}, nil

	case ActionReplace, ActionUpdate:
		merged, format, err := r.merge(existing, newContent, destPath, action)
		if err != nil {
			return nil, err
		}
		if err := writeAtomic(destPath, merged); err != nil {
			return nil, err
		}
		return &Result{Bytes: merged, Written: true, Previous: existing, Format: format}, nil

	default:
		return nil, &OutputConflictError{Path: destPath, Action: string(action)}
	}
}

// merge parses both sides into containers, merges per the action, and
// re-serializes in the existing file's detected dialect. The generated side
// is always interpreted as JSON.
func (r *Reconciler) merge(existing, newContent []byte, destPath string, action Action) ([]byte, configfmt.ConfigFormat, error) {
	format := configfmt.Detect(string(existing))
	existingVal, ok := configfmt.ParseContainer(string(existing))
	if !ok {
		return nil, "", &MergeTypeMismatchError{Path: destPath, Action: string(action), Detail: "existing content is not a structured document"}
	}
	existingMap, ok := existingVal.(map[string]any)
	if !ok {
		return nil, "", &MergeTypeMismatchError{Path: destPath, Action: string(action), Detail: "existing root is not a mapping"}
	}

	var newVal any
	if err := json.Unmarshal(newContent, &newVal); err != nil {
		return nil, "", &MergeTypeMismatchError{Path: destPath, Action: string(action), Detail: fmt.Sprintf("generated content is not valid JSON: %v", err)}
	}
	newMap, ok := newVal.(map[string]any)
	if !ok {
		return nil, "", &MergeTypeMismatchError{Path: destPath, Action: string(action), Detail: "generated root is not a mapping"}
	}

	var merged map[string]any
	if action == ActionUpdate {
		merged = mergeDeep(existingMap, newMap)
	} else {
		merged = mergeShallow(existingMap, newMap)
	}

	// The compact payload notation and plain text are never output
	// dialects; fall back to JSON for such destinations.
	if format == configfmt.FormatTOON || format == configfmt.FormatText {
		format = configfmt.FormatJSON
	}
	out, err := configfmt.Serialize(merged, format)
	if err != nil {
		return nil, "", fmt.Errorf("serialize merged content for %s: %w", destPath, err)
	}
	return out, format, nil
}

// writeAtomic writes content through a temporary file in the destination
// directory, creating parent directories as needed.
func writeAtomic(destPath string, content []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := os.Rename(tmpName, destPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return nil
}
