package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gdcore/internal/config"
	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL project loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "scene", LabelNames: []string{"name"}},
		{Type: "event"},
		{Type: "foreach", LabelNames: []string{"object"}},
	},
}

// Load parses every .hcl file under paths, in order, and merges them. Events
// keep the order in which they appear; at most one scene may be declared.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	model := &config.Model{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(fileSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range content.Blocks {
			switch block.Type {
			case "scene":
				if model.Scene != nil {
					return nil, fmt.Errorf("%s: scene '%s' declared but scene '%s' already exists", block.DefRange, block.Labels[0], model.Scene.Name)
				}
				s, diags := translateScene(block)
				if diags.HasErrors() {
					return nil, fmt.Errorf("failed to decode scene in %s: %w", file, diags)
				}
				model.Scene = s
			default:
				ev, diags := translateEvent(block)
				if diags.HasErrors() {
					return nil, fmt.Errorf("failed to decode events in %s: %w", file, diags)
				}
				model.Events = append(model.Events, ev)
			}
		}
	}

	model.Events.Walk(func(instr *events.Instruction) { instr.SetLogger(logger) })
	logger.Debug("HCL loading complete.", "files", len(hclFiles), "events", len(model.Events), "instructions", model.Events.Count())
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Missing paths are skipped.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if fsutil.HasExtension(path, ".hcl") {
				add(path)
			}
			continue
		}
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return allFiles, nil
}
