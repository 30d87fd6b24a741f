package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/petasbytes/rpg-agent/internal/telemetry"
	"github.com/petasbytes/rpg-agent/tools"
)

// AssistantSpec describes the hosted assistant to create.
type AssistantSpec struct {
	Name         string
	Model        string
	Instructions string
	Tools        []tools.ToolDefinition
	// FileIDs are uploaded reference files attached through file_search.
	FileIDs []string
}

// CreateAssistant creates the assistant and uses it for subsequent runs.
// When retrieval over FileIDs cannot be attached the assistant is created
// without it and degraded is true.
func (o *OpenAI) CreateAssistant(ctx context.Context, spec AssistantSpec) (id string, degraded bool, err error) {
	params := openai.BetaAssistantNewParams{
		Model:        shared.ChatModel(spec.Model),
		Instructions: openai.String(spec.Instructions),
		Tools:        functionTools(spec.Tools),
	}
	if spec.Name != "" {
		params.Name = openai.String(spec.Name)
	}

	if len(spec.FileIDs) > 0 {
		vsID, err := o.createVectorStore(ctx, spec.Name, spec.FileIDs)
		if err != nil {
			o.degrade(ctx, "vector store", err)
			degraded = true
		} else {
			withSearch := params
			withSearch.Tools = append([]openai.AssistantToolUnionParam{{OfFileSearch: &openai.FileSearchToolParam{}}}, params.Tools...)
			withSearch.ToolResources = openai.BetaAssistantNewParamsToolResources{
				FileSearch: openai.BetaAssistantNewParamsToolResourcesFileSearch{VectorStoreIDs: []string{vsID}},
			}
			a, err := o.client.Beta.Assistants.New(ctx, withSearch)
			if err == nil {
				o.assistantID = a.ID
				return a.ID, false, nil
			}
			o.degrade(ctx, "attach file_search", err)
			degraded = true
		}
	}

	a, err := o.client.Beta.Assistants.New(ctx, params)
	if err != nil {
		return "", degraded, fmt.Errorf("create assistant: %w", err)
	}
	o.assistantID = a.ID
	return a.ID, degraded, nil
}

// DeleteAssistant deletes the assistant used for runs and its vector store,
// if any.
func (o *OpenAI) DeleteAssistant(ctx context.Context) error {
	var errs []error
	if o.assistantID != "" {
		if _, err := o.client.Beta.Assistants.Delete(ctx, o.assistantID); err != nil {
			errs = append(errs, fmt.Errorf("delete assistant: %w", err))
		} else {
			o.assistantID = ""
		}
	}
	if o.vectorStoreID != "" {
		if _, err := o.client.VectorStores.Delete(ctx, o.vectorStoreID); err != nil {
			errs = append(errs, fmt.Errorf("delete vector store: %w", err))
		} else {
			o.vectorStoreID = ""
		}
	}
	return errors.Join(errs...)
}

// UploadFiles uploads each path for assistant retrieval and returns the file
// IDs in order. It stops at the first failure.
func (o *OpenAI) UploadFiles(ctx context.Context, paths []string) ([]string, error) {
	ids := make([]string, 0, len(paths))
	for _, p := range paths {
		id, err := o.uploadFile(ctx, p)
		if err != nil {
			return ids, fmt.Errorf("upload %s: %w", filepath.Base(p), err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteFiles removes uploaded files, continuing past failures.
func (o *OpenAI) DeleteFiles(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if _, err := o.client.Files.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete file %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (o *OpenAI) uploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	file, err := o.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(f, filepath.Base(path), "application/octet-stream"),
		Purpose: openai.FilePurposeAssistants,
	})
	if err != nil {
		return "", err
	}
	return file.ID, nil
}

func (o *OpenAI) createVectorStore(ctx context.Context, name string, fileIDs []string) (string, error) {
	params := openai.VectorStoreNewParams{FileIDs: fileIDs}
	if name != "" {
		params.Name = openai.String(name + " reference")
	}
	vs, err := o.client.VectorStores.New(ctx, params)
	if err != nil {
		return "", err
	}
	o.vectorStoreID = vs.ID
	return vs.ID, nil
}

func (o *OpenAI) degrade(ctx context.Context, stage string, err error) {
	slog.WarnContext(ctx, "assistant retrieval unavailable", "stage", stage, "error", err)
	telemetry.Emit("assistant_degraded", map[string]any{
		"stage": stage,
		"error": err.Error(),
	})
}

func functionTools(defs []tools.ToolDefinition) []openai.AssistantToolUnionParam {
	out := make([]openai.AssistantToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, openai.AssistantToolUnionParam{OfFunction: &openai.FunctionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  shared.FunctionParameters(t.InputSchema),
			},
		}})
	}
	return out
}
