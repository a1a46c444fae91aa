// Package server exposes the filesystem engine over the Model Context
// Protocol. It owns parameter decoding and result envelopes only; all
// semantics live in the sandbox and fsops packages.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codefionn/sandboxfs/internal/fsops"
	"github.com/codefionn/sandboxfs/internal/sandbox"
)

// Version is set by the caller (main) before Serve.
var Version = "dev"

const instructions = `I expose a sandboxed view of the local filesystem. Every path must be inside one of the allowed root directories.

The available actions are:
- list_directory: List files and subdirectories in a directory
- search_files: Recursively search for files under a directory matching glob patterns
- read_file: Read a file from a given filepath
- read_multiple_files: Read several files from a list of filepaths
- get_file_info: Return metadata for a given file path
- write_file: Create or overwrite a file
- edit_file: Apply search/replace edits to a file, with dry run
- move_file: Move a file from a source path to a destination path
- create_directory: Create a new directory
- list_allowed_directories: Return the allowed root directories`

// New builds the MCP server with every filesystem tool registered against
// sb. maxReadBytes caps single-file reads; zero selects the built-in ceiling.
func New(sb *sandbox.Sandbox, maxReadBytes int64) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "sandboxfs",
		Version: Version,
	}, &mcp.ServerOptions{Instructions: instructions})
	registerTools(server, sb, maxReadBytes)
	return server
}

// Serve runs the server on stdio until the context is cancelled or the
// client disconnects.
func Serve(ctx context.Context, sb *sandbox.Sandbox, maxReadBytes int64) error {
	return New(sb, maxReadBytes).Run(ctx, &mcp.StdioTransport{})
}

// Tool input types

type pathInput struct {
	Path string `json:"path" jsonschema:"Target path, must be inside an allowed root"`
}

type searchInput struct {
	Path            string   `json:"path" jsonschema:"Root directory to search recursively"`
	Pattern         string   `json:"pattern" jsonschema:"Glob pattern used to include matching files"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty" jsonschema:"Glob patterns used to exclude files from the search"`
}

type readMultipleInput struct {
	Paths []string `json:"paths" jsonschema:"Filepaths to read"`
}

type writeInput struct {
	Path    string `json:"path" jsonschema:"Path of the file to create or overwrite"`
	Content string `json:"content" jsonschema:"Content for the file"`
}

type editInput struct {
	Path   string       `json:"path" jsonschema:"Path of the file to edit"`
	Edits  []fsops.Edit `json:"edits" jsonschema:"Ordered list of literal old/new replacements"`
	DryRun bool         `json:"dry_run,omitempty" jsonschema:"Compute the diff without writing"`
}

type moveInput struct {
	Source      string `json:"source" jsonschema:"Source file path"`
	Destination string `json:"destination" jsonschema:"Destination file path"`
}

type emptyInput struct{}

func registerTools(server *mcp.Server, sb *sandbox.Sandbox, maxReadBytes int64) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	boolPtr := func(b bool) *bool { return &b }
	writeDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)}
	writeNonDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), IdempotentHint: true}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_directory",
		Description: "List files and subdirectories in a directory. Directory names carry a trailing slash.",
		Annotations: readOnly,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
		entries, err := fsops.ListDirectory(ctx, sb, input.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("error listing directory %q: %w", input.Path, err)
		}
		return jsonResult(entries)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_files",
		Description: "Recursively search for files under a directory matching glob patterns. Patterns match the file name only, case-insensitively.",
		Annotations: readOnly,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input searchInput) (*mcp.CallToolResult, any, error) {
		found, err := fsops.SearchFiles(ctx, sb, input.Path, input.Pattern, input.ExcludePatterns)
		if err != nil {
			return nil, nil, fmt.Errorf("error searching files in %q: %w", input.Path, err)
		}
		return jsonResult(found)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_file",
		Description: "Read a file from a given filepath. Files above the size ceiling (1 MiB unless configured otherwise) are rejected.",
		Annotations: readOnly,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
		content, err := fsops.ReadFile(ctx, sb, input.Path, maxReadBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading file %q: %w", input.Path, err)
		}
		return jsonResult(content)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_multiple_files",
		Description: "Read several files from a list of filepaths. Unreadable paths are omitted from the result.",
		Annotations: readOnly,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input readMultipleInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(fsops.ReadMultipleFiles(ctx, sb, input.Paths, maxReadBytes))
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_file_info",
		Description: "Return metadata for a given file path, including size, permissions, creation time, and last modified time.",
		Annotations: readOnly,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
		info, err := fsops.GetFileInfo(ctx, sb, input.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("error retrieving file info for %q: %w", input.Path, err)
		}
		return jsonResult(info)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "write_file",
		Description: "Create or overwrite a file. The write is atomic: readers never observe partial content.",
		Annotations: writeDestructive,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input writeInput) (*mcp.CallToolResult, any, error) {
		if err := fsops.WriteFile(ctx, sb, input.Path, input.Content); err != nil {
			return nil, nil, fmt.Errorf("error writing file %q: %w", input.Path, err)
		}
		return textResult(""), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_file",
		Description: "Apply literal search/replace edits to a file and return the diff. Set dry_run to preview without writing.",
		Annotations: writeDestructive,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input editInput) (*mcp.CallToolResult, any, error) {
		result, err := fsops.EditFile(ctx, sb, input.Path, input.Edits, input.DryRun)
		if err != nil {
			return nil, nil, fmt.Errorf("error editing file %q: %w", input.Path, err)
		}
		return jsonResult(result)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_file",
		Description: "Move a file from a source path to a destination path.",
		Annotations: writeDestructive,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input moveInput) (*mcp.CallToolResult, any, error) {
		if err := fsops.MoveFile(ctx, sb, input.Source, input.Destination); err != nil {
			return nil, nil, fmt.Errorf("error moving file %q to %q: %w", input.Source, input.Destination, err)
		}
		return textResult(""), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_directory",
		Description: "Create a new directory, including missing parents. Reports when the path already exists.",
		Annotations: writeNonDestructive,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input pathInput) (*mcp.CallToolResult, any, error) {
		status, err := fsops.CreateDirectory(ctx, sb, input.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating directory %q: %w", input.Path, err)
		}
		return textResult(status), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_allowed_directories",
		Description: "Return the sandbox root directories.",
		Annotations: readOnly,
	}, func(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
		return jsonResult(sb.Roots())
	})
}

// Helpers

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("error converting result to JSON: %w", err)
	}
	return textResult(string(data)), nil, nil
}
