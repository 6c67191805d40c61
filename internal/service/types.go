package service

import "github.com/a3tai/mcp-audit-validator/internal/audit"

// ValidateFileRequest names a document inside the configured directory
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// ValidateContentRequest carries already extracted content as JSON
type ValidateContentRequest struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// ListDocumentsRequest filters the supported documents under a directory
type ListDocumentsRequest struct {
	Directory string `json:"directory,omitempty"`
	Query     string `json:"query,omitempty"`
}

// DocumentInfo describes one candidate document on disk
type DocumentInfo struct {
	Path         string `json:"path" yaml:"path"`
	Name         string `json:"name" yaml:"name"`
	Format       string `json:"format" yaml:"format"`
	Size         int64  `json:"size" yaml:"size"`
	ModifiedTime string `json:"modified_time" yaml:"modified_time"`
}

// ListDocumentsResult is the outcome of a directory listing
type ListDocumentsResult struct {
	Files       []DocumentInfo `json:"files" yaml:"files"`
	TotalCount  int            `json:"total_count" yaml:"total_count"`
	Directory   string         `json:"directory" yaml:"directory"`
	SearchQuery string         `json:"search_query,omitempty" yaml:"search_query,omitempty"`
}

// FieldRule documents the rule applied to one field
type FieldRule struct {
	Field audit.Field `json:"field" yaml:"field"`
	Label string      `json:"label" yaml:"label"`
	Scope string      `json:"scope" yaml:"scope"`
	Rule  string      `json:"rule" yaml:"rule"`
}

// RulesInfoResult describes the active validation configuration
type RulesInfoResult struct {
	Policy              audit.Policy `json:"policy" yaml:"policy"`
	SupportedExtensions []string     `json:"supported_extensions" yaml:"supported_extensions"`
	MaxFileSize         int64        `json:"max_file_size" yaml:"max_file_size"`
	Directory           string       `json:"directory" yaml:"directory"`
	Fields              []FieldRule  `json:"fields" yaml:"fields"`
	FieldStatuses       []string     `json:"field_statuses" yaml:"field_statuses"`
	OverallStatuses     []string     `json:"overall_statuses" yaml:"overall_statuses"`
	ContentSchema       string       `json:"content_schema" yaml:"content_schema"`
}
