package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/duke-go/internal/todo"
)

//go:embed export.schema.json
var exportSchemaJSON string

const exportSchemaURL = "duke-export.schema.json"

// ExportVersion is the schema_version written into export documents.
const ExportVersion = 1

// ExportDocument is the JSON form of a task list.
type ExportDocument struct {
	SchemaVersion int          `json:"schema_version"`
	ExportedAt    time.Time    `json:"exported_at"`
	Tasks         []ExportTask `json:"tasks"`
}

// ExportTask is the JSON form of one task.
type ExportTask struct {
	Kind        string `json:"kind"`
	Done        bool   `json:"done"`
	Description string `json:"description"`
	By          string `json:"by,omitempty"`
	At          string `json:"at,omitempty"`
}

// ValidationError is a schema violation at a location in the document.
type ValidationError struct {
	Path string // dotted path to the error location
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SchemaError collects every violation found in a document.
type SchemaError struct {
	Errors []error
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "export does not match schema: " + strings.Join(msgs, "; ")
}

// NewExportDocument converts tasks into an export document.
func NewExportDocument(tasks []todo.Task, now time.Time) *ExportDocument {
	doc := &ExportDocument{
		SchemaVersion: ExportVersion,
		ExportedAt:    now.UTC().Truncate(time.Second),
		Tasks:         make([]ExportTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		et := ExportTask{
			Kind:        t.Kind.String(),
			Done:        t.Done,
			Description: t.Description,
		}
		switch t.Kind {
		case todo.KindDeadline:
			et.By = todo.FormatTimestamp(t.When)
		case todo.KindEvent:
			et.At = todo.FormatTimestamp(t.When)
		}
		doc.Tasks = append(doc.Tasks, et)
	}
	return doc
}

// Validate checks the document against the embedded export schema.
func (d *ExportDocument) Validate() error {
	schema, err := compileExportSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unmarshal export: %w", err)
	}

	if err := schema.Validate(obj); err != nil {
		se := &SchemaError{}
		collectSchemaErrors(se, err)
		return se
	}
	return nil
}

// WriteExport validates a document built from tasks and writes it to w with
// 2-space indentation and a trailing newline.
func WriteExport(w io.Writer, tasks []todo.Task, now time.Time) error {
	doc := NewExportDocument(tasks, now)
	if err := doc.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func compileExportSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(exportSchemaURL, strings.NewReader(exportSchemaJSON)); err != nil {
		return nil, fmt.Errorf("load export schema: %w", err)
	}
	schema, err := compiler.Compile(exportSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile export schema: %w", err)
	}
	return schema, nil
}

func collectSchemaErrors(se *SchemaError, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		se.Errors = append(se.Errors, err)
		return
	}
	collectCauses(se, ve)
}

func collectCauses(se *SchemaError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		se.Errors = append(se.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectCauses(se, cause)
	}
}

// jsonPointerToPath turns "/tasks/0/by" into "tasks[0].by".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	path := ""
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			path += fmt.Sprintf("[%d]", idx)
			continue
		}
		if path == "" {
			path = part
		} else {
			path += "." + part
		}
	}
	return path
}
