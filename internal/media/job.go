package media

import "github.com/google/uuid"

// Job is one request to transform an input media file into an output file
// under the given settings. A Job is immutable once submitted.
type Job struct {
	ID         uuid.UUID
	InputPath  string
	OutputPath string
	// Container optionally forces the output container format. When set it
	// is appended after the output path in the compiled invocation.
	Container string
	Settings  Settings
}

// NewJob assigns a fresh identifier to a job description.
func NewJob(inputPath, outputPath string, settings Settings) Job {
	return Job{
		ID:         uuid.New(),
		InputPath:  inputPath,
		OutputPath: outputPath,
		Settings:   settings,
	}
}
