package runtime

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Simple API functions for ease of use

// RenderTemplate looks up name in cfg and renders it with context.
func RenderTemplate(cfg *Config, name string, context map[string]interface{}) (string, error) {
	tmpl, err := cfg.GetTemplate(name)
	if err != nil {
		return "", err
	}
	return tmpl.Render(context)
}

// RenderTemplateToWriter looks up name in cfg and renders it to writer.
func RenderTemplateToWriter(cfg *Config, name string, context map[string]interface{}, writer io.Writer) error {
	tmpl, err := cfg.GetTemplate(name)
	if err != nil {
		return err
	}
	return tmpl.RenderTo(writer, context)
}

// BatchJob is one render of a BatchRenderer run.
type BatchJob struct {
	Template string
	Context  map[string]interface{}
	// Output is the file to write. An empty Output keeps the result in memory.
	Output string
}

// BatchResult is the outcome of one BatchJob.
type BatchResult struct {
	Job    BatchJob
	Output string
	Err    error
}

// BatchRenderer renders many templates of one Config concurrently.
type BatchRenderer struct {
	config  *Config
	workers int
}

// NewBatchRenderer creates a renderer running at most workers renders at a
// time. workers below one means one.
func NewBatchRenderer(cfg *Config, workers int) *BatchRenderer {
	if workers < 1 {
		workers = 1
	}
	return &BatchRenderer{config: cfg, workers: workers}
}

// Render renders a single template.
func (br *BatchRenderer) Render(name string, context map[string]interface{}) (string, error) {
	return RenderTemplate(br.config, name, context)
}

// Run executes jobs and returns one result per job, in job order.
func (br *BatchRenderer) Run(jobs []BatchJob) []BatchResult {
	results := make([]BatchResult, len(jobs))
	sem := make(chan struct{}, br.workers)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, job BatchJob) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = br.runJob(job)
		}(i, job)
	}
	wg.Wait()
	return results
}

func (br *BatchRenderer) runJob(job BatchJob) BatchResult {
	result := BatchResult{Job: job}
	tmpl, err := br.config.GetTemplate(job.Template)
	if err != nil {
		result.Err = err
		return result
	}
	if job.Output != "" {
		result.Err = tmpl.RenderToFile(job.Output, job.Context)
	} else {
		result.Output, result.Err = tmpl.Render(job.Context)
	}
	if result.Err != nil {
		br.config.Logger().Warn("batch render failed", "template", job.Template, "error", result.Err)
	}
	return result
}

// String returns a string representation of the renderer
func (br *BatchRenderer) String() string {
	names := br.config.Registry().ListTemplates()
	return fmt.Sprintf("BatchRenderer(workers=%d, templates=[%s])", br.workers, strings.Join(names, ", "))
}
