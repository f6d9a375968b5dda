package handler

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/doc_analysis.md
var docAnalysisPromptTmpl string

//go:embed prompt/pr_review.md
var prReviewPromptTmpl string

//go:embed prompt/paper_writing.md
var paperWritingPromptTmpl string

//go:embed prompt/custom_task.md
var customTaskPromptTmpl string

var (
	docAnalysisPrompt  = template.Must(template.New("doc_analysis").Parse(docAnalysisPromptTmpl))
	prReviewPrompt     = template.Must(template.New("pr_review").Parse(prReviewPromptTmpl))
	paperWritingPrompt = template.Must(template.New("paper_writing").Parse(paperWritingPromptTmpl))
	customTaskPrompt   = template.Must(template.New("custom_task").Parse(customTaskPromptTmpl))
)

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}
