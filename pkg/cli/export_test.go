package cli

var (
	RenderSummary       = renderSummary
	RenderBaseline      = renderBaseline
	OpenServeRepository = openServeRepository
)
