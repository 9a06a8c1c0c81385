package stats

import "fmt"

// Level is the severity of a Notice.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notice is a user-facing message about something that was skipped or
// could not be shown.
type Notice struct {
	Level Level
	Text  string
}

// PreviewRows is how many filtered rows the data preview shows.
const PreviewRows = 5

// Analysis is the output of one filter -> aggregate pass.
type Analysis struct {
	State   FilterState
	View    []Record
	Preview []Record
	Summary []SummaryRow
	Notices []Notice

	// ShowEstimate is false when the dataset has no estimate column; the
	// time series and summary are skipped in that case.
	ShowEstimate bool

	// ShowErrorBars is false when the bound columns are missing.
	ShowErrorBars bool
}

// Analyze clamps state to ds and runs the filter and aggregation layers.
func Analyze(ds *Dataset, state FilterState) Analysis {
	state = state.Clamp(ds)
	view := Filter(ds.Records, state)

	a := Analysis{
		State:         state,
		View:          view,
		ShowEstimate:  ds.HasEstimate,
		ShowErrorBars: ds.HasEstimate && ds.HasBounds,
	}

	if len(view) > PreviewRows {
		a.Preview = view[:PreviewRows]
	} else {
		a.Preview = view
	}

	switch {
	case len(state.Countries) == 0:
		a.Notices = append(a.Notices, Notice{LevelInfo, "No countries selected."})
	case len(view) == 0:
		a.Notices = append(a.Notices, Notice{LevelInfo,
			fmt.Sprintf("No rows match the selection for %d-%d.", state.YearMin, state.YearMax)})
	}

	if !ds.HasEstimate {
		a.Notices = append(a.Notices, Notice{LevelWarning,
			fmt.Sprintf("No column named %q found in the dataset; charts and summary statistics are unavailable.", ColEstimate)})
		return a
	}
	if !ds.HasBounds {
		a.Notices = append(a.Notices, Notice{LevelInfo,
			"Uncertainty bounds not available; skipping error bars."})
	}

	a.Summary = Summarize(view)
	return a
}
