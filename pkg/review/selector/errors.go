package selector

// Error is raised for any selector failure: a non-zero exit from the
// underlying model process, a timeout, or any other runtime error. An empty
// selected_agents result is not an Error — it's a successful SelectorOutput.
type Error struct {
	Message     string
	ExitCode    *int
	ErrorKind   string
	Stderr      string
	Recoverable *bool
}

func (e *Error) Error() string { return e.Message }
