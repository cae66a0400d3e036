package app

// Layout constants. The header and footer are one row each so the viewer can
// measure its viewport without asking the host.
const (
	HeaderRows = 1
	FooterRows = 1

	// ChromeRows is what the host takes away from the terminal height.
	ChromeRows = HeaderRows + FooterRows

	// HelpMaxWidth caps the help overlay on wide terminals.
	HelpMaxWidth = 72
)

// Zoom limits.
const (
	MinScale = 0.1
	MaxScale = 8.0
)

// Input limits.
const (
	// GoToCharLimit fits any realistic page number.
	GoToCharLimit = 9
)

// StateFileName is the per-user reading position file, next to config.json.
const StateFileName = "state.json"

// FilePermission is the mode for files the app writes.
const FilePermission = 0o600
