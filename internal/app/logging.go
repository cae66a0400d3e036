package app

import (
	"log/slog"

	"github.com/treykane/cli-pdf/internal/logging"
)

// appLog is the package-level structured logger for the host application.
//
// Output goes wherever the logging package sends it; set CLI_PDF_LOG_FILE
// while the viewer is running so log lines do not land on the pages.
var appLog = logging.New("app")

// setStatusError shows status in the footer and logs err with any extra
// slog-style attrs. The status text is shown verbatim; err only reaches the
// log.
//
//	m.setStatusError("Could not open document", err, "source", m.source)
func (m *Model) setStatusError(status string, err error, attrs ...any) {
	m.status = status
	fields := make([]any, 0, len(attrs)+2)
	fields = append(fields, slog.Any("error", err))
	fields = append(fields, attrs...)
	appLog.Error(status, fields...)
}
